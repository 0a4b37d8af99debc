package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AesthetixDev/koko/internal/domain"
)

// InfractionRepo implements domain.InfractionRepository. The table is
// append-only: there is deliberately no update or delete statement here.
type InfractionRepo struct {
	db *DB
}

func NewInfractionRepo(db *DB) *InfractionRepo {
	return &InfractionRepo{db: db}
}

func (r *InfractionRepo) Record(ctx context.Context, userID int64, reason string, ts time.Time) (int64, error) {
	var id int64
	err := r.db.WithTx(ctx, "infractions.record", func(ctx context.Context, tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO infractions (user_id, reason, timestamp) VALUES (?, ?, ?) RETURNING id`,
			userID, reason, ts.UTC()).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *InfractionRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Infraction, error) {
	var infractions []domain.Infraction
	err := r.db.WithTx(ctx, "infractions.list", func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, user_id, reason, timestamp FROM infractions WHERE user_id = ? ORDER BY id ASC`,
			userID)
		if err != nil {
			return fmt.Errorf("failed to query infractions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var inf domain.Infraction
			if err := rows.Scan(&inf.ID, &inf.UserID, &inf.Reason, &inf.Timestamp); err != nil {
				return fmt.Errorf("failed to scan infraction: %w", err)
			}
			infractions = append(infractions, inf)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return infractions, nil
}
