// Package settings manages per-tenant configuration: the command prefix and
// the optional audit channel. Reads are served from an in-process TTL cache
// in front of the settings repository.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/AesthetixDev/koko/internal/domain"
	"github.com/AesthetixDev/koko/internal/metrics"
)

// Service provides cached tenant settings access. Concurrent cache misses for
// the same tenant collapse into one repository read.
type Service struct {
	repo  domain.SettingsRepository
	cache *cache
	group singleflight.Group
	clock clockwork.Clock

	stopEviction chan struct{}
}

func NewService(repo domain.SettingsRepository, ttl time.Duration, clock clockwork.Clock) *Service {
	return &Service{
		repo:         repo,
		cache:        newCache(ttl, clock),
		clock:        clock,
		stopEviction: make(chan struct{}),
	}
}

// Get returns the tenant's settings, lazily creating defaults on first
// reference.
func (s *Service) Get(ctx context.Context, tenantID int64) (*domain.TenantSettings, error) {
	if settings, ok := s.cache.get(tenantID); ok {
		metrics.SettingsCacheHits.Inc()
		return settings, nil
	}
	metrics.SettingsCacheMisses.Inc()

	v, err, _ := s.group.Do(strconv.FormatInt(tenantID, 10), func() (any, error) {
		settings, err := s.repo.Get(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		s.cache.set(tenantID, *settings)
		return settings, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.TenantSettings), nil
}

// Update applies a partial update and refreshes the cache with the result.
func (s *Service) Update(ctx context.Context, tenantID int64, patch domain.SettingsPatch) (*domain.TenantSettings, error) {
	if patch.Prefix != nil && *patch.Prefix == "" {
		return nil, fmt.Errorf("prefix cannot be empty")
	}

	settings, err := s.repo.Update(ctx, tenantID, patch)
	if err != nil {
		s.cache.invalidate(tenantID)
		return nil, err
	}
	s.cache.set(tenantID, *settings)
	return settings, nil
}

// StartEvictionTimer launches the periodic cache eviction loop. The returned
// stop function is idempotent enough for a deferred call in main.
func (s *Service) StartEvictionTimer(interval time.Duration) func() {
	ticker := s.clock.NewTicker(interval)
	go func() {
		for {
			select {
			case <-s.stopEviction:
				ticker.Stop()
				return
			case <-ticker.Chan():
				if evicted := s.cache.evictExpired(); evicted > 0 {
					slog.Debug("evicted expired settings cache entries", "count", evicted)
				}
			}
		}
	}()
	return func() { close(s.stopEviction) }
}
