package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCommandNotFound   = errors.New("command not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownFeature    = errors.New("unknown feature")
	ErrFlagFileInvalid   = errors.New("feature flag file is malformed")
)

// CooldownError reports a daily claim attempted before the cooldown elapsed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, %s remaining", e.Remaining.Round(time.Second))
}

// StorageError wraps a store failure that aborted a single operation. It is
// transient: fatal to the operation, never to the process.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
