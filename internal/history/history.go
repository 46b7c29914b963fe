// Package history defines conversation turns and the store contract used to
// read and append them.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Role says who authored a turn. Only RoleUser and RoleAssistant are stored.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the stored roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one recorded message of a user's conversation. Turns are written
// once and never updated.
type Turn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var (
	// ErrStoreUnavailable marks failures of the backing store itself.
	ErrStoreUnavailable = errors.New("history store unavailable")
	ErrInvalidRole      = errors.New("invalid turn role")
	ErrMissingID        = errors.New("turn id is required")
)

// Store reads and appends turns.
//
// History returns every turn of userID ordered by Timestamp ascending, ties
// broken by insertion order. An unknown user yields an empty slice.
//
// Append writes all given turns as one unit. Turns whose ID is already
// stored are skipped, so a failed Append can be retried with the same turns.
// Implementations must be safe for concurrent use.
type Store interface {
	History(ctx context.Context, userID string) ([]Turn, error)
	Append(ctx context.Context, turns ...Turn) error
}

// StoreError wraps a backend failure so that errors.Is(err,
// ErrStoreUnavailable) holds while the cause stays reachable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable wraps err from store operation op so that it matches
// ErrStoreUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Validate checks the fields every backend relies on.
func Validate(turns []Turn) error {
	for _, t := range turns {
		if t.ID == "" {
			return ErrMissingID
		}
		if !t.Role.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidRole, t.Role)
		}
	}
	return nil
}
