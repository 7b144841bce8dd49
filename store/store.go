// Package store persists User records. It exposes a small CRUD surface with
// lookup by arbitrary allow-listed attributes; every mutating call commits
// immediately.
package store

import (
	"context"
	"errors"

	"gatekeep/models"
)

var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = errors.New("store: no matching user")

	// ErrInvalidQuery means FindBy was called with empty criteria or a
	// column outside the allow-list.
	ErrInvalidQuery = errors.New("store: invalid query criteria")

	// ErrInvalidAttribute means Update was given a field that is not a
	// recognized User attribute.
	ErrInvalidAttribute = errors.New("store: invalid user attribute")
)

// UserStore is CRUD over the users table.
//
// Add does not enforce email uniqueness; that check belongs to the caller.
// FindBy returns the first match in insertion order. Update applies all
// fields in a single statement or none at all.
type UserStore interface {
	Add(ctx context.Context, email string, hashedPassword []byte) (*models.User, error)
	FindBy(ctx context.Context, criteria map[string]any) (*models.User, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
}
