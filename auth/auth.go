// Package auth composes the password hasher, the opaque-id generator, and
// the user store into the register/login/session/reset operations the HTTP
// layer calls.
//
// Lookup misses surface differently per operation, and callers rely on the
// difference: login and session resolution fail silently (false or nil),
// registration and the reset flow return a domain error. Raw store errors
// never cross this boundary.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gatekeep/models"
	"gatekeep/store"
)

var (
	// ErrAlreadyExists is returned by RegisterUser for a taken email.
	ErrAlreadyExists = errors.New("auth: email already registered")

	// ErrUnknownEmail is returned by GetResetPasswordToken when no user
	// has the given email.
	ErrUnknownEmail = errors.New("auth: unknown email")

	// ErrInvalidResetToken is returned by UpdatePassword when the token
	// does not match an outstanding reset request.
	ErrInvalidResetToken = errors.New("auth: invalid reset token")
)

// Auth is the façade over the user store.
type Auth struct {
	store store.UserStore
}

// New creates an Auth façade owning the given store.
func New(st store.UserStore) *Auth {
	return &Auth{store: st}
}

// NewOpaqueID returns a random 128-bit identifier. The same generator serves
// session ids and reset tokens.
func NewOpaqueID() string {
	return uuid.NewString()
}

// RegisterUser creates a user with a freshly hashed password. Only a clean
// not-found miss on the email pre-check lets registration proceed; any other
// store failure propagates instead of being read as "user does not exist".
func (a *Auth) RegisterUser(ctx context.Context, email, password string) (*models.User, error) {
	_, err := a.store.FindBy(ctx, map[string]any{"email": email})
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u, err := a.store.Add(ctx, email, hash)
	if err != nil {
		return nil, fmt.Errorf("adding user: %w", err)
	}

	return u, nil
}

// ValidLogin reports whether email and password form a valid credential
// pair. It fails closed: unknown emails and store errors both read false.
func (a *Auth) ValidLogin(ctx context.Context, email, password string) bool {
	u, err := a.store.FindBy(ctx, map[string]any{"email": email})
	if err != nil {
		return false
	}
	return CheckPasswordHash(password, u.HashedPassword)
}

// CreateSession issues a new session id for the user and persists it,
// replacing any previous session. An unknown email yields ("", nil): no
// session issued, no error raised.
func (a *Auth) CreateSession(ctx context.Context, email string) (string, error) {
	u, err := a.store.FindBy(ctx, map[string]any{"email": email})
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up user: %w", err)
	}

	sessionID := NewOpaqueID()
	if err := a.store.Update(ctx, u.ID, map[string]any{"session_id": sessionID}); err != nil {
		return "", fmt.Errorf("storing session id: %w", err)
	}

	return sessionID, nil
}

// UserFromSessionID resolves a session id to its user. An empty id
// short-circuits to nil without touching the store; an unmatched id also
// yields nil.
func (a *Auth) UserFromSessionID(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	u, err := a.store.FindBy(ctx, map[string]any{"session_id": sessionID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	return u, nil
}

// DestroySession clears the user's session id. Clearing an already-clear
// session is a no-op.
func (a *Auth) DestroySession(ctx context.Context, userID int64) error {
	if err := a.store.Update(ctx, userID, map[string]any{"session_id": nil}); err != nil {
		return fmt.Errorf("clearing session id: %w", err)
	}
	return nil
}

// GetResetPasswordToken generates and persists a reset token for the user,
// overwriting any outstanding one. Unlike CreateSession, an unknown email is
// an error here.
func (a *Auth) GetResetPasswordToken(ctx context.Context, email string) (string, error) {
	u, err := a.store.FindBy(ctx, map[string]any{"email": email})
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnknownEmail
	}
	if err != nil {
		return "", fmt.Errorf("looking up user: %w", err)
	}

	token := NewOpaqueID()
	if err := a.store.Update(ctx, u.ID, map[string]any{"reset_token": token}); err != nil {
		return "", fmt.Errorf("storing reset token: %w", err)
	}

	return token, nil
}

// UpdatePassword consumes a reset token: it stores the new password hash and
// clears the token in the same update, so a token works exactly once.
func (a *Auth) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return ErrInvalidResetToken
	}

	u, err := a.store.FindBy(ctx, map[string]any{"reset_token": resetToken})
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("looking up reset token: %w", err)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	fields := map[string]any{"hashed_password": hash, "reset_token": nil}
	if err := a.store.Update(ctx, u.ID, fields); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return nil
}
