package store

import (
	"bytes"
	"context"
	"sync"

	"gatekeep/models"
)

// Memory is an in-process UserStore. It backs the tests and serves as a
// fallback when no database is configured.
//
// The mutex guards individual calls only; a caller doing check-then-insert
// across two calls gets the same race it would get from Postgres without a
// unique constraint.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	users  []*models.User
}

// NewMemory creates an empty in-memory user store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Add(ctx context.Context, email string, hashedPassword []byte) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u := &models.User{
		ID:             s.nextID,
		Email:          email,
		HashedPassword: append([]byte(nil), hashedPassword...),
	}
	s.users = append(s.users, u)

	return copyUser(u), nil
}

func (s *Memory) FindBy(ctx context.Context, criteria map[string]any) (*models.User, error) {
	if len(criteria) == 0 {
		return nil, ErrInvalidQuery
	}
	for col := range criteria {
		if !models.UserColumns[col] {
			return nil, ErrInvalidQuery
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// users is append-only, so slice order is insertion order.
	for _, u := range s.users {
		if matches(u, criteria) {
			return copyUser(u), nil
		}
	}

	return nil, ErrNotFound
}

func (s *Memory) Update(ctx context.Context, id int64, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *models.User
	for _, u := range s.users {
		if u.ID == id {
			target = u
			break
		}
	}
	if target == nil {
		return ErrNotFound
	}

	// Validate every field before touching the row: all-or-nothing.
	for col := range fields {
		if !models.UserColumns[col] {
			return ErrInvalidAttribute
		}
	}
	for col, val := range fields {
		setField(target, col, val)
	}

	return nil
}

func matches(u *models.User, criteria map[string]any) bool {
	for col, want := range criteria {
		switch col {
		case "id":
			id, ok := want.(int64)
			if !ok || u.ID != id {
				return false
			}
		case "email":
			email, ok := want.(string)
			if !ok || u.Email != email {
				return false
			}
		case "hashed_password":
			hash, ok := want.([]byte)
			if !ok || !bytes.Equal(u.HashedPassword, hash) {
				return false
			}
		case "session_id":
			if !optionalEquals(u.SessionID, want) {
				return false
			}
		case "reset_token":
			if !optionalEquals(u.ResetToken, want) {
				return false
			}
		}
	}
	return true
}

func optionalEquals(field *string, want any) bool {
	if want == nil {
		return field == nil
	}
	s, ok := want.(string)
	return ok && field != nil && *field == s
}

func setField(u *models.User, col string, val any) {
	switch col {
	case "id":
		if id, ok := val.(int64); ok {
			u.ID = id
		}
	case "email":
		if s, ok := val.(string); ok {
			u.Email = s
		}
	case "hashed_password":
		if b, ok := val.([]byte); ok {
			u.HashedPassword = append([]byte(nil), b...)
		}
	case "session_id":
		u.SessionID = optionalString(val)
	case "reset_token":
		u.ResetToken = optionalString(val)
	}
}

func optionalString(val any) *string {
	if val == nil {
		return nil
	}
	if s, ok := val.(string); ok {
		return &s
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.HashedPassword = append([]byte(nil), u.HashedPassword...)
	if u.SessionID != nil {
		s := *u.SessionID
		c.SessionID = &s
	}
	if u.ResetToken != nil {
		s := *u.ResetToken
		c.ResetToken = &s
	}
	return &c
}
