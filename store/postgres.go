package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"gatekeep/models"
)

// poolIface is the slice of pgxpool.Pool the store needs. Kept narrow so
// tests can substitute a pgxmock pool.
type poolIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres implements UserStore on a pgx connection pool.
type Postgres struct {
	pool poolIface
}

// NewPostgres creates a Postgres user store.
func NewPostgres(pool poolIface) *Postgres {
	return &Postgres{pool: pool}
}

// Add inserts a new user row and returns it with the assigned id.
func (s *Postgres) Add(ctx context.Context, email string, hashedPassword []byte) (*models.User, error) {
	u := &models.User{Email: email, HashedPassword: hashedPassword}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, hashed_password) VALUES ($1, $2) RETURNING id`,
		email, hashedPassword).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return u, nil
}

// FindBy returns the first user matching all criteria, in insertion order.
func (s *Postgres) FindBy(ctx context.Context, criteria map[string]any) (*models.User, error) {
	cols, args, err := splitCriteria(criteria)
	if err != nil {
		return nil, err
	}

	clauses := make([]string, len(cols))
	for i, col := range cols {
		clauses[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}

	query := fmt.Sprintf(
		`SELECT id, email, hashed_password, session_id, reset_token FROM users WHERE %s ORDER BY id LIMIT 1`,
		strings.Join(clauses, " AND "))

	u := &models.User{}
	row := s.pool.QueryRow(ctx, query, args...)
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.SessionID, &u.ResetToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return u, nil
}

// Update applies all fields to the row with the given id in one statement.
// Existence is checked before the field names, matching FindBy's error order.
func (s *Postgres) Update(ctx context.Context, id int64, fields map[string]any) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking user exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	cols, args, err := splitFields(fields)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

// splitCriteria validates criteria against the column allow-list and returns
// columns and values in deterministic (sorted) order.
func splitCriteria(criteria map[string]any) ([]string, []any, error) {
	if len(criteria) == 0 {
		return nil, nil, ErrInvalidQuery
	}
	cols, args, err := sortColumns(criteria)
	if err != nil {
		return nil, nil, ErrInvalidQuery
	}
	return cols, args, nil
}

func splitFields(fields map[string]any) ([]string, []any, error) {
	cols, args, err := sortColumns(fields)
	if err != nil {
		return nil, nil, ErrInvalidAttribute
	}
	return cols, args, nil
}

func sortColumns(m map[string]any) ([]string, []any, error) {
	cols := make([]string, 0, len(m))
	for col := range m {
		if !models.UserColumns[col] {
			return nil, nil, fmt.Errorf("unknown column %q", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = m[col]
	}
	return cols, args, nil
}
