package models

// User is one row of the users table. SessionID and ResetToken are nil when
// the user has no live session or no outstanding password reset.
type User struct {
	ID             int64   `db:"id"`
	Email          string  `db:"email"`
	HashedPassword []byte  `db:"hashed_password"`
	SessionID      *string `db:"session_id"`
	ResetToken     *string `db:"reset_token"`
}

// UserColumns is the allow-list of columns the store accepts in query
// criteria and update fields. Anything else is a programmer error.
var UserColumns = map[string]bool{
	"id":              true,
	"email":           true,
	"hashed_password": true,
	"session_id":      true,
	"reset_token":     true,
}
