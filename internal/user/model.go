package user

import (
	"time"

	"expensio/internal/expense"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"created_at"`

	// RefreshToken is the single currently valid refresh token, empty when
	// logged out. The latest login/register/refresh wins.
	RefreshToken string `json:"-"`
}

// Profile is the eager user view returned by GET /auth/me.
type Profile struct {
	ID        int64             `json:"id"`
	Email     string            `json:"email"`
	CreatedAt time.Time         `json:"created_at"`
	Expenses  []expense.Expense `json:"expenses"`
}
