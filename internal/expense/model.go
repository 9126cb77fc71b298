package expense

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "PENDING"
	StatusCleared = "CLEARED"
)

type Expense struct {
	ID       uuid.UUID `json:"id"`
	UserID   int64     `json:"userId"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Reason   string    `json:"reason,omitempty"`
	PaidAs   string    `json:"paidAs,omitempty"`
	Status   string    `json:"status"`
	Date     time.Time `json:"date"`
}

// CategoryTotal is one row of the category-summary aggregation.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}
