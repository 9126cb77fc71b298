package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/pkg/errors"

	"expensio/internal/apperr"
	"expensio/internal/expense"
	"expensio/internal/metrics"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *expense.Expense) error
	GetByUser(ctx context.Context, userID int64, id uuid.UUID) (*expense.Expense, error)
	ListByUser(ctx context.Context, userID int64) ([]expense.Expense, error)
	ListByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]expense.Expense, error)
	Update(ctx context.Context, e *expense.Expense) error
	Delete(ctx context.Context, userID int64, id uuid.UUID) error
	SumByUser(ctx context.Context, userID int64) (float64, error)
	SumByUserBetween(ctx context.Context, userID int64, from, to time.Time) (float64, error)
	SumByCategory(ctx context.Context, userID int64) ([]expense.CategoryTotal, error)
	DeleteAllByUser(ctx context.Context, userID int64) error
}

type CreateInput struct {
	Amount   float64
	Category string
	Reason   string
	PaidAs   string
}

// UpdateInput carries only the fields present in the request body, nil means
// leave the stored value untouched.
type UpdateInput struct {
	Amount   *float64
	Category *string
	Reason   *string
	PaidAs   *string
	Status   *string
}

type MonthTotal struct {
	TotalSpent float64
	Month      time.Month
	Year       int
}

type Service struct {
	repo ExpenseRepository
}

func NewService(repo ExpenseRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*expense.Expense, error) {
	if in.Amount <= 0 || in.Category == "" {
		return nil, apperr.BadRequest("Amount and category are required")
	}

	e := &expense.Expense{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   in.Amount,
		Category: in.Category,
		Reason:   in.Reason,
		PaidAs:   in.PaidAs,
		Status:   expense.StatusPending,
		Date:     time.Now(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.ExpensesCreatedTotal.Inc()
	return e, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]expense.Expense, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if list == nil {
		list = []expense.Expense{}
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, userID int64, id uuid.UUID, in UpdateInput) (*expense.Expense, error) {
	existing, err := s.repo.GetByUser(ctx, userID, id)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}

	if in.Amount != nil {
		existing.Amount = *in.Amount
	}
	if in.Category != nil {
		existing.Category = *in.Category
	}
	if in.Reason != nil {
		existing.Reason = *in.Reason
	}
	if in.PaidAs != nil {
		existing.PaidAs = *in.PaidAs
	}
	if in.Status != nil {
		existing.Status = *in.Status
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, notFoundOrInternal(err)
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return notFoundOrInternal(err)
	}
	return nil
}

func (s *Service) Total(ctx context.Context, userID int64) (float64, error) {
	total, err := s.repo.SumByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return total, nil
}

func (s *Service) SpendByCategory(ctx context.Context, userID int64) ([]expense.CategoryTotal, error) {
	totals, err := s.repo.SumByCategory(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return totals, nil
}

// ByMonth returns the caller's expenses inside the given calendar month,
// boundaries inclusive, server local time.
func (s *Service) ByMonth(ctx context.Context, userID int64, year, month int) ([]expense.Expense, error) {
	if year <= 0 || month < 1 || month > 12 {
		return nil, apperr.BadRequest("Please provide valid year and month")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := now.New(start).EndOfMonth()

	list, err := s.repo.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if list == nil {
		list = []expense.Expense{}
	}
	return list, nil
}

func (s *Service) CurrentMonthTotal(ctx context.Context, userID int64) (MonthTotal, error) {
	today := time.Now()
	total, err := s.repo.SumByUserBetween(ctx, userID, now.New(today).BeginningOfMonth(), now.New(today).EndOfMonth())
	if err != nil {
		return MonthTotal{}, apperr.Internal(err)
	}

	return MonthTotal{
		TotalSpent: total,
		Month:      today.Month(),
		Year:       today.Year(),
	}, nil
}

// Missing and not-owned rows produce the same 404, so non-owners learn
// nothing about which ids exist.
func notFoundOrInternal(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Expense not found")
	}
	return apperr.Internal(err)
}
