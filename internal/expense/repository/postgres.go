package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"expensio/internal/expense"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresExpenseRepository persists expenses. Every query is scoped to the
// owning user, a row another user owns is indistinguishable from a missing one.
type PostgresExpenseRepository struct {
	db *sql.DB
}

func NewPostgresExpenseRepository(db *sql.DB) *PostgresExpenseRepository {
	return &PostgresExpenseRepository{db: db}
}

func (r *PostgresExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := psql.Insert("expenses").
		Columns("id", "user_id", "amount", "category", "reason", "paid_as", "status", "date").
		Values(e.ID, e.UserID, e.Amount, e.Category, e.Reason, e.PaidAs, e.Status, e.Date)

	_, err := query.RunWith(r.db).ExecContext(ctx)
	return errors.Wrap(err, "create expense")
}

func (r *PostgresExpenseRepository) GetByUser(ctx context.Context, userID int64, id uuid.UUID) (*expense.Expense, error) {
	query := psql.Select("id", "user_id", "amount", "category", "reason", "paid_as", "status", "date").
		From("expenses").
		Where(sq.Eq{"id": id, "user_id": userID})

	e := &expense.Expense{}
	err := query.RunWith(r.db).QueryRowContext(ctx).Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Reason, &e.PaidAs, &e.Status, &e.Date)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]expense.Expense, error) {
	query := psql.Select("id", "user_id", "amount", "category", "reason", "paid_as", "status", "date").
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date DESC")

	return r.list(ctx, query)
}

func (r *PostgresExpenseRepository) ListByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]expense.Expense, error) {
	query := psql.Select("id", "user_id", "amount", "category", "reason", "paid_as", "status", "date").
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to}).
		OrderBy("date DESC")

	return r.list(ctx, query)
}

func (r *PostgresExpenseRepository) list(ctx context.Context, query sq.SelectBuilder) ([]expense.Expense, error) {
	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	defer rows.Close()

	var result []expense.Expense
	for rows.Next() {
		var e expense.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Reason, &e.PaidAs, &e.Status, &e.Date); err != nil {
			return nil, errors.Wrap(err, "scan expense")
		}
		result = append(result, e)
	}
	return result, errors.Wrap(rows.Err(), "list expenses")
}

// Update rewrites the mutable columns of an owned expense. Returns
// sql.ErrNoRows when no row matched the id/owner pair.
func (r *PostgresExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	query := psql.Update("expenses").
		SetMap(map[string]interface{}{
			"amount":   e.Amount,
			"category": e.Category,
			"reason":   e.Reason,
			"paid_as":  e.PaidAs,
			"status":   e.Status,
		}).
		Where(sq.Eq{"id": e.ID, "user_id": e.UserID})

	res, err := query.RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "update expense")
	}
	return noRowsAsErr(res)
}

func (r *PostgresExpenseRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	query := psql.Delete("expenses").Where(sq.Eq{"id": id, "user_id": userID})

	res, err := query.RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	return noRowsAsErr(res)
}

func (r *PostgresExpenseRepository) DeleteAllByUser(ctx context.Context, userID int64) error {
	query := psql.Delete("expenses").Where(sq.Eq{"user_id": userID})

	_, err := query.RunWith(r.db).ExecContext(ctx)
	return errors.Wrap(err, "delete user expenses")
}

func (r *PostgresExpenseRepository) SumByUser(ctx context.Context, userID int64) (float64, error) {
	query := psql.Select("COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(sq.Eq{"user_id": userID})

	var total float64
	err := query.RunWith(r.db).QueryRowContext(ctx).Scan(&total)
	return total, errors.Wrap(err, "sum expenses")
}

func (r *PostgresExpenseRepository) SumByUserBetween(ctx context.Context, userID int64, from, to time.Time) (float64, error) {
	query := psql.Select("COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to})

	var total float64
	err := query.RunWith(r.db).QueryRowContext(ctx).Scan(&total)
	return total, errors.Wrap(err, "sum expenses in range")
}

func (r *PostgresExpenseRepository) SumByCategory(ctx context.Context, userID int64) ([]expense.CategoryTotal, error) {
	query := psql.Select("category", "COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("category")

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "sum by category")
	}
	defer rows.Close()

	var result []expense.CategoryTotal
	for rows.Next() {
		var ct expense.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, errors.Wrap(err, "scan category total")
		}
		result = append(result, ct)
	}
	return result, errors.Wrap(rows.Err(), "sum by category")
}

func noRowsAsErr(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
