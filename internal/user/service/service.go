// Package service implements the auth session lifecycle: registration, login,
// logout, access-token refresh and profile deletion. The user row holds at
// most one valid refresh token, the latest issuance wins.
package service

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"expensio/internal/apperr"
	"expensio/internal/expense"
	"expensio/internal/metrics"
	"expensio/internal/token"
	"expensio/internal/user"
	"expensio/pkg/hash"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByRefreshToken(ctx context.Context, tokenStr string) (*user.User, error)
	UpdateRefreshToken(ctx context.Context, id int64, tokenStr string) error
	Delete(ctx context.Context, id int64) error
}

// ExpenseStore is the slice of the expense layer profile flows need.
type ExpenseStore interface {
	ListByUser(ctx context.Context, userID int64) ([]expense.Expense, error)
	DeleteAllByUser(ctx context.Context, userID int64) error
}

type TokenPair struct {
	Access  string
	Refresh string
}

type AuthService struct {
	repo     UserRepository
	expenses ExpenseStore
	tokens   *token.Service
}

func NewAuthService(repo UserRepository, expenses ExpenseStore, tokens *token.Service) *AuthService {
	return &AuthService{repo: repo, expenses: expenses, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*user.User, TokenPair, error) {
	if email == "" || password == "" {
		return nil, TokenPair{}, apperr.BadRequest("Please provide email and password")
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, TokenPair{}, apperr.Conflict("User already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, TokenPair{}, apperr.Internal(err)
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, apperr.Internal(err)
	}

	u := &user.User{Email: email, Password: hashed}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, TokenPair{}, apperr.Internal(err)
	}

	pair, err := s.issueAndStore(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	metrics.RegistrationsTotal.Inc()
	return u, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*user.User, TokenPair, error) {
	if email == "" || password == "" {
		return nil, TokenPair{}, apperr.BadRequest("Please provide email and password")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, TokenPair{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, TokenPair{}, apperr.Internal(err)
	}

	if !hash.CheckPassword(u.Password, password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, TokenPair{}, apperr.Unauthorized("Invalid credentials")
	}

	pair, err := s.issueAndStore(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return u, pair, nil
}

// issueAndStore makes storing the refresh token the same operation for
// register and login, so rotation on repeated logins cannot diverge.
func (s *AuthService) issueAndStore(ctx context.Context, u *user.User) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return TokenPair{}, apperr.Internal(err)
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return TokenPair{}, apperr.Internal(err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, u.ID, refresh); err != nil {
		return TokenPair{}, apperr.Internal(err)
	}

	u.RefreshToken = refresh
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout revokes the stored refresh token. Stale or unknown tokens count as
// already logged out, the call never fails for them.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	u, err := s.repo.GetByRefreshToken(ctx, refreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, u.ID, ""); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Refresh exchanges a valid, still-stored refresh token for a new access
// token. The refresh token itself is not rotated here. Signature and expiry
// are checked before any lookup.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperr.Unauthorized("Refresh token missing. Please login again.")
	}

	claimedID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperr.Unauthorized("Invalid or expired refresh token.")
	}

	u, err := s.repo.GetByRefreshToken(ctx, refreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.Unauthorized("Invalid refresh token. Re-login required.")
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	if u.ID != claimedID || u.RefreshToken != refreshToken {
		return "", apperr.Unauthorized("Invalid refresh token. Re-login required.")
	}

	access, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return "", apperr.Internal(err)
	}

	metrics.TokenRefreshesTotal.Inc()
	return access, nil
}

// DeleteProfile revokes the session, removes the user's expenses and then the
// user row, in that order, so a partial failure never leaves expenses owned
// by a user whose session is still valid.
func (s *AuthService) DeleteProfile(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return apperr.Unauthorized("Unauthorized request")
	}

	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, u.ID, ""); err != nil {
		return apperr.Internal(err)
	}
	if err := s.expenses.DeleteAllByUser(ctx, u.ID); err != nil {
		return apperr.Internal(err)
	}
	if err := s.repo.Delete(ctx, u.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Profile returns the user together with all owned expenses.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*user.Profile, error) {
	if userID <= 0 {
		return nil, apperr.Unauthorized("Unauthorized request")
	}

	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list, err := s.expenses.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if list == nil {
		list = []expense.Expense{}
	}

	return &user.Profile{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Expenses:  list,
	}, nil
}
