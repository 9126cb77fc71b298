package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"expensio/internal/api"
	"expensio/internal/api/dto"
	"expensio/internal/apperr"
	"expensio/internal/expense/service"
	"expensio/pkg/middleware"
)

type Handler struct {
	expenses *service.Service
}

func NewHandler(expenses *service.Service) *Handler {
	return &Handler{expenses: expenses}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Amount and category are required"))
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Amount and category are required"))
		return
	}

	e, err := h.expenses.Create(r.Context(), userID, service.CreateInput{
		Amount:   req.Amount,
		Category: req.Category,
		Reason:   req.Reason,
		PaidAs:   req.PaidAs,
	})
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, e, "Expense created successfully")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	list, err := h.expenses.List(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, list, "Expenses fetched successfully")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "expenseId"))
	if err != nil {
		api.WriteError(w, r, apperr.NotFound("Expense not found"))
		return
	}

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		api.WriteError(w, r, apperr.BadRequest("Invalid request body"))
		return
	}

	updated, err := h.expenses.Update(r.Context(), userID, id, service.UpdateInput{
		Amount:   req.Amount,
		Category: req.Category,
		Reason:   req.Reason,
		PaidAs:   req.PaidAs,
		Status:   req.Status,
	})
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, updated, "Expense updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "expenseId"))
	if err != nil {
		api.WriteError(w, r, apperr.NotFound("Expense not found"))
		return
	}

	if err := h.expenses.Delete(r.Context(), userID, id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, nil, "Expense deleted successfully")
}

func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	total, err := h.expenses.Total(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, dto.TotalResponse{Sum: dto.AmountSum{Amount: total}},
		"Total expenses fetched successfully")
}

func (h *Handler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	totals, err := h.expenses.SpendByCategory(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	formatted := make([]dto.CategoryTotalResponse, 0, len(totals))
	for _, ct := range totals {
		formatted = append(formatted, dto.CategoryTotalResponse{Category: ct.Category, Total: ct.Total})
	}

	api.WriteSuccess(w, http.StatusOK, formatted, "Spend per category fetched")
}

func (h *Handler) ByMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	year, errYear := strconv.Atoi(r.URL.Query().Get("year"))
	month, errMonth := strconv.Atoi(r.URL.Query().Get("month"))
	if errYear != nil || errMonth != nil {
		api.WriteError(w, r, apperr.BadRequest("Please provide valid year and month"))
		return
	}

	list, err := h.expenses.ByMonth(r.Context(), userID, year, month)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, list,
		"Expenses for "+strconv.Itoa(month)+"/"+strconv.Itoa(year)+" fetched successfully")
}

func (h *Handler) CurrentMonthTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
		return
	}

	total, err := h.expenses.CurrentMonthTotal(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, dto.CurrentMonthTotalResponse{
		TotalSpent: total.TotalSpent,
		Month:      total.Month.String(),
		Year:       total.Year,
	}, "Live total for this month")
}
