package dto

type CreateExpenseRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Category string  `json:"category" validate:"required"`
	Reason   string  `json:"reason"`
	PaidAs   string  `json:"paidAs"`
}

// UpdateExpenseRequest patches only the fields that are present in the body.
type UpdateExpenseRequest struct {
	Amount   *float64 `json:"amount" validate:"omitempty,gt=0"`
	Category *string  `json:"category" validate:"omitempty,min=1"`
	Reason   *string  `json:"reason"`
	PaidAs   *string  `json:"paidAs"`
	Status   *string  `json:"status" validate:"omitempty,oneof=PENDING CLEARED"`
}

// AmountSum mirrors the aggregate shape of GET /expense/total.
type AmountSum struct {
	Amount float64 `json:"amount"`
}

type TotalResponse struct {
	Sum AmountSum `json:"_sum"`
}

type CategoryTotalResponse struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type CurrentMonthTotalResponse struct {
	TotalSpent float64 `json:"totalSpent"`
	Month      string  `json:"month"`
	Year       int     `json:"year"`
}
