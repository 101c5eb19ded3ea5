package dto

import (
	"time"

	"github.com/spec-kit/finance-tracker/internal/domain"
)

// TransactionRequest payload for transaction create/update. Date is an
// ISO-8601 date; Time is HH:MM.
type TransactionRequest struct {
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Description *string `json:"description"`
	Date        string  `json:"transaction_date"`
	Time        string  `json:"transaction_time"`
	PhotoKey    *string `json:"photo_key"`
}

// TransactionResponse is the public shape of a transaction.
type TransactionResponse struct {
	ID          string            `json:"id"`
	CategoryID  string            `json:"category_id"`
	Name        string            `json:"name"`
	Amount      float64           `json:"amount"`
	Description *string           `json:"description"`
	Date        string            `json:"transaction_date"`
	Time        string            `json:"transaction_time"`
	PhotoKey    *string           `json:"photo_key"`
	Category    *CategoryResponse `json:"category,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewTransactionResponse maps a domain transaction.
func NewTransactionResponse(tx *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		Name:        tx.Name,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date.Format("2006-01-02"),
		Time:        tx.Time,
		PhotoKey:    tx.PhotoKey,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
	if tx.Category != nil {
		category := NewCategoryResponse(tx.Category)
		resp.Category = &category
	}
	return resp
}

// NewTransactionResponses maps a slice of transactions.
func NewTransactionResponses(transactions []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, NewTransactionResponse(&transactions[i]))
	}
	return out
}
