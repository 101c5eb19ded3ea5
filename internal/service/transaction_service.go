package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/finance-tracker/internal/domain"
	"github.com/spec-kit/finance-tracker/internal/repository"
)

// Transaction validation failures surfaced as field errors by the handlers.
var (
	ErrUnknownCategory = errors.New("the selected category is not valid")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrBadTimeFormat   = errors.New("time must be in HH:MM format")
)

var timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// TransactionService manages user-owned spending records.
type TransactionService struct {
	transactions repository.TransactionRepository
	categories   repository.CategoryRepository
}

// NewTransactionService constructs the service.
func NewTransactionService(transactions repository.TransactionRepository, categories repository.CategoryRepository) *TransactionService {
	return &TransactionService{transactions: transactions, categories: categories}
}

// TransactionInput describes create/update payloads.
type TransactionInput struct {
	CategoryID  string
	Name        string
	Amount      float64
	Description *string
	Date        time.Time
	Time        string
	PhotoKey    *string
}

// List returns the user's transactions, newest first, with categories joined.
func (s *TransactionService) List(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

// Get returns one transaction owned by the user.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	return s.transactions.GetByID(ctx, userID, id)
}

// Create validates and stores a new transaction.
func (s *TransactionService) Create(ctx context.Context, userID string, input TransactionInput) (*domain.Transaction, error) {
	normalized, err := s.validate(ctx, userID, &input)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
		Time:        normalized,
		PhotoKey:    input.PhotoKey,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Update validates and rewrites an existing transaction. A nil PhotoKey
// keeps the stored photo.
func (s *TransactionService) Update(ctx context.Context, userID, id string, input TransactionInput) (*domain.Transaction, error) {
	normalized, err := s.validate(ctx, userID, &input)
	if err != nil {
		return nil, err
	}

	tx, err := s.transactions.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	tx.CategoryID = input.CategoryID
	tx.Name = input.Name
	tx.Amount = input.Amount
	tx.Description = input.Description
	tx.Date = input.Date
	tx.Time = normalized
	tx.PhotoKey = input.PhotoKey

	if err := s.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}
	return s.transactions.GetByID(ctx, userID, id)
}

// Delete removes a transaction owned by the user.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	return s.transactions.Delete(ctx, userID, id)
}

// validate checks amount, time format and category ownership, returning the
// time normalized to HH:MM:SS.
func (s *TransactionService) validate(ctx context.Context, userID string, input *TransactionInput) (string, error) {
	if input.Amount < 0 {
		return "", ErrNegativeAmount
	}
	if !timePattern.MatchString(input.Time) {
		return "", ErrBadTimeFormat
	}
	if _, err := s.categories.GetByID(ctx, userID, input.CategoryID); err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrUnknownCategory
		}
		return "", err
	}

	var hours, minutes int
	fmt.Sscanf(input.Time, "%d:%d", &hours, &minutes)
	return fmt.Sprintf("%02d:%02d:00", hours, minutes), nil
}
