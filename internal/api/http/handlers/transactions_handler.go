package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/finance-tracker/internal/api/dto"
	"github.com/spec-kit/finance-tracker/internal/auth"
	"github.com/spec-kit/finance-tracker/internal/service"
	apperrors "github.com/spec-kit/finance-tracker/pkg/util/errorutil"
)

// TransactionsHandler exposes transaction CRUD for the authenticated user.
type TransactionsHandler struct {
	transactions *service.TransactionService
}

// NewTransactionsHandler constructs handler.
func NewTransactionsHandler(transactions *service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{transactions: transactions}
}

// List handles GET /transactions.
func (h *TransactionsHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	transactions, err := h.transactions.List(c.UserContext(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponses(transactions)})
}

// Get handles GET /transactions/:id.
func (h *TransactionsHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	tx, err := h.transactions.Get(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponse(tx)})
}

// Create handles POST /transactions.
func (h *TransactionsHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	input, err := parseTransactionRequest(c)
	if err != nil {
		return err
	}

	tx, err := h.transactions.Create(c.UserContext(), principal.User.ID, *input)
	if err != nil {
		return transactionError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewTransactionResponse(tx),
		"message": "transaction created",
	})
}

// Update handles PUT /transactions/:id.
func (h *TransactionsHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	input, err := parseTransactionRequest(c)
	if err != nil {
		return err
	}

	tx, err := h.transactions.Update(c.UserContext(), principal.User.ID, c.Params("id"), *input)
	if err != nil {
		return transactionError(err)
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewTransactionResponse(tx),
		"message": "transaction updated",
	})
}

// Delete handles DELETE /transactions/:id.
func (h *TransactionsHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	if err := h.transactions.Delete(c.UserContext(), principal.User.ID, c.Params("id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"message": "transaction deleted"})
}

func parseTransactionRequest(c *fiber.Ctx) (*service.TransactionInput, error) {
	var req dto.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	details := fiber.Map{}
	if req.CategoryID == "" {
		details["category_id"] = "category is required"
	}
	if req.Name == "" || len(req.Name) > 255 {
		details["name"] = "name is required and must not exceed 255 characters"
	}
	if req.Time == "" {
		details["transaction_time"] = "time is required"
	}

	date, err := parseDate(req.Date)
	if err != nil {
		details["transaction_date"] = "a valid date is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details)
	}

	return &service.TransactionInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		PhotoKey:    req.PhotoKey,
	}, nil
}

// parseDate accepts a plain date or a full RFC 3339 timestamp, keeping only
// the date part.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func transactionError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownCategory):
		return apperrors.NewValidationError("validation failed", fiber.Map{"category_id": err.Error()})
	case errors.Is(err, service.ErrNegativeAmount):
		return apperrors.NewValidationError("validation failed", fiber.Map{"amount": err.Error()})
	case errors.Is(err, service.ErrBadTimeFormat):
		return apperrors.NewValidationError("validation failed", fiber.Map{"transaction_time": err.Error()})
	default:
		return apperrors.MapError(err)
	}
}
