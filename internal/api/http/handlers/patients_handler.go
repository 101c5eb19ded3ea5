package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/finance-tracker/internal/registry"
	apperrors "github.com/spec-kit/finance-tracker/pkg/util/errorutil"
)

// PatientsHandler proxies the third-party patient-registry API.
type PatientsHandler struct {
	registry *registry.Client
}

// NewPatientsHandler constructs handler.
func NewPatientsHandler(client *registry.Client) *PatientsHandler {
	return &PatientsHandler{registry: client}
}

// List handles GET /patients. Upstream failures degrade to an empty page
// with a generic message rather than a fault.
func (h *PatientsHandler) List(c *fiber.Ctx) error {
	params := registry.ListParams{
		Page:          c.Query("page"),
		PerPage:       c.Query("per_page"),
		Search:        c.Query("search"),
		Gender:        c.Query("gender"),
		Ethnic:        c.Query("ethnic"),
		Education:     c.Query("education"),
		MarriedStatus: c.Query("married_status"),
		Job:           c.Query("job"),
		BloodType:     c.Query("blood_type"),
	}

	page, err := h.registry.ListPatients(c.UserContext(), params)
	if err != nil {
		if errors.Is(err, registry.ErrUpstream) {
			return c.JSON(fiber.Map{
				"patients":   []any{},
				"pagination": fiber.Map{},
				"message":    "patient records are temporarily unavailable",
			})
		}
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"patients":   page.Patients,
		"pagination": page.Pagination,
		"filters": fiber.Map{
			"search":         params.Search,
			"gender":         params.Gender,
			"ethnic":         params.Ethnic,
			"education":      params.Education,
			"married_status": params.MarriedStatus,
			"job":            params.Job,
			"blood_type":     params.BloodType,
		},
	})
}

// Create handles POST /patients. Upstream validation errors pass through to
// the caller's form; everything else collapses to a generic message.
func (h *PatientsHandler) Create(c *fiber.Ctx) error {
	payload := json.RawMessage(c.Body())
	if len(payload) == 0 || !json.Valid(payload) {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	created, err := h.registry.CreatePatient(c.UserContext(), payload)
	if err != nil {
		var validationErr *registry.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(http.StatusUnprocessableEntity).Send(validationErr.Body)
		}
		if errors.Is(err, registry.ErrUpstream) {
			return apperrors.NewDomainError("UPSTREAM_UNAVAILABLE",
				"patient records are temporarily unavailable", http.StatusBadGateway, nil)
		}
		return apperrors.MapError(err)
	}

	c.Set("Content-Type", "application/json")
	return c.Status(http.StatusCreated).Send(created)
}
