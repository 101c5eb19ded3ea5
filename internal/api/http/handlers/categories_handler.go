package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/finance-tracker/internal/api/dto"
	"github.com/spec-kit/finance-tracker/internal/auth"
	"github.com/spec-kit/finance-tracker/internal/service"
	apperrors "github.com/spec-kit/finance-tracker/pkg/util/errorutil"
)

// CategoriesHandler exposes category CRUD for the authenticated user.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// List handles GET /categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	activeOnly := c.QueryBool("active_only", false)
	categories, err := h.categories.List(c.UserContext(), principal.User.ID, activeOnly)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponses(categories)})
}

// Get handles GET /categories/:id.
func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	category, err := h.categories.Get(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// Create handles POST /categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	input, err := parseCategoryRequest(c)
	if err != nil {
		return err
	}

	category, err := h.categories.Create(c.UserContext(), principal.User.ID, *input)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewCategoryResponse(category),
		"message": "category created",
	})
}

// Update handles PUT /categories/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	input, err := parseCategoryRequest(c)
	if err != nil {
		return err
	}

	category, err := h.categories.Update(c.UserContext(), principal.User.ID, c.Params("id"), *input)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewCategoryResponse(category),
		"message": "category updated",
	})
}

// Delete handles DELETE /categories/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	if err := h.categories.Delete(c.UserContext(), principal.User.ID, c.Params("id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"message": "category deleted"})
}

func parseCategoryRequest(c *fiber.Ctx) (*service.CategoryInput, error) {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	details := fiber.Map{}
	if req.Name == "" || len(req.Name) > 255 {
		details["name"] = "name is required and must not exceed 255 characters"
	}
	if req.IsActive == nil {
		details["is_active"] = "is_active is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details)
	}

	return &service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    *req.IsActive,
	}, nil
}
