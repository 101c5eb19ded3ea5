package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/spec-kit/finance-tracker/internal/domain"
	"github.com/spec-kit/finance-tracker/internal/repository"
)

// CategoryService manages user-owned spending categories.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// CategoryInput describes create/update payloads.
type CategoryInput struct {
	Name        string
	Description *string
	IsActive    bool
}

// List returns the user's categories, optionally only active ones.
func (s *CategoryService) List(ctx context.Context, userID string, activeOnly bool) ([]domain.Category, error) {
	return s.categories.ListByUser(ctx, userID, activeOnly)
}

// Get returns one category owned by the user.
func (s *CategoryService) Get(ctx context.Context, userID, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, userID, id)
}

// Create stores a new category with a slug derived from its name.
func (s *CategoryService) Create(ctx context.Context, userID string, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		UserID:      userID,
		Name:        input.Name,
		Slug:        Slugify(input.Name),
		Description: input.Description,
		IsActive:    input.IsActive,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update rewrites a category, regenerating the slug.
func (s *CategoryService) Update(ctx context.Context, userID, id string, input CategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Slug = Slugify(input.Name)
	category.Description = input.Description
	category.IsActive = input.IsActive

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category owned by the user.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	return s.categories.Delete(ctx, userID, id)
}

// Slugify lowercases the name and collapses every non-alphanumeric run into
// a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
