package domain

import "time"

// Category is a user-owned spending category.
type Category struct {
	ID          string
	UserID      string
	Name        string
	Slug        string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
