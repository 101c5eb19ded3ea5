package domain

import "time"

// Transaction is a single spending record owned by a user.
type Transaction struct {
	ID          string
	UserID      string
	CategoryID  string
	Name        string
	Amount      float64
	Description *string
	Date        time.Time
	Time        string
	PhotoKey    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Category is populated on reads that join the owning category.
	Category *Category
}

// CategorySpend aggregates spending grouped by category.
type CategorySpend struct {
	CategoryID   string
	CategoryName string
	TotalAmount  float64
	Count        int64
}
