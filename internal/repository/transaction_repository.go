package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/finance-tracker/internal/domain"
)

// TransactionRepository defines persistence access for spending records,
// including the aggregate queries behind the dashboard.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Update(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)

	// SumBetween totals amounts over an inclusive date range.
	SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error)
	// CategoryTotals returns per-category spend ordered by total descending.
	CategoryTotals(ctx context.Context, userID string, limit int) ([]domain.CategorySpend, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository returns a Postgres-backed implementation.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	const query = `
        INSERT INTO transactions (user_id, category_id, name, amount, description, transaction_date, transaction_time, photo_key)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		tx.UserID,
		tx.CategoryID,
		tx.Name,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.Time,
		tx.PhotoKey,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	const query = `
        UPDATE transactions
        SET category_id=$1, name=$2, amount=$3, description=$4, transaction_date=$5, transaction_time=$6,
            photo_key=COALESCE($7, photo_key), updated_at=NOW()
        WHERE id=$8 AND user_id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		tx.CategoryID,
		tx.Name,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.Time,
		tx.PhotoKey,
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM transactions WHERE id=$1 AND user_id=$2`

	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const transactionSelect = `
        SELECT t.id, t.user_id, t.category_id, t.name, t.amount, t.description,
               t.transaction_date, t.transaction_time::text, t.photo_key, t.created_at, t.updated_at,
               c.id, c.user_id, c.name, c.slug, c.description, c.is_active, c.created_at, c.updated_at
        FROM transactions t
        JOIN categories c ON c.id = t.category_id`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var category domain.Category
	if err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.CategoryID,
		&tx.Name,
		&tx.Amount,
		&tx.Description,
		&tx.Date,
		&tx.Time,
		&tx.PhotoKey,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	tx.Category = &category
	return &tx, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	query := transactionSelect + ` WHERE t.id=$1 AND t.user_id=$2`
	return scanTransaction(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := transactionSelect + `
        WHERE t.user_id=$1
        ORDER BY t.transaction_date DESC, t.transaction_time DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func (r *transactionRepository) SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE user_id=$1 AND transaction_date BETWEEN $2 AND $3`

	var total float64
	if err := r.pool.QueryRow(ctx, query, userID, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *transactionRepository) CategoryTotals(ctx context.Context, userID string, limit int) ([]domain.CategorySpend, error) {
	const query = `
        SELECT t.category_id, c.name, SUM(t.amount), COUNT(*)
        FROM transactions t
        JOIN categories c ON c.id = t.category_id
        WHERE t.user_id=$1
        GROUP BY t.category_id, c.name
        ORDER BY SUM(t.amount) DESC
        LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]domain.CategorySpend, 0)
	for rows.Next() {
		var spend domain.CategorySpend
		if err := rows.Scan(&spend.CategoryID, &spend.CategoryName, &spend.TotalAmount, &spend.Count); err != nil {
			return nil, err
		}
		totals = append(totals, spend)
	}
	return totals, rows.Err()
}
