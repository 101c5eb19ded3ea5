package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/finance-tracker/internal/domain"
)

// UserRepository defines persistence access for account holders.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SetOTP overwrites the single-slot OTP column for the given flow. A nil
	// code clears the slot. Deliberately a bare UPDATE with no version check:
	// concurrent issues race and the last writer wins.
	SetOTP(ctx context.Context, userID string, slot domain.OTPSlot, code *string) error

	// MarkEmailVerified stamps email_verified_at and permanently clears the
	// registration OTP slot.
	MarkEmailVerified(ctx context.Context, userID string) error

	// ReplacePassword swaps the password hash and rotates the remember token.
	ReplacePassword(ctx context.Context, userID, passwordHash, rememberToken string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, photo, address, phone,
        otp_register, otp_login, email_verified_at, remember_token, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Photo,
		&user.Address,
		&user.Phone,
		&user.OTPRegister,
		&user.OTPLogin,
		&user.EmailVerifiedAt,
		&user.RememberToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, photo, address, phone, otp_register)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Photo,
		user.Address,
		user.Phone,
		user.OTPRegister,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, photo=$4, address=$5, phone=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Photo,
		user.Address,
		user.Phone,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) SetOTP(ctx context.Context, userID string, slot domain.OTPSlot, code *string) error {
	var query string
	if slot == domain.OTPSlotRegister {
		query = `UPDATE users SET otp_register=$1, updated_at=NOW() WHERE id=$2`
	} else {
		query = `UPDATE users SET otp_login=$1, updated_at=NOW() WHERE id=$2`
	}

	cmd, err := r.pool.Exec(ctx, query, code, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, userID string) error {
	const query = `
        UPDATE users SET email_verified_at=NOW(), otp_register=NULL, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ReplacePassword(ctx context.Context, userID, passwordHash, rememberToken string) error {
	const query = `
        UPDATE users SET password_hash=$1, remember_token=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, rememberToken, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
