package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"community-backend/internal/models"
)

// ErrAccountNotFound is returned when no account matches the lookup
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository handles account database operations
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `
	id, first_name, last_name, membership_no, email, password_hash, role,
	COALESCE(gender, ''), dob, COALESCE(education, ''), COALESCE(occupation, ''),
	COALESCE(photo_url, ''), family_tree_id, created_at, updated_at
`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.MembershipNo,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.Gender,
		&a.DOB,
		&a.Education,
		&a.Occupation,
		&a.PhotoURL,
		&a.FamilyTreeID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (first_name, last_name, membership_no, email, password_hash, role,
			gender, dob, education, occupation, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		a.FirstName,
		a.LastName,
		a.MembershipNo,
		a.Email,
		a.PasswordHash,
		a.Role,
		a.Gender,
		a.DOB,
		a.Education,
		a.Occupation,
		a.PhotoURL,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// SetFamilyTreeID records which tree an account belongs to. Pass nil to
// clear the reference.
func (r *AccountRepository) SetFamilyTreeID(ctx context.Context, accountID int, treeID *int) error {
	query := `
		UPDATE accounts
		SET family_tree_id = $1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`
	_, err := r.pool.Exec(ctx, query, treeID, accountID)
	return err
}
