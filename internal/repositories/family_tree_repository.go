package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"community-backend/internal/models"
)

// ErrTreeNotFound is returned when no family tree matches the lookup
var ErrTreeNotFound = errors.New("family tree not found")

// FamilyTreeRepository persists family trees. Each tree embeds its full
// member list as a JSONB column and is always read and written whole, so a
// mutation is a single-statement update: either the whole multi-edge change
// lands or none of it does.
type FamilyTreeRepository struct {
	pool *pgxpool.Pool
}

// NewFamilyTreeRepository creates a new family tree repository
func NewFamilyTreeRepository(pool *pgxpool.Pool) *FamilyTreeRepository {
	return &FamilyTreeRepository{pool: pool}
}

func scanTree(row pgx.Row) (*models.FamilyTree, error) {
	var t models.FamilyTree
	var membersJSON []byte
	err := row.Scan(
		&t.ID,
		&t.FamilyName,
		&t.FamilyHead,
		&t.Visibility,
		&t.OwnerID,
		&membersJSON,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTreeNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(membersJSON, &t.Members); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new tree with its initial member list
func (r *FamilyTreeRepository) Create(ctx context.Context, t *models.FamilyTree) error {
	membersJSON, err := json.Marshal(t.Members)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO family_trees (family_name, family_head, visibility, owner_id, members)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		t.FamilyName,
		t.FamilyHead,
		t.Visibility,
		t.OwnerID,
		membersJSON,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a tree by ID
func (r *FamilyTreeRepository) GetByID(ctx context.Context, id int) (*models.FamilyTree, error) {
	query := `
		SELECT id, family_name, family_head, visibility, owner_id, members, created_at, updated_at
		FROM family_trees
		WHERE id = $1
	`
	return scanTree(r.pool.QueryRow(ctx, query, id))
}

// GetByOwner retrieves the tree owned by the given account
func (r *FamilyTreeRepository) GetByOwner(ctx context.Context, ownerID int) (*models.FamilyTree, error) {
	query := `
		SELECT id, family_name, family_head, visibility, owner_id, members, created_at, updated_at
		FROM family_trees
		WHERE owner_id = $1
	`
	return scanTree(r.pool.QueryRow(ctx, query, ownerID))
}

// ListPublic returns public trees newest first, with the total count for
// pagination
func (r *FamilyTreeRepository) ListPublic(ctx context.Context, page, limit int) ([]*models.FamilyTree, int, error) {
	query := `
		SELECT id, family_name, family_head, visibility, owner_id, members, created_at, updated_at
		FROM family_trees
		WHERE visibility = 'public'
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var trees []*models.FamilyTree
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, 0, err
		}
		trees = append(trees, t)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM family_trees WHERE visibility = 'public'`
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	return trees, total, nil
}

// SaveMembers writes back the full member list and head after a mutation.
// Last write wins between concurrent editors; each write is atomic.
func (r *FamilyTreeRepository) SaveMembers(ctx context.Context, treeID int, familyHead string, members []models.Member) error {
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return err
	}

	query := `
		UPDATE family_trees
		SET family_head = $1,
			members = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	tag, err := r.pool.Exec(ctx, query, familyHead, membersJSON, treeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTreeNotFound
	}
	return nil
}

// Delete removes a tree
func (r *FamilyTreeRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM family_trees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTreeNotFound
	}
	return nil
}
