package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sweetshop/internal/domain"
)

const sweetColumns = `id, name, category, price, quantity, owner_id, created_at, updated_at`

// SweetRepository encapsulates sweet persistence. Every mutation is scoped by
// owner so a record belonging to someone else behaves as absent.
type SweetRepository interface {
	Create(ctx context.Context, sweet *domain.Sweet) error
	GetByID(ctx context.Context, id int64) (*domain.Sweet, error)
	List(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error)
	Update(ctx context.Context, id, ownerID int64, patch domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id, ownerID int64) error
	// Purchase decrements quantity by one only while it is at least one.
	Purchase(ctx context.Context, id, ownerID int64) (*domain.Sweet, error)
	Restock(ctx context.Context, id, ownerID int64, amount int) (*domain.Sweet, error)
}

type sweetRepository struct {
	db DBTX
}

// NewSweetRepository instantiates repository.
func NewSweetRepository(db DBTX) SweetRepository {
	return &sweetRepository{db: db}
}

func (r *sweetRepository) Create(ctx context.Context, sweet *domain.Sweet) error {
	const query = `
        INSERT INTO sweets (name, category, price, quantity, owner_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	if err := r.db.QueryRow(ctx, query,
		sweet.Name,
		sweet.Category,
		sweet.Price,
		sweet.Quantity,
		sweet.OwnerID,
	).Scan(&sweet.ID, &sweet.CreatedAt, &sweet.UpdatedAt); err != nil {
		return fmt.Errorf("insert sweet: %w", err)
	}
	return nil
}

func (r *sweetRepository) GetByID(ctx context.Context, id int64) (*domain.Sweet, error) {
	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE id=$1`
	return scanSweet(r.db.QueryRow(ctx, query, id))
}

func (r *sweetRepository) List(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error) {
	clauses := []string{"owner_id=$1"}
	args := []any{filter.OwnerID}

	if filter.NameFragment != nil && *filter.NameFragment != "" {
		args = append(args, containsPattern(*filter.NameFragment))
		clauses = append(clauses, fmt.Sprintf(`LOWER(name) LIKE LOWER($%d) ESCAPE '\'`, len(args)))
	}
	if filter.Category != nil && *filter.Category != "" {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM sweets WHERE %s ORDER BY id ASC`, sweetColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	defer rows.Close()
	return scanSweets(rows)
}

func (r *sweetRepository) Update(ctx context.Context, id, ownerID int64, patch domain.SweetPatch) (*domain.Sweet, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if len(sets) == 0 {
		return r.getOwned(ctx, id, ownerID)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`UPDATE sweets SET %s, updated_at=NOW() WHERE id=$%d AND owner_id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), sweetColumns)
	return scanSweet(r.db.QueryRow(ctx, query, args...))
}

func (r *sweetRepository) Delete(ctx context.Context, id, ownerID int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM sweets WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sweetRepository) Purchase(ctx context.Context, id, ownerID int64) (*domain.Sweet, error) {
	// The guard and the decrement are one statement, so concurrent purchases
	// serialise on the row lock and the loser sees quantity already at zero.
	query := `UPDATE sweets SET quantity=quantity-1, updated_at=NOW()
        WHERE id=$1 AND owner_id=$2 AND quantity >= 1
        RETURNING ` + sweetColumns
	sweet, err := scanSweet(r.db.QueryRow(ctx, query, id, ownerID))
	if !errors.Is(err, domain.ErrNotFound) {
		return sweet, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sweets WHERE id=$1 AND owner_id=$2)`, id, ownerID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check sweet: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrOutOfStock
}

func (r *sweetRepository) Restock(ctx context.Context, id, ownerID int64, amount int) (*domain.Sweet, error) {
	query := `UPDATE sweets SET quantity=quantity+$3, updated_at=NOW()
        WHERE id=$1 AND owner_id=$2
        RETURNING ` + sweetColumns
	return scanSweet(r.db.QueryRow(ctx, query, id, ownerID, amount))
}

func (r *sweetRepository) getOwned(ctx context.Context, id, ownerID int64) (*domain.Sweet, error) {
	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE id=$1 AND owner_id=$2`
	return scanSweet(r.db.QueryRow(ctx, query, id, ownerID))
}

func scanSweet(row pgx.Row) (*domain.Sweet, error) {
	var sweet domain.Sweet
	if err := row.Scan(
		&sweet.ID,
		&sweet.Name,
		&sweet.Category,
		&sweet.Price,
		&sweet.Quantity,
		&sweet.OwnerID,
		&sweet.CreatedAt,
		&sweet.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan sweet: %w", err)
	}
	return &sweet, nil
}

func scanSweets(rows pgx.Rows) ([]domain.Sweet, error) {
	result := []domain.Sweet{}
	for rows.Next() {
		var sweet domain.Sweet
		if err := rows.Scan(
			&sweet.ID,
			&sweet.Name,
			&sweet.Category,
			&sweet.Price,
			&sweet.Quantity,
			&sweet.OwnerID,
			&sweet.CreatedAt,
			&sweet.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sweet)
	}
	return result, rows.Err()
}
