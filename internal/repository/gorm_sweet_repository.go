package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/sweetshop/internal/domain"
)

type gormSweetRepository struct {
	db *gorm.DB
}

// NewGormSweetRepository returns a gorm-backed implementation, used with SQLite.
func NewGormSweetRepository(db *gorm.DB) SweetRepository {
	return &gormSweetRepository{db: db}
}

func (r *gormSweetRepository) Create(ctx context.Context, sweet *domain.Sweet) error {
	rec := sweetRecord{
		Name:     sweet.Name,
		Category: sweet.Category,
		Price:    sweet.Price,
		Quantity: sweet.Quantity,
		OwnerID:  sweet.OwnerID,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert sweet: %w", err)
	}
	sweet.ID = rec.ID
	sweet.CreatedAt = rec.CreatedAt
	sweet.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *gormSweetRepository) GetByID(ctx context.Context, id int64) (*domain.Sweet, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *gormSweetRepository) List(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error) {
	q := r.db.WithContext(ctx).Model(&sweetRecord{}).Where("owner_id = ?", filter.OwnerID)
	if filter.NameFragment != nil && *filter.NameFragment != "" {
		q = q.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, containsPattern(*filter.NameFragment))
	}
	if filter.Category != nil && *filter.Category != "" {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var recs []sweetRecord
	if err := q.Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	out := make([]domain.Sweet, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, nil
}

func (r *gormSweetRepository) Update(ctx context.Context, id, ownerID int64, patch domain.SweetPatch) (*domain.Sweet, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		updates["quantity"] = *patch.Quantity
	}
	if len(updates) == 0 {
		return r.first(r.db.WithContext(ctx), "id = ? AND owner_id = ?", id, ownerID)
	}
	updates["updated_at"] = time.Now()

	var out *domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&sweetRecord{}).Where("id = ? AND owner_id = ?", id, ownerID).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update sweet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		var err error
		out, err = r.first(tx, "id = ?", id)
		return err
	})
	return out, err
}

func (r *gormSweetRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&sweetRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete sweet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *gormSweetRepository) Purchase(ctx context.Context, id, ownerID int64) (*domain.Sweet, error) {
	var out *domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&sweetRecord{}).
			Where("id = ? AND owner_id = ? AND quantity >= 1", id, ownerID).
			Updates(map[string]any{"quantity": gorm.Expr("quantity - 1"), "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("purchase sweet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&sweetRecord{}).Where("id = ? AND owner_id = ?", id, ownerID).Count(&count).Error; err != nil {
				return fmt.Errorf("check sweet: %w", err)
			}
			if count == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrOutOfStock
		}
		var err error
		out, err = r.first(tx, "id = ?", id)
		return err
	})
	return out, err
}

func (r *gormSweetRepository) Restock(ctx context.Context, id, ownerID int64, amount int) (*domain.Sweet, error) {
	var out *domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&sweetRecord{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Updates(map[string]any{"quantity": gorm.Expr("quantity + ?", amount), "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("restock sweet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		var err error
		out, err = r.first(tx, "id = ?", id)
		return err
	})
	return out, err
}

func (r *gormSweetRepository) first(db *gorm.DB, cond string, args ...any) (*domain.Sweet, error) {
	var rec sweetRecord
	if err := db.Where(cond, args...).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select sweet: %w", err)
	}
	return rec.toDomain(), nil
}
