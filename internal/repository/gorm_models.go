package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/sweetshop/internal/domain"
)

type userRecord struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:customer"`
	CreatedAt    time.Time
	Sweets       []sweetRecord `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

func (userRecord) TableName() string { return "users" }

type sweetRecord struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"not null"`
	Category  string  `gorm:"not null"`
	Price     float64 `gorm:"not null"`
	Quantity  int     `gorm:"not null"`
	OwnerID   int64   `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sweetRecord) TableName() string { return "sweets" }

// AutoMigrate creates or updates the gorm managed schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &sweetRecord{})
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

func (r *sweetRecord) toDomain() *domain.Sweet {
	return &domain.Sweet{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Price:     r.Price,
		Quantity:  r.Quantity,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
