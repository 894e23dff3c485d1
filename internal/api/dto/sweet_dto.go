package dto

import (
	"time"

	"github.com/spec-kit/sweetshop/internal/domain"
)

// SweetCreateRequest payload for POST /sweets.
type SweetCreateRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Category string  `json:"category" validate:"required,max=255"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

// SweetUpdateRequest is a merge-patch; omitted fields stay unchanged.
// Quantity accepts any value, including negatives.
type SweetUpdateRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Category *string  `json:"category" validate:"omitempty,min=1,max=255"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity *int     `json:"quantity"`
}

// Patch converts the request into a domain patch.
func (r SweetUpdateRequest) Patch() domain.SweetPatch {
	return domain.SweetPatch{Name: r.Name, Category: r.Category, Price: r.Price, Quantity: r.Quantity}
}

// RestockRequest payload for POST /sweets/:id/restock.
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// SweetListQuery holds paging parameters.
type SweetListQuery struct {
	Skip  int `query:"skip" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

// SweetSearchQuery holds optional search filters.
type SweetSearchQuery struct {
	Name     *string  `query:"name"`
	Category *string  `query:"category"`
	MinPrice *float64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice *float64 `query:"max_price" validate:"omitempty,gte=0"`
}

// SweetResponse is the public view of a sweet.
type SweetResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSweetResponse maps a domain sweet.
func NewSweetResponse(s *domain.Sweet) SweetResponse {
	return SweetResponse{
		ID:        s.ID,
		Name:      s.Name,
		Category:  s.Category,
		Price:     s.Price,
		Quantity:  s.Quantity,
		OwnerID:   s.OwnerID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// NewSweetResponses maps a slice of sweets.
func NewSweetResponses(sweets []domain.Sweet) []SweetResponse {
	out := make([]SweetResponse, 0, len(sweets))
	for i := range sweets {
		out = append(out, NewSweetResponse(&sweets[i]))
	}
	return out
}
