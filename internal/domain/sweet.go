package domain

import "time"

// Sweet is an inventory record owned by the user who created it.
type Sweet struct {
	ID        int64
	Name      string
	Category  string
	Price     float64
	Quantity  int
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SweetPatch carries a merge-patch; nil fields are left untouched.
type SweetPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int
}

// Empty reports whether the patch sets no field.
func (p SweetPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil && p.Quantity == nil
}

// Apply merges the set fields into s.
func (p SweetPatch) Apply(s *Sweet) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
}

// SweetFilter describes an owner-scoped search. Absent filters impose no constraint.
type SweetFilter struct {
	OwnerID      int64
	NameFragment *string
	Category     *string
	MinPrice     *float64
	MaxPrice     *float64
	Limit        int
	Offset       int
}
