package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sweetshop/internal/auth"
	"github.com/spec-kit/sweetshop/internal/domain"
	"github.com/spec-kit/sweetshop/internal/events"
	"github.com/spec-kit/sweetshop/internal/repository"
	apperrors "github.com/spec-kit/sweetshop/pkg/util"
)

// InventoryService applies the authorization rules around the sweet store.
type InventoryService struct {
	sweets     repository.SweetRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// InventoryDependencies bundles collaborators for the inventory service.
type InventoryDependencies struct {
	SweetRepo  repository.SweetRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// SweetInput describes a new sweet.
type SweetInput struct {
	Name     string
	Category string
	Price    float64
	Quantity int
}

// SweetSearch holds optional search filters; nil means unconstrained.
type SweetSearch struct {
	Name     *string
	Category *string
	MinPrice *float64
	MaxPrice *float64
}

// NewInventoryService constructs the service.
func NewInventoryService(deps InventoryDependencies) *InventoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		sweets:     deps.SweetRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create adds a sweet owned by the acting admin.
func (s *InventoryService) Create(ctx context.Context, actor *domain.User, input SweetInput) (*domain.Sweet, error) {
	if err := auth.CheckAdmin(actor); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if input.Price < 0 {
		details["price"] = "must be at least 0"
	}
	if input.Quantity < 0 {
		details["quantity"] = "must be at least 0"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid sweet", details)
	}

	sweet := &domain.Sweet{
		Name:     input.Name,
		Category: input.Category,
		Price:    input.Price,
		Quantity: input.Quantity,
		OwnerID:  actor.ID,
	}
	if err := s.sweets.Create(ctx, sweet); err != nil {
		return nil, err
	}
	s.logger.Info("sweet created", zap.Int64("sweet_id", sweet.ID), zap.Int64("owner_id", actor.ID))
	s.publish(ctx, events.EventSweetCreated, actor, sweet)
	return sweet, nil
}

// Get returns one of the caller's sweets. Sweets owned by anyone else are
// reported as ErrNotFound.
func (s *InventoryService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Sweet, error) {
	sweet, err := s.sweets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckOwner(actor, sweet); err != nil {
		return nil, err
	}
	return sweet, nil
}

// List pages through the caller's sweets in insertion order.
func (s *InventoryService) List(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.Sweet, error) {
	if actor == nil {
		return nil, domain.ErrInvalidToken
	}
	if offset < 0 {
		offset = 0
	}
	return s.sweets.List(ctx, domain.SweetFilter{
		OwnerID: actor.ID,
		Limit:   repository.ListLimit(limit),
		Offset:  offset,
	})
}

// Search filters the caller's sweets; all given filters must match.
func (s *InventoryService) Search(ctx context.Context, actor *domain.User, q SweetSearch) ([]domain.Sweet, error) {
	if actor == nil {
		return nil, domain.ErrInvalidToken
	}
	return s.sweets.List(ctx, domain.SweetFilter{
		OwnerID:      actor.ID,
		NameFragment: q.Name,
		Category:     q.Category,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
	})
}

// Update merge-patches one of the acting admin's sweets. Quantity may be set
// to any value here; only Purchase enforces the stock floor.
func (s *InventoryService) Update(ctx context.Context, actor *domain.User, id int64, patch domain.SweetPatch) (*domain.Sweet, error) {
	if err := auth.CheckAdmin(actor); err != nil {
		return nil, err
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, apperrors.NewValidationError("invalid sweet", map[string]any{"price": "must be at least 0"})
	}
	sweet, err := s.sweets.Update(ctx, id, actor.ID, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sweet updated", zap.Int64("sweet_id", id))
	s.publish(ctx, events.EventSweetUpdated, actor, sweet)
	return sweet, nil
}

// Delete removes one of the acting admin's sweets.
func (s *InventoryService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := auth.CheckAdmin(actor); err != nil {
		return err
	}
	if err := s.sweets.Delete(ctx, id, actor.ID); err != nil {
		return err
	}
	s.logger.Info("sweet deleted", zap.Int64("sweet_id", id))
	s.publish(ctx, events.EventSweetDeleted, actor, &domain.Sweet{ID: id, OwnerID: actor.ID})
	return nil
}

// Purchase takes one unit from the caller's sweet, failing with
// ErrOutOfStock when none is left.
func (s *InventoryService) Purchase(ctx context.Context, actor *domain.User, id int64) (*domain.Sweet, error) {
	if actor == nil {
		return nil, domain.ErrInvalidToken
	}
	sweet, err := s.sweets.Purchase(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sweet purchased", zap.Int64("sweet_id", id), zap.Int("quantity", sweet.Quantity))
	s.publish(ctx, events.EventSweetPurchased, actor, sweet)
	return sweet, nil
}

// Restock adds amount units to one of the acting admin's sweets.
func (s *InventoryService) Restock(ctx context.Context, actor *domain.User, id int64, amount int) (*domain.Sweet, error) {
	if err := auth.CheckAdmin(actor); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	sweet, err := s.sweets.Restock(ctx, id, actor.ID, amount)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sweet restocked", zap.Int64("sweet_id", id), zap.Int("amount", amount), zap.Int("quantity", sweet.Quantity))
	s.publish(ctx, events.EventSweetRestocked, actor, sweet)
	return sweet, nil
}

func (s *InventoryService) publish(ctx context.Context, eventType events.EventType, actor *domain.User, sweet *domain.Sweet) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewSweetEvent(eventType, actor.ID, sweet, s.now())
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
