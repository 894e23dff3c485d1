package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/sweetshop/internal/domain"
	"github.com/spec-kit/sweetshop/internal/events"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[int64]*domain.User{}}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memorySweetRepo struct {
	mu     sync.Mutex
	nextID int64
	sweets map[int64]*domain.Sweet
	calls  int
}

func newMemorySweetRepo() *memorySweetRepo {
	return &memorySweetRepo{sweets: map[int64]*domain.Sweet{}}
}

func (r *memorySweetRepo) Create(_ context.Context, sweet *domain.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.nextID++
	sweet.ID = r.nextID
	cp := *sweet
	r.sweets[sweet.ID] = &cp
	return nil
}

func (r *memorySweetRepo) GetByID(_ context.Context, id int64) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memorySweetRepo) List(_ context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := []domain.Sweet{}
	for _, s := range r.sweets {
		if s.OwnerID != f.OwnerID {
			continue
		}
		if f.NameFragment != nil && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(*f.NameFragment)) {
			continue
		}
		if f.Category != nil && s.Category != *f.Category {
			continue
		}
		if f.MinPrice != nil && s.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && s.Price > *f.MaxPrice {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []domain.Sweet{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memorySweetRepo) owned(id, ownerID int64) (*domain.Sweet, error) {
	s, ok := r.sweets[id]
	if !ok || s.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (r *memorySweetRepo) Update(_ context.Context, id, ownerID int64, patch domain.SweetPatch) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	s, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	patch.Apply(s)
	cp := *s
	return &cp, nil
}

func (r *memorySweetRepo) Delete(_ context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, err := r.owned(id, ownerID); err != nil {
		return err
	}
	delete(r.sweets, id)
	return nil
}

func (r *memorySweetRepo) Purchase(_ context.Context, id, ownerID int64) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	s, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	if s.Quantity < 1 {
		return nil, domain.ErrOutOfStock
	}
	s.Quantity--
	cp := *s
	return &cp, nil
}

func (r *memorySweetRepo) Restock(_ context.Context, id, ownerID int64, amount int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	s, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	s.Quantity += amount
	cp := *s
	return &cp, nil
}

func (r *memorySweetRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
