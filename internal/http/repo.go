package httpapi

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
	"github.com/denisok6893-rgb/property-underwriting/internal/storage"
)

// PropertiesRepo is the listing source the API scores against.
type PropertiesRepo interface {
	List(ctx context.Context, p ListParams) ([]domain.RawProperty, int, error)
	Get(ctx context.Context, id string) (domain.RawProperty, bool, error)
	Create(ctx context.Context, p domain.RawProperty) (domain.RawProperty, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ListParams struct {
	Limit    int
	Offset   int
	City     string
	MinPrice float64
	MaxPrice float64
	MinBeds  int
	Sort     string
}

// MemoryPropertiesRepo keeps listings in process memory.
type MemoryPropertiesRepo struct {
	mu    sync.RWMutex
	items []domain.RawProperty
}

func NewMemoryPropertiesRepo(seed []domain.RawProperty) *MemoryPropertiesRepo {
	return &MemoryPropertiesRepo{items: append([]domain.RawProperty(nil), seed...)}
}

func (r *MemoryPropertiesRepo) List(_ context.Context, p ListParams) ([]domain.RawProperty, int, error) {
	r.mu.RLock()
	matched := make([]domain.RawProperty, 0, len(r.items))
	for _, it := range r.items {
		if matchesParams(p, it) {
			matched = append(matched, it)
		}
	}
	r.mu.RUnlock()

	switch p.Sort {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].ListPrice < matched[j].ListPrice })
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].ListPrice > matched[j].ListPrice })
	}

	total := len(matched)
	offset := min(max(p.Offset, 0), total)
	end := total
	if p.Limit > 0 {
		end = min(offset+p.Limit, total)
	}
	return matched[offset:end], total, nil
}

func matchesParams(p ListParams, it domain.RawProperty) bool {
	if c := strings.TrimSpace(p.City); c != "" && !strings.Contains(strings.ToLower(it.City), strings.ToLower(c)) {
		return false
	}
	if p.MinPrice > 0 && it.ListPrice < p.MinPrice {
		return false
	}
	if p.MaxPrice > 0 && it.ListPrice > p.MaxPrice {
		return false
	}
	if p.MinBeds > 0 && (it.Beds == nil || *it.Beds < p.MinBeds) {
		return false
	}
	return true
}

func (r *MemoryPropertiesRepo) Get(_ context.Context, id string) (domain.RawProperty, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.ID == id {
			return it, true, nil
		}
	}
	return domain.RawProperty{}, false, nil
}

func (r *MemoryPropertiesRepo) Create(_ context.Context, p domain.RawProperty) (domain.RawProperty, error) {
	if p.ID == "" {
		p.ID = "p-" + uuid.NewString()
	}
	r.mu.Lock()
	r.items = append(r.items, p)
	r.mu.Unlock()
	return p, nil
}

func (r *MemoryPropertiesRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// SQLitePropertiesRepo adapts storage.SQLiteStore to PropertiesRepo.
type SQLitePropertiesRepo struct {
	Store *storage.SQLiteStore
}

func (r *SQLitePropertiesRepo) List(_ context.Context, p ListParams) ([]domain.RawProperty, int, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	return r.Store.ListProperties(limit, p.Offset, storage.ListFilter{
		City:     p.City,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		MinBeds:  p.MinBeds,
		Sort:     p.Sort,
	})
}

func (r *SQLitePropertiesRepo) Get(_ context.Context, id string) (domain.RawProperty, bool, error) {
	return r.Store.GetProperty(id)
}

func (r *SQLitePropertiesRepo) Create(_ context.Context, p domain.RawProperty) (domain.RawProperty, error) {
	return r.Store.CreateProperty(p)
}

func (r *SQLitePropertiesRepo) Delete(_ context.Context, id string) (bool, error) {
	return r.Store.DeleteProperty(id)
}
