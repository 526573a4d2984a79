package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Product
	order []string // insertion order, keeps equal sort keys stable
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[string]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	if p.Image != nil {
		img := *p.Image
		c.Image = &img
	}
	return &c
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = cloneProduct(p)
	r.order = append(r.order, p.ID)
	return nil
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *ProductRepository) FindAll(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneProduct(r.items[id]))
	}
	return out, nil
}

// List applies the same search, ordering and paging the SQL and Mongo
// drivers push down to the database.
func (r *ProductRepository) List(ctx context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	all, _ := r.FindAll(ctx)

	needle := strings.ToLower(f.Search)
	matched := all[:0]
	for _, p := range all {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matched = append(matched, p)
	}

	less := lessFunc(f.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		if f.Order == domain.OrderAsc {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []*domain.Product{}, total, nil
	}
	end := skip + f.Limit
	if f.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func lessFunc(field domain.SortField) func(a, b *domain.Product) bool {
	switch field {
	case domain.SortByName:
		return func(a, b *domain.Product) bool { return a.Name < b.Name }
	case domain.SortByPrice:
		return func(a, b *domain.Product) bool { return a.Price < b.Price }
	case domain.SortByElaborationDate:
		return func(a, b *domain.Product) bool { return a.ElaborationDate.Before(b.ElaborationDate) }
	case domain.SortByExpiryDate:
		return func(a, b *domain.Product) bool { return a.ExpiryDate.Before(b.ExpiryDate) }
	default:
		return func(a, b *domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func (r *ProductRepository) Update(_ context.Context, id string, patch domain.ProductPatch, updatedAt time.Time) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	patch.Apply(p)
	p.UpdatedAt = updatedAt
	return cloneProduct(p), nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *ProductRepository) CountExpiringBy(_ context.Context, t time.Time) (int64, error) {
	return r.count(func(p *domain.Product) bool { return !p.ExpiryDate.After(t) }), nil
}

func (r *ProductRepository) CountExpiringAfter(_ context.Context, t time.Time) (int64, error) {
	return r.count(func(p *domain.Product) bool { return p.ExpiryDate.After(t) }), nil
}

func (r *ProductRepository) count(match func(*domain.Product) bool) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.items {
		if match(p) {
			n++
		}
	}
	return n
}
