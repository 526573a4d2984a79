package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/db/memory"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	created, err := repo.Create(ctx, &domain.User{Name: "Ana", Email: "ana@test.com", Role: domain.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, &domain.User{Name: "Other", Email: "ana@test.com"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("find by email and id", func(t *testing.T) {
		byEmail, err := repo.FindByEmail(ctx, "ana@test.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)

		byID, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", byID.Name)
	})

	t.Run("email match is exact", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "ANA@test.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		u, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		u.Role = domain.RoleAdmin

		again, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, again.Role)
	})

	t.Run("set role", func(t *testing.T) {
		require.NoError(t, repo.SetRole(created.ID, domain.RoleAdmin))
		u, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.ErrorIs(t, repo.SetRole("missing", domain.RoleAdmin), domain.ErrUserNotFound)
	})
}

func newProduct(id, name string, price float64, expiry time.Time) *domain.Product {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Product{
		ID:              id,
		Name:            name,
		Price:           price,
		Description:     "description text",
		ElaborationDate: created.AddDate(-1, 0, 0),
		ExpiryDate:      expiry,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func seed(t *testing.T, repo *memory.ProductRepository, products ...*domain.Product) {
	t.Helper()
	for _, p := range products {
		require.NoError(t, repo.Create(context.Background(), p))
	}
}

func TestProductRepository_List(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewProductRepository()
	seed(t, repo,
		newProduct("1", "Vitamin C", 5, base.AddDate(0, 3, 0)),
		newProduct("2", "Vitamin D", 9, base.AddDate(0, 1, 0)),
		newProduct("3", "Zinc", 2, base.AddDate(0, 2, 0)),
	)

	testCases := []struct {
		name      string
		filter    ports.ListProductsFilter
		wantIDs   []string
		wantTotal int64
	}{
		{
			name:      "search is case insensitive",
			filter:    ports.ListProductsFilter{Search: "VITAMIN", SortBy: domain.SortByName, Order: domain.OrderAsc, Page: 1, Limit: 10},
			wantIDs:   []string{"1", "2"},
			wantTotal: 2,
		},
		{
			name:      "sort by price descending",
			filter:    ports.ListProductsFilter{SortBy: domain.SortByPrice, Order: domain.OrderDesc, Page: 1, Limit: 10},
			wantIDs:   []string{"2", "1", "3"},
			wantTotal: 3,
		},
		{
			name:      "sort by expiry ascending",
			filter:    ports.ListProductsFilter{SortBy: domain.SortByExpiryDate, Order: domain.OrderAsc, Page: 1, Limit: 10},
			wantIDs:   []string{"2", "3", "1"},
			wantTotal: 3,
		},
		{
			name:      "second page",
			filter:    ports.ListProductsFilter{SortBy: domain.SortByName, Order: domain.OrderAsc, Page: 2, Limit: 2},
			wantIDs:   []string{"3"},
			wantTotal: 3,
		},
		{
			name:      "page past the end",
			filter:    ports.ListProductsFilter{SortBy: domain.SortByName, Order: domain.OrderAsc, Page: 5, Limit: 2},
			wantIDs:   []string{},
			wantTotal: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, total)

			ids := make([]string, 0, len(items))
			for _, p := range items {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	seed(t, repo, newProduct("1", "Aspirin", 3, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))

	name := "Aspirin 500mg"
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err := repo.Update(ctx, "1", domain.ProductPatch{Name: &name}, at)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 3.0, updated.Price)
	assert.Equal(t, at, updated.UpdatedAt)

	_, err = repo.Update(ctx, "missing", domain.ProductPatch{Name: &name}, at)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	deleted, err := repo.Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "1")
	require.NoError(t, err)
	assert.False(t, deleted)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProductRepository_Counts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewProductRepository()
	seed(t, repo,
		newProduct("past", "A", 1, now.Add(-time.Hour)),
		newProduct("exact", "B", 1, now),
		newProduct("future", "C", 1, now.Add(time.Hour)),
	)

	by, err := repo.CountExpiringBy(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), by)

	after, err := repo.CountExpiringAfter(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after)
}
