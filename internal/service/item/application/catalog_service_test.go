package application_test

import (
	"context"
	"sync"
	"testing"

	"itemservice/internal/service/item/application"
	"itemservice/internal/service/item/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memShopRepo is an in-memory domain.ShopRepository.
type memShopRepo struct {
	mu    sync.Mutex
	shops map[int64]*domain.Shop
}

func newMemShopRepo(shops ...*domain.Shop) *memShopRepo {
	r := &memShopRepo{shops: make(map[int64]*domain.Shop)}
	for _, shop := range shops {
		copied := *shop
		r.shops[shop.ID] = &copied
	}
	return r
}

func (r *memShopRepo) FindByID(ctx context.Context, id int64) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shop, ok := r.shops[id]
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	copied := *shop
	return &copied, nil
}

func (r *memShopRepo) FindAllByLocation(ctx context.Context, location string) ([]*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Shop, 0)
	for _, shop := range r.shops {
		if shop.Location == location {
			copied := *shop
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memShopRepo) Create(ctx context.Context, shop *domain.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shops {
		if existing.Name == shop.Name {
			return domain.ErrDuplicateShopName
		}
	}
	shop.ID = int64(len(r.shops) + 1)
	copied := *shop
	r.shops[shop.ID] = &copied
	return nil
}

func TestCatalog_GetShopsByLocation(t *testing.T) {
	shops := newMemShopRepo(
		&domain.Shop{ID: 1, Name: "shop-seoul-1", Location: "seoul"},
		&domain.Shop{ID: 2, Name: "shop-seoul-2", Location: "seoul"},
		&domain.Shop{ID: 3, Name: "shop-busan", Location: "busan"},
	)
	catalog := application.NewCatalogService(newMemItemRepo(), shops)

	found, err := catalog.GetShopsByLocation(context.Background(), "seoul")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, shop := range found {
		assert.Equal(t, "seoul", shop.Location)
	}

	empty, err := catalog.GetShopsByLocation(context.Background(), "jeju")
	require.NoError(t, err)
	assert.Empty(t, empty, "no match is an empty list, not an error")
}

func TestCatalog_CreateItemRequiresExistingShop(t *testing.T) {
	shops := newMemShopRepo(&domain.Shop{ID: 1, Name: "shop-seoul", Location: "seoul"})
	catalog := application.NewCatalogService(newMemItemRepo(), shops)

	_, err := catalog.CreateItem(context.Background(), &application.CreateItemRequest{
		Name: "apple", Price: 1200, Stock: 100, ShopID: 99,
	})
	require.ErrorIs(t, err, domain.ErrShopNotFound)

	created, err := catalog.CreateItem(context.Background(), &application.CreateItemRequest{
		Name: "apple", Price: 1200, Stock: 100, ShopID: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestCatalog_CreateShopRejectsDuplicateName(t *testing.T) {
	shops := newMemShopRepo(&domain.Shop{ID: 1, Name: "shop-seoul", Location: "seoul"})
	catalog := application.NewCatalogService(newMemItemRepo(), shops)

	_, err := catalog.CreateShop(context.Background(), &application.CreateShopRequest{
		Name: "shop-seoul", Location: "busan",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateShopName)
}
