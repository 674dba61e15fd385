package domain_test

import (
	"testing"

	"itemservice/internal/service/item/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeStock(t *testing.T) {
	tests := []struct {
		name        string
		stock       int64
		quantity    int64
		wantApplied int64
		wantStatus  domain.OrderStatus
		wantStock   int64
	}{
		{name: "sufficient stock", stock: 100, quantity: 50, wantApplied: 50, wantStatus: domain.StatusSucceeded, wantStock: 50},
		{name: "exact stock", stock: 50, quantity: 50, wantApplied: 50, wantStatus: domain.StatusSucceeded, wantStock: 0},
		{name: "insufficient stock", stock: 100, quantity: 200, wantApplied: 0, wantStatus: domain.StatusOutOfStock, wantStock: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &domain.Item{ID: 1, Name: "apple", Stock: tt.stock}
			applied, status := item.ConsumeStock(tt.quantity)
			assert.Equal(t, tt.wantApplied, applied)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStock, item.Stock)
		})
	}
}

func TestRestock(t *testing.T) {
	item := &domain.Item{ID: 1, Name: "apple", Stock: 10}
	applied, status := item.Restock(40)
	assert.Equal(t, int64(40), applied)
	assert.Equal(t, domain.StatusSucceeded, status)
	assert.Equal(t, int64(50), item.Stock)
}

func TestNewItem_RejectsNegativeStock(t *testing.T) {
	_, err := domain.NewItem("apple", 1200, -1, 1)
	require.Error(t, err)
}

func TestUpdateLogToResult(t *testing.T) {
	entry := domain.NewItemUpdateLog(3, 7, 10, domain.StatusSucceeded)
	result := entry.ToResult()

	assert.Equal(t, int64(3), result.OrderID)
	assert.Equal(t, int64(7), result.ItemID)
	assert.Equal(t, int64(10), result.Quantity)
	assert.Equal(t, domain.StatusSucceeded, result.OrderStatus)
}
