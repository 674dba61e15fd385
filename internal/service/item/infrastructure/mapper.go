// internal/service/item/infrastructure/mapper.go
package infrastructure

import "itemservice/internal/service/item/domain"

// Mapper: 数据库模型与领域模型互转

func ToDomainItem(m *ItemModel) *domain.Item {
	return &domain.Item{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Stock:     m.Stock,
		ShopID:    m.ShopID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromDomainItem(item *domain.Item) *ItemModel {
	return &ItemModel{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Stock:     item.Stock,
		ShopID:    item.ShopID,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func ToDomainShop(m *ShopModel) *domain.Shop {
	return &domain.Shop{
		ID:        m.ID,
		Name:      m.Name,
		Location:  m.Location,
		CreatedAt: m.CreatedAt,
	}
}

func FromDomainShop(shop *domain.Shop) *ShopModel {
	return &ShopModel{
		ID:        shop.ID,
		Name:      shop.Name,
		Location:  shop.Location,
		CreatedAt: shop.CreatedAt,
	}
}

func ToDomainUpdateLog(m *ItemUpdateLogModel) *domain.ItemUpdateLog {
	return &domain.ItemUpdateLog{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ItemID:      m.ItemID,
		Quantity:    m.Quantity,
		OrderStatus: m.OrderStatus,
		CreatedAt:   m.CreatedAt,
	}
}

func FromDomainUpdateLog(entry *domain.ItemUpdateLog) *ItemUpdateLogModel {
	return &ItemUpdateLogModel{
		ID:          entry.ID,
		OrderID:     entry.OrderID,
		ItemID:      entry.ItemID,
		Quantity:    entry.Quantity,
		OrderStatus: entry.OrderStatus,
		CreatedAt:   entry.CreatedAt,
	}
}
