// internal/service/item/domain/item.go
package domain

import (
	"errors"
	"time"
)

// Item 是商品聚合的根实体。Stock 的不变量：任何读者在任何时刻
// 观察到的库存都不为负。
type Item struct {
	ID        int64
	Name      string
	Price     int64
	Stock     int64
	ShopID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 工厂函数: NewItem 创建商品，初始库存不允许为负
func NewItem(name string, price, stock, shopID int64) (*Item, error) {
	if name == "" {
		return nil, errors.New("cannot create item with empty name")
	}
	if stock < 0 {
		return nil, errors.New("cannot create item with negative stock")
	}
	return &Item{
		Name:      name,
		Price:     price,
		Stock:     stock,
		ShopID:    shopID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// ConsumeStock 在租约内做扣减决策：库存足够则扣减并返回实际扣减量，
// 不够则库存不变，返回 0 和 OUT_OF_STOCK。
func (i *Item) ConsumeStock(quantity int64) (applied int64, status OrderStatus) {
	if i.Stock >= quantity {
		i.Stock -= quantity
		i.UpdatedAt = time.Now()
		return quantity, StatusSucceeded
	}
	return 0, StatusOutOfStock
}

// Restock 补货，与扣减共用同一套租约纪律
func (i *Item) Restock(quantity int64) (applied int64, status OrderStatus) {
	i.Stock += quantity
	i.UpdatedAt = time.Now()
	return quantity, StatusSucceeded
}
