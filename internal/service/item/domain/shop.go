// internal/service/item/domain/shop.go
package domain

import (
	"errors"
	"time"
)

// Shop 是商品的归属门店，Name 全局唯一
type Shop struct {
	ID        int64
	Name      string
	Location  string
	CreatedAt time.Time
}

func NewShop(name, location string) (*Shop, error) {
	if name == "" {
		return nil, errors.New("cannot create shop with empty name")
	}
	return &Shop{
		Name:      name,
		Location:  location,
		CreatedAt: time.Now(),
	}, nil
}
