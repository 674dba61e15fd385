// internal/service/item/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"itemservice/internal/service/item/domain"
)

// ItemModel 对应数据库中的 item 表
type ItemModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Name      string
	Price     int64
	Stock     int64 `gorm:"not null;check:stock >= 0"`
	ShopID    int64 `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ItemModel) TableName() string {
	return "item"
}

// ShopModel 对应数据库中的 shop 表
type ShopModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"uniqueIndex"`
	Location  string
	CreatedAt time.Time
}

func (ShopModel) TableName() string {
	return "shop"
}

// ItemUpdateLogModel 对应 item_update_log 表。
// (order_id, item_id) 唯一索引在存储层兜底"至多一条生效记录"的不变量。
type ItemUpdateLogModel struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	OrderID     int64 `gorm:"uniqueIndex:idx_order_item"`
	ItemID      int64 `gorm:"uniqueIndex:idx_order_item"`
	Quantity    int64
	OrderStatus domain.OrderStatus `gorm:"type:varchar(20)"`
	CreatedAt   time.Time
}

func (ItemUpdateLogModel) TableName() string {
	return "item_update_log"
}
