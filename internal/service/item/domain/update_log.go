// internal/service/item/domain/update_log.go
package domain

import "time"

// ItemUpdateLog 是追加式的审计记录：每个 (orderId, itemId) 至多一条生效记录。
// 在租约内与扣减决策一起写入，之后不再修改；重复投递时作为幂等回放的依据。
type ItemUpdateLog struct {
	ID int64
	// 标识一次请求
	OrderID int64
	ItemID  int64
	// 实际应用的数量，更新未成功时为 0
	Quantity    int64
	OrderStatus OrderStatus
	CreatedAt   time.Time
}

// NewItemUpdateLog 记录一次更新决策
func NewItemUpdateLog(orderID, itemID, applied int64, status OrderStatus) *ItemUpdateLog {
	return &ItemUpdateLog{
		OrderID:     orderID,
		ItemID:      itemID,
		Quantity:    applied,
		OrderStatus: status,
		CreatedAt:   time.Now(),
	}
}

// ToResult 用历史记录重建当时的结果，用于幂等回放
func (l *ItemUpdateLog) ToResult() *StockUpdateResult {
	return &StockUpdateResult{
		OrderID:     l.OrderID,
		ItemID:      l.ItemID,
		Quantity:    l.Quantity,
		OrderStatus: l.OrderStatus,
	}
}
