// internal/service/item/domain/event.go
package domain

// OrderItemEvent 是入站的订单商品事件，触发一次 updateStock。
// 传输层可能重复投递，引擎靠更新日志吸收重复。
type OrderItemEvent struct {
	OrderID           int64       `json:"orderId"`
	ItemID            int64       `json:"itemId"`
	ShopID            int64       `json:"shopId"`
	Quantity          int64       `json:"quantity"`
	CustomerAccountID int64       `json:"customerAccountId"`
	OrderStatus       OrderStatus `json:"orderStatus"`
}

// StockUpdateResult 是对外发布的终态结果，每个请求恰好一条。
// 以 itemId 作为分区 key，同一商品的结果在传输层内有序可观测。
type StockUpdateResult struct {
	OrderID     int64       `json:"orderId"`
	ItemID      int64       `json:"itemId"`
	Quantity    int64       `json:"quantity"`
	OrderStatus OrderStatus `json:"orderStatus"`
}

// ResultFromEvent 以请求的标识字段组装结果
func ResultFromEvent(event *OrderItemEvent, applied int64, status OrderStatus) *StockUpdateResult {
	return &StockUpdateResult{
		OrderID:     event.OrderID,
		ItemID:      event.ItemID,
		Quantity:    applied,
		OrderStatus: status,
	}
}
