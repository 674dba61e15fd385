// internal/service/item/domain/state.go
package domain

// OrderStatus 是一次库存更新请求的状态。
// 入站事件带着 WAITING 进来，引擎给出终态。
type OrderStatus string

const (
	StatusWaiting    OrderStatus = "WAITING"
	StatusSucceeded  OrderStatus = "SUCCEEDED"
	StatusOutOfStock OrderStatus = "OUT_OF_STOCK"
	StatusFailed     OrderStatus = "FAILED"
)

// IsTerminal 判断状态是否为终态
func (s OrderStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusOutOfStock || s == StatusFailed
}

// UpdateMode 区分共用同一套锁纪律的两类更新
type UpdateMode string

const (
	ModeStockConsumption UpdateMode = "STOCK_CONSUMPTION"
	ModeStockRestock     UpdateMode = "STOCK_RESTOCK"
)
