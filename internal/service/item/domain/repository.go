// internal/service/item/domain/repository.go
package domain

import "context"

// ItemRepository 是商品存储的出站端口。
// 库存值被视为外部持久化的计数器：按 id 读、按 id 条件写。
type ItemRepository interface {
	FindByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item *Item) error
	// UpdateStock 只回写库存值，调用方保证此刻持有该商品的租约
	UpdateStock(ctx context.Context, itemID, newStock int64) error
}

// UpdateLogRepository 是更新日志的出站端口，日志只追加，不更新不删除
type UpdateLogRepository interface {
	// FindByOrderIDAndItemID 未找到时返回 (nil, nil)，找不到不是错误
	FindByOrderIDAndItemID(ctx context.Context, orderID, itemID int64) (*ItemUpdateLog, error)
	Append(ctx context.Context, entry *ItemUpdateLog) error
	FindAllByOrderID(ctx context.Context, orderID int64) ([]*ItemUpdateLog, error)
}

// ShopRepository 门店目录的出站端口
type ShopRepository interface {
	FindByID(ctx context.Context, id int64) (*Shop, error)
	// FindAllByLocation 按地区列出门店，没有匹配时返回空切片
	FindAllByLocation(ctx context.Context, location string) ([]*Shop, error)
	Create(ctx context.Context, shop *Shop) error
}

// ResultPublisher 把终态结果发布回事件网关。
// 发布失败只记录，不回滚已提交的库存决策。
type ResultPublisher interface {
	Publish(ctx context.Context, result *StockUpdateResult) error
}
