// internal/service/item/application/dto.go
package application

// CreateItemRequest 目录接口创建商品
type CreateItemRequest struct {
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Stock  int64  `json:"stock"`
	ShopID int64  `json:"shopId"`
}

// CreateShopRequest 目录接口创建门店
type CreateShopRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ItemResponse 商品视图。这里的库存读数允许是陈旧的，
// 强一致只在扣减时刻由租约保证。
type ItemResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Stock  int64  `json:"stock"`
	ShopID int64  `json:"shopId"`
}

// ShopResponse 门店视图
type ShopResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}
