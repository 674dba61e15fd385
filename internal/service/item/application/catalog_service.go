// internal/service/item/application/catalog_service.go
package application

import (
	"context"

	"itemservice/internal/service/item/domain"
)

// CatalogService 处理商品/门店目录的增查。
// 目录是库存引擎的外部协作者，这里只提供最薄的一层。
type CatalogService struct {
	items domain.ItemRepository
	shops domain.ShopRepository
}

func NewCatalogService(items domain.ItemRepository, shops domain.ShopRepository) *CatalogService {
	return &CatalogService{items: items, shops: shops}
}

func (s *CatalogService) CreateItem(ctx context.Context, req *CreateItemRequest) (*ItemResponse, error) {
	// 归属门店必须存在
	if _, err := s.shops.FindByID(ctx, req.ShopID); err != nil {
		return nil, err
	}

	item, err := domain.NewItem(req.Name, req.Price, req.Stock, req.ShopID)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return itemToResponse(item), nil
}

func (s *CatalogService) GetItem(ctx context.Context, id int64) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return itemToResponse(item), nil
}

func (s *CatalogService) CreateShop(ctx context.Context, req *CreateShopRequest) (*ShopResponse, error) {
	shop, err := domain.NewShop(req.Name, req.Location)
	if err != nil {
		return nil, err
	}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, err
	}
	return shopToResponse(shop), nil
}

// GetShopsByLocation 按地区列出门店，查无匹配返回空列表而不是错误
func (s *CatalogService) GetShopsByLocation(ctx context.Context, location string) ([]*ShopResponse, error) {
	shops, err := s.shops.FindAllByLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	out := make([]*ShopResponse, 0, len(shops))
	for _, shop := range shops {
		out = append(out, shopToResponse(shop))
	}
	return out, nil
}

func (s *CatalogService) GetShop(ctx context.Context, id int64) (*ShopResponse, error) {
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return shopToResponse(shop), nil
}

func itemToResponse(item *domain.Item) *ItemResponse {
	return &ItemResponse{ID: item.ID, Name: item.Name, Price: item.Price, Stock: item.Stock, ShopID: item.ShopID}
}

func shopToResponse(shop *domain.Shop) *ShopResponse {
	return &ShopResponse{ID: shop.ID, Name: shop.Name, Location: shop.Location}
}
