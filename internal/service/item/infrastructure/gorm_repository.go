// internal/service/item/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"itemservice/internal/service/item/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormItemRepository 是 domain.ItemRepository 的 GORM 实现
type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	var model ItemModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, errors.Wrap(err, "failed to find item")
	}
	return ToDomainItem(&model), nil
}

func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	model := FromDomainItem(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "failed to create item")
	}
	item.ID = model.ID
	return nil
}

// UpdateStock 只回写库存列。调用方持有该商品的租约，这里不做条件写
func (r *GormItemRepository) UpdateStock(ctx context.Context, itemID, newStock int64) error {
	err := r.db.WithContext(ctx).Model(&ItemModel{}).Where("id = ?", itemID).Update("stock", newStock).Error
	if err != nil {
		return errors.Wrap(err, "failed to update stock")
	}
	return nil
}

// GormShopRepository 是 domain.ShopRepository 的 GORM 实现
type GormShopRepository struct {
	db *gorm.DB
}

func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) FindByID(ctx context.Context, id int64) (*domain.Shop, error) {
	var model ShopModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShopNotFound
		}
		return nil, errors.Wrap(err, "failed to find shop")
	}
	return ToDomainShop(&model), nil
}

func (r *GormShopRepository) FindAllByLocation(ctx context.Context, location string) ([]*domain.Shop, error) {
	var models []ShopModel
	if err := r.db.WithContext(ctx).Where("location = ?", location).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list shops by location")
	}
	shops := make([]*domain.Shop, 0, len(models))
	for i := range models {
		shops = append(shops, ToDomainShop(&models[i]))
	}
	return shops, nil
}

func (r *GormShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	model := FromDomainShop(shop)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateShopName
		}
		return errors.Wrap(err, "failed to create shop")
	}
	shop.ID = model.ID
	return nil
}

// GormUpdateLogRepository 是 domain.UpdateLogRepository 的 GORM 实现。
// 日志只追加：这里没有任何 Update/Delete。
type GormUpdateLogRepository struct {
	db *gorm.DB
}

func NewGormUpdateLogRepository(db *gorm.DB) *GormUpdateLogRepository {
	return &GormUpdateLogRepository{db: db}
}

func (r *GormUpdateLogRepository) FindByOrderIDAndItemID(ctx context.Context, orderID, itemID int64) (*domain.ItemUpdateLog, error) {
	var model ItemUpdateLogModel
	err := r.db.WithContext(ctx).Where("order_id = ? AND item_id = ?", orderID, itemID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 找不到不是错误，表示该请求尚未被处理过
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find update log")
	}
	return ToDomainUpdateLog(&model), nil
}

func (r *GormUpdateLogRepository) Append(ctx context.Context, entry *domain.ItemUpdateLog) error {
	model := FromDomainUpdateLog(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "failed to append update log")
	}
	entry.ID = model.ID
	return nil
}

func (r *GormUpdateLogRepository) FindAllByOrderID(ctx context.Context, orderID int64) ([]*domain.ItemUpdateLog, error) {
	var models []ItemUpdateLogModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list update logs")
	}
	entries := make([]*domain.ItemUpdateLog, 0, len(models))
	for i := range models {
		entries = append(entries, ToDomainUpdateLog(&models[i]))
	}
	return entries, nil
}
