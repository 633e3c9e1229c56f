// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderflow/internal/service/order/domain"
)

// GormRepository 是 OrderRepository 的 MySQL/GORM 实现，
// 需要持久化投影时替换内存仓储使用。引擎不感知差异。
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository 打开数据库连接并自动建表。
func NewGormRepository(dsn string) (*GormRepository, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	if err := db.AutoMigrate(&OrderModel{}); err != nil {
		return nil, errors.Wrap(err, "migrate orders table")
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "query order")
	}
	return toDomainOrder(&model)
}

func (r *GormRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count order")
	}
	return count > 0, nil
}

func (r *GormRepository) Save(ctx context.Context, order *domain.Order) error {
	model, err := toOrderModel(order)
	if err != nil {
		return err
	}
	// 同主键覆盖写入，对应仓储的 upsert 语义
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error
	return errors.Wrap(err, "upsert order")
}

func (r *GormRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	all := make([]*domain.Order, 0, len(models))
	for i := range models {
		order, err := toDomainOrder(&models[i])
		if err != nil {
			return nil, err
		}
		all = append(all, order)
	}
	return all, nil
}
