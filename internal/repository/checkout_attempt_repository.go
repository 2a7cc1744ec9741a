package repository

import (
	"errors"

	"github.com/campusbooks/internal/models"

	"gorm.io/gorm"
)

// CheckoutAttemptRepository 结算幂等记录数据访问接口
type CheckoutAttemptRepository interface {
	WithTx(tx *gorm.DB) CheckoutAttemptRepository
	GetByKey(buyerID uint, key string) (*models.CheckoutAttempt, error)
	Create(attempt *models.CheckoutAttempt) error
}

// GormCheckoutAttemptRepository GORM 实现
type GormCheckoutAttemptRepository struct {
	db *gorm.DB
}

// NewCheckoutAttemptRepository 创建结算幂等记录仓库
func NewCheckoutAttemptRepository(db *gorm.DB) *GormCheckoutAttemptRepository {
	return &GormCheckoutAttemptRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCheckoutAttemptRepository) WithTx(tx *gorm.DB) CheckoutAttemptRepository {
	if tx == nil {
		return r
	}
	return &GormCheckoutAttemptRepository{db: tx}
}

// GetByKey 按买家与幂等键查找
func (r *GormCheckoutAttemptRepository) GetByKey(buyerID uint, key string) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	if err := r.db.Where("buyer_id = ? AND idempotency_key = ?", buyerID, key).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// Create 写入幂等记录，唯一索引冲突由调用方处理
func (r *GormCheckoutAttemptRepository) Create(attempt *models.CheckoutAttempt) error {
	return r.db.Create(attempt).Error
}
