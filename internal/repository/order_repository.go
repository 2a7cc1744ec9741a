package repository

import (
	"errors"
	"time"

	"github.com/campusbooks/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	CreateOrder(order *models.Order) error
	CreateItems(orderID uint, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndBuyer(id uint, buyerID uint) (*models.Order, error)
	ListByBuyer(filter OrderListFilter) ([]models.Order, int64, error)
	ListBySeller(filter OrderListFilter) ([]models.Order, int64, error)
	ListWithoutItems(createdBefore time.Time, status string, limit int) ([]models.Order, error)
	CountItems(orderID uint) (int64, error)
	UpdateStatus(id uint, fromStatus, toStatus string, updates map[string]interface{}) (int64, error)
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// CreateOrder 写入订单主记录
func (r *GormOrderRepository) CreateOrder(order *models.Order) error {
	return r.db.Omit("Items", "Buyer").Create(order).Error
}

// CreateItems 写入订单项并回填订单ID
func (r *GormOrderRepository) CreateItems(orderID uint, items []models.OrderItem) error {
	if orderID == 0 {
		return errors.New("order id is required")
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.Omit("Book").Create(&items).Error
}

func withItemBooks(query *gorm.DB) *gorm.DB {
	// 书籍被卖家删除后，历史订单仍需展示快照
	return query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Preload("Items.Book", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := withItemBooks(r.db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndBuyer 获取买家自己的订单
func (r *GormOrderRepository) GetByIDAndBuyer(id uint, buyerID uint) (*models.Order, error) {
	var order models.Order
	if err := withItemBooks(r.db).Where("id = ? AND buyer_id = ?", id, buyerID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByBuyer 获取买家订单列表
func (r *GormOrderRepository) ListByBuyer(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("buyer_id = ?", filter.BuyerID)
	return r.list(query, filter, false)
}

// ListBySeller 获取包含卖家书籍的订单列表
func (r *GormOrderRepository) ListBySeller(filter OrderListFilter) ([]models.Order, int64, error) {
	sub := r.db.Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN books ON books.id = order_items.book_id").
		Where("books.seller_id = ?", filter.SellerID)
	query := r.db.Model(&models.Order{}).Where("id IN (?)", sub)
	return r.list(query, filter, true)
}

func (r *GormOrderRepository) list(query *gorm.DB, filter OrderListFilter, withBuyer bool) ([]models.Order, int64, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if withBuyer {
		query = query.Preload("Buyer")
	}

	var orders []models.Order
	if err := withItemBooks(query).Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListWithoutItems 查询没有任何订单项的订单（孤儿订单）
func (r *GormOrderRepository) ListWithoutItems(createdBefore time.Time, status string, limit int) ([]models.Order, error) {
	query := r.db.Model(&models.Order{}).
		Where("created_at < ?", createdBefore).
		Where("NOT EXISTS (SELECT 1 FROM order_items WHERE order_items.order_id = orders.id)")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.Order
	if err := query.Order("id asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountItems 统计订单项数量
func (r *GormOrderRepository) CountItems(orderID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus 条件更新订单状态，仅当当前状态为 fromStatus 时生效
func (r *GormOrderRepository) UpdateStatus(id uint, fromStatus, toStatus string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
