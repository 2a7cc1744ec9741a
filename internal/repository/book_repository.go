package repository

import (
	"errors"
	"strings"

	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/models"

	"gorm.io/gorm"
)

// BookRepository 书籍数据访问接口
type BookRepository interface {
	WithTx(tx *gorm.DB) BookRepository
	List(filter BookListFilter) ([]models.Book, int64, error)
	ListSubjects() ([]string, error)
	GetByID(id uint) (*models.Book, error)
	ListByIDs(ids []uint) ([]models.Book, error)
	Create(book *models.Book) error
	Update(book *models.Book) error
	Delete(id uint) error
	Reserve(bookID uint) (int64, error)
	Release(bookID uint) (int64, error)
}

// GormBookRepository GORM 实现
type GormBookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建书籍仓库
func NewBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBookRepository) WithTx(tx *gorm.DB) BookRepository {
	if tx == nil {
		return r
	}
	return &GormBookRepository{db: tx}
}

// List 书籍列表
func (r *GormBookRepository) List(filter BookListFilter) ([]models.Book, int64, error) {
	query := r.db.Model(&models.Book{})
	if filter.OnlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"title", "author", "description"})
		query = query.Where(condition, repeatLikeArgs("%"+escapeLike(search)+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithSeller {
		query = query.Preload("Seller")
	}

	var books []models.Book
	if err := applyBookSort(query, filter.Sort).Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func applyBookSort(query *gorm.DB, sort string) *gorm.DB {
	switch strings.TrimSpace(sort) {
	case constants.BookSortPriceLow:
		return query.Order("COALESCE(selling_price, base_price) asc").Order("id desc")
	case constants.BookSortPriceHigh:
		return query.Order("COALESCE(selling_price, base_price) desc").Order("id desc")
	default:
		return query.Order("created_at desc").Order("id desc")
	}
}

// ListSubjects 在售书籍的学科去重列表
func (r *GormBookRepository) ListSubjects() ([]string, error) {
	var subjects []string
	err := r.db.Model(&models.Book{}).
		Where("is_available = ? AND subject <> ''", true).
		Distinct().
		Order("subject asc").
		Pluck("subject", &subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// GetByID 根据 ID 获取书籍（含卖家）
func (r *GormBookRepository) GetByID(id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.Preload("Seller").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

// ListByIDs 批量获取书籍
func (r *GormBookRepository) ListByIDs(ids []uint) ([]models.Book, error) {
	if len(ids) == 0 {
		return []models.Book{}, nil
	}
	var books []models.Book
	if err := r.db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// Create 创建书籍
func (r *GormBookRepository) Create(book *models.Book) error {
	return r.db.Create(book).Error
}

// Update 更新书籍
func (r *GormBookRepository) Update(book *models.Book) error {
	return r.db.Omit("Seller").Save(book).Error
}

// Delete 删除书籍（软删除，历史订单仍可回查）
func (r *GormBookRepository) Delete(id uint) error {
	return r.db.Delete(&models.Book{}, id).Error
}

// Reserve 售出占用：仅当书籍仍在售时下架，返回受影响行数
func (r *GormBookRepository) Reserve(bookID uint) (int64, error) {
	if bookID == 0 {
		return 0, errors.New("invalid book reserve params")
	}
	result := r.db.Model(&models.Book{}).
		Where("id = ? AND is_available = ?", bookID, true).
		Update("is_available", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Release 释放占用，重新上架
func (r *GormBookRepository) Release(bookID uint) (int64, error) {
	if bookID == 0 {
		return 0, errors.New("invalid book release params")
	}
	result := r.db.Model(&models.Book{}).
		Where("id = ? AND is_available = ?", bookID, false).
		Update("is_available", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
