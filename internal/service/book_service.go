package service

import (
	"strings"

	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/repository"

	"github.com/shopspring/decimal"
)

// BookService 书籍浏览与卖家管理
type BookService struct {
	bookRepo repository.BookRepository
}

// NewBookService 创建书籍服务
func NewBookService(bookRepo repository.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// PublicBookQuery 公开书籍查询参数
type PublicBookQuery struct {
	Search   string
	Subject  string
	Sort     string
	Page     int
	PageSize int
}

// BookInput 卖家提交的书籍字段
type BookInput struct {
	Title        string
	Author       string
	Edition      string
	Subject      string
	Course       string
	Condition    string
	BasePrice    models.Money
	SellingPrice *models.Money
	Description  string
	ImageURL     string
	IsAvailable  *bool
}

// ListPublic 在售书籍列表
func (s *BookService) ListPublic(query PublicBookQuery) ([]models.Book, int64, error) {
	return s.bookRepo.List(repository.BookListFilter{
		Page:          query.Page,
		PageSize:      query.PageSize,
		Search:        query.Search,
		Subject:       query.Subject,
		Sort:          normalizeBookSort(query.Sort),
		OnlyAvailable: true,
		WithSeller:    true,
	})
}

// Subjects 在售书籍学科
func (s *BookService) Subjects() ([]string, error) {
	return s.bookRepo.ListSubjects()
}

// Featured 首页精选：最新上架的在售书籍
func (s *BookService) Featured() ([]models.Book, error) {
	books, _, err := s.bookRepo.List(repository.BookListFilter{
		Page:          1,
		PageSize:      constants.FeaturedBooksLimit,
		Sort:          constants.BookSortNewest,
		OnlyAvailable: true,
	})
	return books, err
}

// GetPublic 书籍详情，已下架按不存在处理
func (s *BookService) GetPublic(id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil || !book.IsAvailable {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// ListMine 卖家自己的书籍（含已下架）
func (s *BookService) ListMine(sess *Session, page, pageSize int) ([]models.Book, int64, error) {
	if err := requireSenior(sess); err != nil {
		return nil, 0, err
	}
	return s.bookRepo.List(repository.BookListFilter{
		Page:     page,
		PageSize: pageSize,
		SellerID: sess.UserID,
		Sort:     constants.BookSortNewest,
	})
}

// Create 上架书籍
func (s *BookService) Create(sess *Session, input BookInput) (*models.Book, error) {
	if err := requireSenior(sess); err != nil {
		return nil, err
	}
	book := &models.Book{SellerID: sess.UserID, IsAvailable: true}
	if err := applyBookInput(book, input); err != nil {
		return nil, err
	}
	if err := s.bookRepo.Create(book); err != nil {
		return nil, err
	}
	logger.Infow("book_created", "book_id", book.ID, "seller_id", book.SellerID)
	return book, nil
}

// Update 修改书籍，仅限本人
func (s *BookService) Update(sess *Session, bookID uint, input BookInput) (*models.Book, error) {
	book, err := s.ownedBook(sess, bookID)
	if err != nil {
		return nil, err
	}
	if err := applyBookInput(book, input); err != nil {
		return nil, err
	}
	book.Seller = nil
	if err := s.bookRepo.Update(book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete 删除书籍，仅限本人
func (s *BookService) Delete(sess *Session, bookID uint) error {
	if _, err := s.ownedBook(sess, bookID); err != nil {
		return err
	}
	if err := s.bookRepo.Delete(bookID); err != nil {
		return err
	}
	logger.Infow("book_deleted", "book_id", bookID, "seller_id", sess.UserID)
	return nil
}

func (s *BookService) ownedBook(sess *Session, bookID uint) (*models.Book, error) {
	if err := requireSenior(sess); err != nil {
		return nil, err
	}
	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	if book.SellerID != sess.UserID {
		return nil, ErrBookNotOwner
	}
	return book, nil
}

func applyBookInput(book *models.Book, input BookInput) error {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	subject := strings.TrimSpace(input.Subject)
	if title == "" || author == "" || subject == "" {
		return ErrBookInvalid
	}
	condition := strings.ToLower(strings.TrimSpace(input.Condition))
	if !isValidBookCondition(condition) {
		return ErrBookConditionInvalid
	}
	if !input.BasePrice.Decimal.GreaterThan(decimal.Zero) {
		return ErrBookPriceInvalid
	}
	if input.SellingPrice != nil {
		if !input.SellingPrice.Decimal.GreaterThan(decimal.Zero) {
			return ErrBookPriceInvalid
		}
		if input.SellingPrice.Decimal.GreaterThan(input.BasePrice.Decimal) {
			return ErrSellingPriceTooHigh
		}
	}

	book.Title = title
	book.Author = author
	book.Edition = strings.TrimSpace(input.Edition)
	book.Subject = subject
	book.Course = strings.TrimSpace(input.Course)
	book.Condition = condition
	book.BasePrice = models.NewMoneyFromDecimal(input.BasePrice.Decimal)
	book.SellingPrice = nil
	if input.SellingPrice != nil {
		selling := models.NewMoneyFromDecimal(input.SellingPrice.Decimal)
		book.SellingPrice = &selling
	}
	book.Description = strings.TrimSpace(input.Description)
	book.ImageURL = strings.TrimSpace(input.ImageURL)
	if input.IsAvailable != nil {
		book.IsAvailable = *input.IsAvailable
	}
	return nil
}

func isValidBookCondition(condition string) bool {
	switch condition {
	case constants.BookConditionNew,
		constants.BookConditionLikeNew,
		constants.BookConditionGood,
		constants.BookConditionFair,
		constants.BookConditionPoor:
		return true
	}
	return false
}

func normalizeBookSort(sort string) string {
	switch strings.TrimSpace(sort) {
	case constants.BookSortPriceLow:
		return constants.BookSortPriceLow
	case constants.BookSortPriceHigh:
		return constants.BookSortPriceHigh
	default:
		return constants.BookSortNewest
	}
}
