package service

import (
	"context"

	"github.com/campusbooks/internal/cart"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/repository"
)

// CartService 买家购物车
type CartService struct {
	store    *cart.Store
	bookRepo repository.BookRepository
}

// NewCartService 创建购物车服务
func NewCartService(store *cart.Store, bookRepo repository.BookRepository) *CartService {
	return &CartService{store: store, bookRepo: bookRepo}
}

// CartView 购物车与合计
type CartView struct {
	Items []models.CartItem `json:"items"`
	Total models.Money      `json:"total"`
}

// CartSyncItem 设备端同步的购物车行
type CartSyncItem struct {
	BookID   uint
	Quantity int
}

// Get 读取购物车
func (s *CartService) Get(ctx context.Context, sess *Session) (*CartView, error) {
	if err := requireJunior(sess); err != nil {
		return nil, err
	}
	return s.view(ctx, sess), nil
}

// Add 按书籍当前信息生成快照并加入购物车
func (s *CartService) Add(ctx context.Context, sess *Session, bookID uint) (*CartView, error) {
	if err := requireJunior(sess); err != nil {
		return nil, err
	}
	book, err := s.purchasableBook(sess, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, cart.ScopeForUser(sess.UserID), snapshotBook(book)); err != nil {
		return nil, err
	}
	return s.view(ctx, sess), nil
}

// UpdateQuantity 修改数量，n<1 时不变
func (s *CartService) UpdateQuantity(ctx context.Context, sess *Session, bookID uint, n int) (*CartView, error) {
	if err := requireJunior(sess); err != nil {
		return nil, err
	}
	if err := s.store.UpdateQuantity(ctx, cart.ScopeForUser(sess.UserID), bookID, n); err != nil {
		return nil, err
	}
	return s.view(ctx, sess), nil
}

// Remove 移除一本书
func (s *CartService) Remove(ctx context.Context, sess *Session, bookID uint) (*CartView, error) {
	if err := requireJunior(sess); err != nil {
		return nil, err
	}
	if err := s.store.Remove(ctx, cart.ScopeForUser(sess.UserID), bookID); err != nil {
		return nil, err
	}
	return s.view(ctx, sess), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sess *Session) error {
	if err := requireJunior(sess); err != nil {
		return err
	}
	return s.store.Clear(ctx, cart.ScopeForUser(sess.UserID))
}

// Sync 用设备端购物车整体替换，价格与书名以数据库为准
func (s *CartService) Sync(ctx context.Context, sess *Session, lines []CartSyncItem) (*CartView, error) {
	if err := requireJunior(sess); err != nil {
		return nil, err
	}
	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrCartItemInvalid
		}
		book, err := s.purchasableBook(sess, line.BookID)
		if err != nil {
			return nil, err
		}
		item := snapshotBook(book)
		item.Quantity = line.Quantity
		items = append(items, item)
	}
	if err := s.store.Replace(ctx, cart.ScopeForUser(sess.UserID), items); err != nil {
		return nil, err
	}
	return s.view(ctx, sess), nil
}

func (s *CartService) purchasableBook(sess *Session, bookID uint) (*models.Book, error) {
	if bookID == 0 {
		return nil, ErrCartItemInvalid
	}
	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	if book.SellerID == sess.UserID {
		return nil, ErrOwnBookInCart
	}
	if !book.IsAvailable {
		return nil, ErrBookUnavailable
	}
	return book, nil
}

func (s *CartService) view(ctx context.Context, sess *Session) *CartView {
	items := s.store.Get(ctx, cart.ScopeForUser(sess.UserID))
	return &CartView{Items: items, Total: cart.Total(items)}
}

func snapshotBook(book *models.Book) models.CartItem {
	return models.CartItem{
		BookID:   book.ID,
		Title:    book.Title,
		Author:   book.Author,
		Price:    book.EffectivePrice(),
		Image:    book.ImageURL,
		Quantity: 1,
	}
}
