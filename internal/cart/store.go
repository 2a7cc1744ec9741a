package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
)

var (
	// ErrAlreadyInCart 同一本书重复加入
	ErrAlreadyInCart = errors.New("already in cart")
	// ErrInvalidItem 购物车项不合法
	ErrInvalidItem = errors.New("invalid cart item")
)

const lockStripes = 64

// Store 购物车
// 每次变更都把整个列表写回存储；读取或解析失败按空购物车处理
type Store struct {
	storage Storage
	locks   [lockStripes]sync.Mutex
}

// NewStore 创建购物车
func NewStore(storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{storage: storage}
}

// ScopeForUser 用户购物车的存储作用域
func ScopeForUser(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Get 读取购物车
func (s *Store) Get(ctx context.Context, scope string) []models.CartItem {
	return s.load(ctx, scope)
}

// Add 加入购物车，已存在则拒绝且不改变数量，新项数量固定为 1
func (s *Store) Add(ctx context.Context, scope string, item models.CartItem) error {
	if item.BookID == 0 {
		return ErrInvalidItem
	}
	unlock := s.lock(scope)
	defer unlock()

	items := s.load(ctx, scope)
	if indexOf(items, item.BookID) >= 0 {
		return ErrAlreadyInCart
	}
	item.Quantity = 1
	return s.save(ctx, scope, append(items, item))
}

// UpdateQuantity 修改数量，n<1 或书籍不在购物车中时不做任何事
func (s *Store) UpdateQuantity(ctx context.Context, scope string, bookID uint, n int) error {
	if n < 1 {
		return nil
	}
	unlock := s.lock(scope)
	defer unlock()

	items := s.load(ctx, scope)
	idx := indexOf(items, bookID)
	if idx < 0 {
		return nil
	}
	items[idx].Quantity = n
	return s.save(ctx, scope, items)
}

// Remove 移除
func (s *Store) Remove(ctx context.Context, scope string, bookID uint) error {
	unlock := s.lock(scope)
	defer unlock()

	items := s.load(ctx, scope)
	idx := indexOf(items, bookID)
	if idx < 0 {
		return nil
	}
	items = append(items[:idx], items[idx+1:]...)
	return s.save(ctx, scope, items)
}

// Clear 清空，直接删除存储键
func (s *Store) Clear(ctx context.Context, scope string) error {
	unlock := s.lock(scope)
	defer unlock()
	return s.storage.Delete(ctx, scope, constants.CartStorageKey)
}

// ClearIfUnchanged 仅当购物车仍与 snapshot 一致时清空
// 返回 false 表示期间有其他设备修改过，购物车保持原样
func (s *Store) ClearIfUnchanged(ctx context.Context, scope string, snapshot []models.CartItem) (bool, error) {
	unlock := s.lock(scope)
	defer unlock()

	current := s.load(ctx, scope)
	if len(current) == 0 {
		return true, nil
	}
	same, err := sameItems(current, snapshot)
	if err != nil || !same {
		return false, err
	}
	return true, s.storage.Delete(ctx, scope, constants.CartStorageKey)
}

// Replace 整体写入（设备端同步）
func (s *Store) Replace(ctx context.Context, scope string, items []models.CartItem) error {
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.BookID == 0 || item.Quantity < 1 {
			return ErrInvalidItem
		}
		if _, ok := seen[item.BookID]; ok {
			return ErrAlreadyInCart
		}
		seen[item.BookID] = struct{}{}
	}
	unlock := s.lock(scope)
	defer unlock()
	return s.save(ctx, scope, items)
}

// Total 购物车合计
func Total(items []models.CartItem) models.Money {
	total := models.Money{}
	for _, item := range items {
		total = total.Plus(item.Subtotal())
	}
	return total
}

func (s *Store) load(ctx context.Context, scope string) []models.CartItem {
	raw, ok, err := s.storage.Load(ctx, scope, constants.CartStorageKey)
	if err != nil {
		logger.Warnw("cart_load_failed", "scope", scope, "error", err)
		return []models.CartItem{}
	}
	if !ok || len(raw) == 0 {
		return []models.CartItem{}
	}
	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warnw("cart_parse_failed", "scope", scope, "error", err)
		return []models.CartItem{}
	}
	if items == nil {
		return []models.CartItem{}
	}
	return items
}

func (s *Store) save(ctx context.Context, scope string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, scope, constants.CartStorageKey, payload)
}

// lock 同一作用域的读改写串行执行
func (s *Store) lock(scope string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(scope))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func sameItems(a, b []models.CartItem) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	left, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(left, right), nil
}

func indexOf(items []models.CartItem, bookID uint) int {
	for i := range items {
		if items[i].BookID == bookID {
			return i
		}
	}
	return -1
}
