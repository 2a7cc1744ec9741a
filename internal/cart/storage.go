package cart

import (
	"context"
	"sync"
)

// Storage 购物车底层存储：单一键保存整个序列化列表
// scope 区分会话（同一用户跨设备共享），key 固定为 constants.CartStorageKey
type Storage interface {
	Load(ctx context.Context, scope, key string) ([]byte, bool, error)
	Save(ctx context.Context, scope, key string, payload []byte) error
	Delete(ctx context.Context, scope, key string) error
}

// MemoryStorage 进程内存储，未启用 Redis 时使用
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage 创建内存存储
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func memoryKey(scope, key string) string {
	return scope + "|" + key
}

// Load 读取
func (m *MemoryStorage) Load(_ context.Context, scope, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[memoryKey(scope, key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

// Save 覆盖写入
func (m *MemoryStorage) Save(_ context.Context, scope, key string, payload []byte) error {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.mu.Lock()
	m.data[memoryKey(scope, key)] = buf
	m.mu.Unlock()
	return nil
}

// Delete 删除
func (m *MemoryStorage) Delete(_ context.Context, scope, key string) error {
	m.mu.Lock()
	delete(m.data, memoryKey(scope, key))
	m.mu.Unlock()
	return nil
}
