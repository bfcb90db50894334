package slot

import (
	"context"
	"sync"
)

type memorySlot struct {
	mu    sync.RWMutex
	value []byte
	set   bool
}

func NewMemory() Slot {
	return &memorySlot{}
}

func (m *memorySlot) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.value))
	copy(out, m.value)
	return out, nil
}

func (m *memorySlot) Save(ctx context.Context, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = append(m.value[:0], value...)
	m.set = true
	return nil
}

func (m *memorySlot) Close() error { return nil }
