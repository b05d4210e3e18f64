// Package store отвечает за сохранение плейлистов в хранилище ключ-значение
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище
var ErrNotFound = errors.New("ключ не найден")

// KV - хранилище ключ-значение, в котором лежит сериализованное состояние
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryKV хранит значения в памяти процесса
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV создает пустое хранилище в памяти
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get возвращает копию значения по ключу
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put сохраняет копию значения
func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Close ничего не делает
func (m *MemoryKV) Close() error {
	return nil
}
