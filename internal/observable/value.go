// Package observable содержит наблюдаемые значения с подпиской на изменения
package observable

import "sync"

// Value хранит значение и рассылает его подписчикам при каждом изменении.
// Каждый подписчик гарантированно получает последнее значение: если прошлое
// значение еще не прочитано, оно заменяется новым
type Value[T any] struct {
	mu          sync.RWMutex
	current     T
	subscribers map[int]chan T
	nextID      int
	closed      bool
}

// NewValue создает наблюдаемое значение с начальным значением
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current:     initial,
		subscribers: make(map[int]chan T),
	}
}

// Get возвращает текущее значение
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set устанавливает новое значение и уведомляет подписчиков
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = value
	for _, ch := range v.subscribers {
		offer(ch, value)
	}
}

// Update атомарно изменяет значение функцией fn
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = fn(v.current)
	for _, ch := range v.subscribers {
		offer(ch, v.current)
	}
	return v.current
}

// Subscribe возвращает канал с обновлениями и функцию отмены подписки.
// Текущее значение отправляется в канал сразу
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan T, 1)
	if v.closed {
		close(ch)
		return ch, func() {}
	}

	id := v.nextID
	v.nextID++
	v.subscribers[id] = ch
	ch <- v.current

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if sub, ok := v.subscribers[id]; ok {
				delete(v.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close закрывает каналы всех подписчиков
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subscribers {
		close(ch)
		delete(v.subscribers, id)
	}
}

// offer кладет значение в буфер размером 1, вытесняя непрочитанное.
// Вызывается под блокировкой, поэтому запись в канал единственная
func offer[T any](ch chan T, value T) {
	select {
	case <-ch:
	default:
	}
	ch <- value
}
