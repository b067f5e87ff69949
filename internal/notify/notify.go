// Package notify — лента уведомлений и пересылка в Telegram.
package notify

import (
	"context"
	"sync"
)

// FeedSize — сколько последних сообщений хранит лента
const FeedSize = 10

// Notifier принимает текстовое уведомление
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// Feed — последние FeedSize сообщений, новые сверху
type Feed struct {
	mu   sync.RWMutex
	msgs []string
}

// NewFeed создаёт пустую ленту
func NewFeed() *Feed {
	return &Feed{}
}

// Notify добавляет сообщение в начало ленты
func (f *Feed) Notify(_ context.Context, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.msgs = append([]string{msg}, f.msgs...)
	if len(f.msgs) > FeedSize {
		f.msgs = f.msgs[:FeedSize]
	}
}

// List — копия ленты
func (f *Feed) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, len(f.msgs))
	copy(out, f.msgs)
	return out
}

// Multi рассылает уведомление всем получателям по очереди
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, msg string) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, msg)
		}
	}
}
