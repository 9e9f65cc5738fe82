package memory

import (
	"context"
	"sync"

	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

// Bus is an in-process EventBus. Slow subscribers drop events rather than
// block publishers.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan models.ComplaintEvent
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]chan models.ComplaintEvent)}
}

func (b *Bus) PublishEvent(_ context.Context, ev models.ComplaintEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[ev.ComplaintID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *Bus) SubscribeComplaint(ctx context.Context, complaintID string) (<-chan models.ComplaintEvent, func(), error) {
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan models.ComplaintEvent, 16)
	if b.subs[complaintID] == nil {
		b.subs[complaintID] = make(map[int]chan models.ComplaintEvent)
	}
	b.subs[complaintID][id] = ch
	b.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			delete(b.subs[complaintID], id)
			if len(b.subs[complaintID]) == 0 {
				delete(b.subs, complaintID)
			}
			close(ch)
			b.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}
