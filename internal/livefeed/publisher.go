// Package livefeed delivers committed complaint events to subscribers:
// other API instances over Redis, downstream consumers over RabbitMQ, and
// browsers over websockets.
package livefeed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shahmeerabdul/GIKomplain/internal/metrics"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

// Publisher accepts a committed event. Callers treat failures as
// best-effort and never undo the mutation.
type Publisher interface {
	Publish(ctx context.Context, ev models.ComplaintEvent) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev models.ComplaintEvent) error

func (f PublisherFunc) Publish(ctx context.Context, ev models.ComplaintEvent) error {
	return f(ctx, ev)
}

// BusPublisher publishes onto an EventBus.
func BusPublisher(bus storage.EventBus) Publisher {
	return PublisherFunc(bus.PublishEvent)
}

type sink struct {
	name string
	pub  Publisher
}

// Fanout publishes each event to every sink, even when earlier sinks fail.
type Fanout struct {
	sinks []sink
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers pub under name. Nil publishers are ignored.
func (f *Fanout) Add(name string, pub Publisher) *Fanout {
	if pub != nil {
		f.sinks = append(f.sinks, sink{name: name, pub: pub})
	}
	return f
}

func (f *Fanout) Publish(ctx context.Context, ev models.ComplaintEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.pub.Publish(ctx, ev); err != nil {
			metrics.RecordPublishFailure(s.name)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
