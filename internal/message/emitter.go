package message

import (
	"context"

	"cmsmall/internal/worker"
)

// SiteEvent is published after the site title changed.
type SiteEvent struct {
	Title   string `json:"title"`
	ActorID uint64 `json:"actor_id"`
}

// Emitter publishes events on the worker pool so a slow or unavailable
// broker never delays a response.
type Emitter struct {
	pool      *worker.Pool
	publisher Publisher
}

func NewEmitter(pool *worker.Pool, publisher Publisher) *Emitter {
	return &Emitter{pool: pool, publisher: publisher}
}

// Emit queues the event. A nil Emitter drops it.
func (e *Emitter) Emit(subject string, event interface{}) {
	if e == nil {
		return
	}
	e.pool.Submit("publish "+subject, func(ctx context.Context) error {
		return e.publisher.Publish(ctx, subject, event)
	})
}
