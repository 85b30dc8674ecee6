package message

import (
	"context"
	"time"
)

const (
	SubjectPageCreated = "cms.page.created"
	SubjectPageUpdated = "cms.page.updated"
	SubjectPageDeleted = "cms.page.deleted"
	SubjectSiteTitle   = "cms.site.title"
)

// PageEvent is published after a page mutation has been committed.
type PageEvent struct {
	PageID      uint64    `json:"page_id"`
	AuthorID    uint64    `json:"author_id"`
	ActorID     uint64    `json:"actor_id"`
	Title       string    `json:"title,omitempty"`
	PublishedAt *string   `json:"published_at,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher manages publishing of events.
type Publisher interface {
	// Publish sends the event on the given subject
	Publish(ctx context.Context, subject string, event interface{}) error
	// Close closes the connection to the underlying messaging server
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that discards every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (noopPublisher) Close() error { return nil }
