package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"cmsmall/internal/message"

	gnats "github.com/nats-io/nats.go"
)

type natsPublisher struct {
	conn *gnats.Conn
}

func NewPublisher(url string, options ...gnats.Option) (message.Publisher, error) {
	nc, err := gnats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to nats server %s: %w", url, err)
	}

	return &natsPublisher{conn: nc}, nil
}

func (n *natsPublisher) Publish(ctx context.Context, subj string, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error in encoding event for %s: %w", subj, err)
	}
	if err := n.conn.Publish(subj, data); err != nil {
		return fmt.Errorf("error in publishing through nats: %w", err)
	}

	return nil
}

func (n *natsPublisher) Close() error {
	return n.conn.Drain()
}
