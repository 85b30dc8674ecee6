package nats

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"cmsmall/internal/message"

	gnats "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	payload []byte
}

// startBroker accepts one client and speaks just enough of the NATS protocol
// to complete the handshake and record PUB messages.
func startBroker(t *testing.T) (string, <-chan published) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan published, 8)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		io.WriteString(conn, `INFO {"server_id":"test","version":"2.10.0","proto":1,"max_payload":1048576}`+"\r\n")
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch strings.ToUpper(fields[0]) {
			case "PING":
				io.WriteString(conn, "PONG\r\n")
			case "PUB":
				size, err := strconv.Atoi(fields[len(fields)-1])
				if err != nil {
					return
				}
				payload := make([]byte, size+2)
				if _, err := io.ReadFull(r, payload); err != nil {
					return
				}
				out <- published{subject: fields[1], payload: payload[:size]}
			}
		}
	}()

	return "nats://" + ln.Addr().String(), out
}

func TestNewPublisher_Unreachable(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:1", gnats.Timeout(200*time.Millisecond))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nats://127.0.0.1:1")
}

func TestPublish(t *testing.T) {
	url, msgs := startBroker(t)
	publisher, err := NewPublisher(url, gnats.Timeout(time.Second))
	require.NoError(t, err)
	defer publisher.Close()

	publishedAt := "2024-05-10"
	event := message.PageEvent{
		PageID:      10,
		AuthorID:    2,
		ActorID:     1,
		Title:       "Home",
		PublishedAt: &publishedAt,
		OccurredAt:  time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(context.Background(), message.SubjectPageUpdated, event))

	select {
	case msg := <-msgs:
		assert.Equal(t, message.SubjectPageUpdated, msg.subject)
		var decoded message.PageEvent
		require.NoError(t, json.Unmarshal(msg.payload, &decoded))
		assert.Equal(t, event, decoded)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestPublish_CanceledContext(t *testing.T) {
	url, msgs := startBroker(t)
	publisher, err := NewPublisher(url, gnats.Timeout(time.Second))
	require.NoError(t, err)
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.Publish(ctx, message.SubjectPageDeleted, message.PageEvent{PageID: 1}), context.Canceled)
	assert.Empty(t, msgs)
}

func TestPublish_EncodingError(t *testing.T) {
	url, _ := startBroker(t)
	publisher, err := NewPublisher(url, gnats.Timeout(time.Second))
	require.NoError(t, err)
	defer publisher.Close()

	err = publisher.Publish(context.Background(), message.SubjectSiteTitle, make(chan int))
	assert.ErrorContains(t, err, message.SubjectSiteTitle)
}
