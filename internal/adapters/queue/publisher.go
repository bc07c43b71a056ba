// Package queue publishes and consumes participation request status changes over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"eventboard/internal/domain"
)

// StatusChangedQueue is the durable queue carrying domain.RequestStatusChanged messages.
const StatusChangedQueue = "participation.status_changed"

const messageType = "request.status_changed"

// defaultDialTimeout bounds connect and handshake when ctx has no deadline.
const defaultDialTimeout = 5 * time.Second

type amqpPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
}

// NewPublisher returns a RequestEventPublisher for the broker at url. An empty
// url disables publishing.
func NewPublisher(url string) domain.RequestEventPublisher {
	if url == "" {
		return noopPublisher{}
	}
	return &amqpPublisher{url: url, queue: StatusChangedQueue, dialTimeout: defaultDialTimeout}
}

// PublishStatusChanged sends each change as one persistent JSON message. The
// whole exchange with the broker is bounded by ctx.
func (p *amqpPublisher) PublishStatusChanged(ctx context.Context, events []domain.RequestStatusChanged) error {
	if len(events) == 0 {
		return nil
	}
	conn, err := dial(ctx, p.url, p.dialTimeout)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Channel and QueueDeclare take no context; closing the connection unblocks them.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	for _, ev := range events {
		msg, err := newPublishing(ev)
		if err != nil {
			return err
		}
		if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
			return fmt.Errorf("rabbitmq publish request %d: %w", ev.RequestID, err)
		}
	}
	return nil
}

// dial opens a connection whose TCP connect and AMQP handshake end at the ctx
// deadline. The client clears the socket deadline once the handshake completes.
func dial(ctx context.Context, url string, timeout time.Duration) (*amqp.Connection, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}
	var dialer net.Dialer
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
	})
}

func newPublishing(ev domain.RequestStatusChanged) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal status change: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         messageType,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishStatusChanged(ctx context.Context, events []domain.RequestStatusChanged) error {
	return nil
}
