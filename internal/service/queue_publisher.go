package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/iris-prediction-api/internal/queue"
)

// QueuePublisher publishes prediction events to a durable RabbitMQ queue. The
// connection is dialled on first use and dropped after any failure so the
// next publish reconnects. It is safe for concurrent use; callers waiting on
// another publish give up when their context is done.
type QueuePublisher struct {
	url   string
	queue string

	sem  chan struct{} // one slot; guards conn and ch
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewQueuePublisher does not connect; see Publish.
func NewQueuePublisher(url, queue string) *QueuePublisher {
	return &QueuePublisher{url: url, queue: queue, sem: make(chan struct{}, 1)}
}

// Publish sends ev as a persistent JSON message routed to the queue through
// the default exchange.
func (p *QueuePublisher) Publish(ctx context.Context, ev q.PredictionServedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("rabbitmq: publish: %w", ctx.Err())
	}
	defer func() { <-p.sem }()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

// Close releases the connection, if any.
func (p *QueuePublisher) Close() error {
	p.sem <- struct{}{}
	defer func() { <-p.sem }()
	p.reset()
	return nil
}

// channel must be called holding the sem slot.
func (p *QueuePublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := q.Dial(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *QueuePublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
