package queue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout bounds the TCP connect and the AMQP handshake when the
// context carries no earlier deadline.
const DefaultDialTimeout = 30 * time.Second

// Dial opens a broker connection that honours ctx: the connect and handshake
// deadline is the earlier of ctx's deadline and DefaultDialTimeout, and
// cancelling ctx returns immediately. A connection that completes after ctx
// is done is closed in the background.
func Dial(ctx context.Context, url string) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := DefaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d < timeout {
			timeout = d
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	type result struct {
		conn *amqp.Connection
		err  error
	}
	done := make(chan result, 1) // buffered so the dialer never blocks
	go func() {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(timeout),
		})
		done <- result{conn: conn, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return nil, ctx.Err() // the handshake deadline is ctx's own
		}
		return r.conn, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
