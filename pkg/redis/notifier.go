package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// OutboxChannel carries wake-up pings for the outbox dispatcher. Messages hold
// the event type and carry no state; the outbox table stays the source of truth.
const OutboxChannel = "hiring:outbox:wakeup"

// Notifier publishes and receives outbox wake-ups over Redis pub/sub.
// A nil client turns every call into a no-op so callers fall back to polling.
type Notifier struct {
	rc *redis.Client
}

func NewNotifier(rc *redis.Client) *Notifier {
	return &Notifier{rc: rc}
}

// Notify publishes a wake-up for eventType.
func (n *Notifier) Notify(ctx context.Context, eventType string) error {
	if n == nil || n.rc == nil {
		return nil
	}
	return n.rc.Publish(ctx, OutboxChannel, eventType).Err()
}

// Subscribe returns a channel that receives one value per wake-up until ctx is done.
// The returned channel is nil when no client is configured.
func (n *Notifier) Subscribe(ctx context.Context) <-chan struct{} {
	if n == nil || n.rc == nil {
		return nil
	}

	sub := n.rc.Subscribe(ctx, OutboxChannel)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				// Coalesce bursts: one pending wake-up is enough.
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out
}
