// Package notify delivers email notifications fire-and-forget: callers hand a
// message to the Dispatcher and never learn or wait for the outcome. Messages
// normally flow through a Redis list drained by the Worker; without a queue
// they are sent directly on a background goroutine.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"safecommute/internal/logging"
	"safecommute/internal/observability/metrics"
	"safecommute/internal/platform/mail"
)

type Dispatcher interface {
	// Enqueue submits msg for delivery. It never blocks on delivery and
	// never reports failure to the caller; problems are logged.
	Enqueue(ctx context.Context, msg mail.Message)
}

type QueueDispatcher struct {
	rdb    *redis.Client
	queue  string
	mailer mail.Mailer
	log    logging.Logger
}

// NewQueueDispatcher builds a dispatcher over the given queue. rdb may be nil,
// in which case every message takes the direct-send path.
func NewQueueDispatcher(rdb *redis.Client, queue string, mailer mail.Mailer, log logging.Logger) *QueueDispatcher {
	return &QueueDispatcher{rdb: rdb, queue: queue, mailer: mailer, log: log}
}

func (d *QueueDispatcher) Enqueue(ctx context.Context, msg mail.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		d.log.Error(ctx, "dropping unmarshalable mail message", "to", msg.To, "error", err)
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return
	}

	if d.rdb != nil {
		err := d.rdb.LPush(ctx, d.queue, payload).Err()
		if err == nil {
			return
		}
		d.log.Warn(ctx, "mail enqueue failed, falling back to direct send", "queue", d.queue, "error", err)
	}

	go d.sendDirect(msg)
}

func (d *QueueDispatcher) sendDirect(msg mail.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.log.Error(ctx, "direct mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
