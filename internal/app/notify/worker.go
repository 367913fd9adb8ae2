package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"safecommute/internal/logging"
	"safecommute/internal/observability/metrics"
	"safecommute/internal/platform/mail"
)

// Worker drains the notification queue. A message that fails delivery is
// retried once, then pushed to the dead-letter list for operators.
type Worker struct {
	rdb        *redis.Client
	mailer     mail.Mailer
	queue      string
	deadLetter string
	log        logging.Logger
}

func NewWorker(rdb *redis.Client, mailer mail.Mailer, queue, deadLetter string, log logging.Logger) *Worker {
	return &Worker{rdb: rdb, mailer: mailer, queue: queue, deadLetter: deadLetter, log: log}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info(ctx, "notification worker started", "queue", w.queue)
	for {
		select {
		case <-ctx.Done():
			w.log.Info(ctx, "notification worker stopping")
			return
		default:
			res, err := w.rdb.BRPop(ctx, 5*time.Second, w.queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					// Poll timeout or shutdown; loop so ctx.Done is observed.
					continue
				}
				w.log.Error(ctx, "queue pop failed", "queue", w.queue, "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if len(res) < 2 || res[1] == "" {
				continue
			}
			w.deliver(ctx, []byte(res[1]))
		}
	}
}

func (w *Worker) deliver(ctx context.Context, payload []byte) {
	var msg mail.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		w.log.Error(ctx, "dropping malformed mail payload", "error", err)
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return
	}

	err := w.mailer.Send(ctx, msg)
	if err != nil {
		w.log.Warn(ctx, "mail send failed, retrying once", "to", msg.To, "error", err)
		err = w.mailer.Send(ctx, msg)
	}
	if err == nil {
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		return
	}

	w.log.Error(ctx, "mail send failed after retry, dead-lettering", "to", msg.To, "subject", msg.Subject, "error", err)
	metrics.NotificationsTotal.WithLabelValues("deadlettered").Inc()
	if w.rdb == nil {
		w.log.Error(ctx, "no dead-letter queue configured, message lost", "to", msg.To)
		return
	}
	if err := w.rdb.LPush(ctx, w.deadLetter, payload).Err(); err != nil {
		w.log.Error(ctx, "dead-letter push failed, message lost", "error", err)
	}
}
