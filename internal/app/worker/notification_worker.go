package worker

import (
	"context"
	"errors"
	"time"

	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/platform/logger"
	"dsa_arena/internal/platform/mailer"
	"dsa_arena/internal/platform/queue"
)

// NotificationSource is the consumer side of the notification queue.
type NotificationSource interface {
	Pop(ctx context.Context, wait time.Duration) (*model.Notification, error)
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

type NotificationWorker struct {
	source    NotificationSource
	mailer    mailer.Mailer
	dedupeTTL time.Duration
	popWait   time.Duration
	backoff   time.Duration
	log       *logger.Logger
}

func NewNotificationWorker(source NotificationSource, m mailer.Mailer, dedupeTTL time.Duration, log *logger.Logger) *NotificationWorker {
	return &NotificationWorker{
		source:    source,
		mailer:    m,
		dedupeTTL: dedupeTTL,
		popWait:   5 * time.Second,
		backoff:   5 * time.Second,
		log:       log.With("worker", "notification"),
	}
}

// Start consumes jobs until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info("notification worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("notification worker stopping")
			return
		default:
		}

		n, err := w.source.Pop(ctx, w.popWait)
		if err != nil {
			switch {
			case errors.Is(err, queue.ErrEmpty):
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				// shutting down, loop back to the ctx check
			default:
				w.log.Error("failed to pop notification", "error", err)
				w.sleep(ctx, w.backoff)
			}
			continue
		}
		w.process(ctx, n)
	}
}

// process delivers one job at most once. Delivery failures are logged and the job is dropped.
func (w *NotificationWorker) process(ctx context.Context, n *model.Notification) {
	if n.ID == "" {
		w.log.Warn("dropping notification without id", "kind", n.Kind)
		return
	}
	claimed, err := w.source.Claim(ctx, n.ID, w.dedupeTTL)
	if err != nil {
		w.log.Error("failed to claim notification", "id", n.ID, "error", err)
		return
	}
	if !claimed {
		w.log.Info("notification already delivered, skipping", "id", n.ID)
		return
	}
	if err := w.mailer.Send(ctx, n.To, n.Subject, n.Body); err != nil {
		w.log.Error("failed to send notification", "id", n.ID, "kind", n.Kind, "to", n.To, "error", err)
		return
	}
	w.log.Info("notification sent", "id", n.ID, "kind", n.Kind)
}

func (w *NotificationWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
