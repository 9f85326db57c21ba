package responder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
)

const queueDepth = 100

// MessageHandler processes one inbound message.
type MessageHandler interface {
	Handle(ctx context.Context, msg mail.Message) error
}

// Watcher polls the mailbox for messages newer than a moving cursor and
// feeds them to a pool of workers. Poll is meant to run on a schedule with
// overlap suppression; workers run for the lifetime of Start's context.
type Watcher struct {
	mailer  mail.Client
	handler MessageHandler
	workers int

	queue chan mail.Message
	wg    sync.WaitGroup

	mu     sync.Mutex
	cursor time.Time
}

// NewWatcher builds a watcher starting from the given cursor. Messages with
// timestamps at or before the cursor are never enqueued.
func NewWatcher(mailer mail.Client, handler MessageHandler, workers int, start time.Time) *Watcher {
	if workers < 1 {
		workers = 1
	}
	return &Watcher{
		mailer:  mailer,
		handler: handler,
		workers: workers,
		queue:   make(chan mail.Message, queueDepth),
		cursor:  start,
	}
}

// Start launches the worker pool. Workers exit when Stop closes the queue.
func (w *Watcher) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(n int) {
			defer w.wg.Done()
			for msg := range w.queue {
				if err := w.handler.Handle(ctx, msg); err != nil {
					slog.Error("message handling failed", "worker", n, "id", msg.ID, "err", err)
				}
			}
		}(i)
	}
	slog.Info("worker pool started", "workers", w.workers)
}

// Poll fetches messages newer than the cursor, enqueues them, and advances
// the cursor to the newest timestamp seen. A fetch failure leaves the
// cursor untouched so the next poll retries the same window.
func (w *Watcher) Poll(ctx context.Context) error {
	w.mu.Lock()
	since := w.cursor
	w.mu.Unlock()

	msgs, err := w.mailer.ListSince(ctx, since)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	slog.Info("new emails found", "count", len(msgs))

	newest := since
	for _, m := range msgs {
		select {
		case w.queue <- m:
		case <-ctx.Done():
			return ctx.Err()
		}
		if m.Timestamp.After(newest) {
			newest = m.Timestamp
		}
	}

	w.mu.Lock()
	if newest.After(w.cursor) {
		w.cursor = newest
	}
	w.mu.Unlock()
	return nil
}

// Stop closes the queue and waits for in-flight messages to finish.
func (w *Watcher) Stop() {
	close(w.queue)
	w.wg.Wait()
}
