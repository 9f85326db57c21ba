package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/store"
)

// Persisted document keys.
const (
	SnapshotKey = "assignments_current"
	LedgerKey   = "assignments_sent"
)

// Ledger tracks which assignment ids have already triggered a confirmation
// email. Ids are never removed automatically; an operator clears entries
// from the backing document to force redelivery. MarkSent persists the
// ledger immediately, so the only duplicate-send window is a crash between
// a successful send and that write.
//
// The confirmation cycle is the single writer; concurrent readers (status
// inspection) are safe.
type Ledger struct {
	store store.Store
	key   string

	mu   sync.RWMutex
	sent map[string]string // assignment id → RFC 3339 timestamp of the send
}

// LoadLedger reads the persisted ledger. A missing document starts the
// ledger empty; a read failure also starts empty (conservative: worst case
// is a re-send, not data loss) and is logged.
func LoadLedger(ctx context.Context, st store.Store, key string) *Ledger {
	l := &Ledger{store: st, key: key, sent: make(map[string]string)}

	var sent map[string]string
	err := st.Load(ctx, key, &sent)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// First run.
	case err != nil:
		slog.Warn("sent ledger unreadable, starting empty", "key", key, "err", err)
	default:
		l.sent = sent
	}
	if l.sent == nil {
		l.sent = make(map[string]string)
	}
	return l
}

// ShouldSend reports whether no confirmation has been recorded for id.
func (l *Ledger) ShouldSend(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, sent := l.sent[id]
	return !sent
}

// MarkSent records a successful send for id and persists the ledger.
// Callers must only invoke it after the notification attempt succeeded.
func (l *Ledger) MarkSent(ctx context.Context, id string) error {
	l.mu.Lock()
	l.sent[id] = time.Now().UTC().Format(time.RFC3339)
	snapshot := make(map[string]string, len(l.sent))
	for k, v := range l.sent {
		snapshot[k] = v
	}
	l.mu.Unlock()

	if err := l.store.Save(ctx, l.key, snapshot); err != nil {
		return fmt.Errorf("persist sent ledger: %w", err)
	}
	return nil
}

// Len returns the number of recorded sends.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sent)
}
