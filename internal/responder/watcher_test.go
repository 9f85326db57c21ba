package responder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
)

// recordingHandler collects handled message ids.
type recordingHandler struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (r *recordingHandler) Handle(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, msg.ID)
	return r.err
}

func (r *recordingHandler) handled() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func inboundAt(id string, ts time.Time) mail.Message {
	return mail.Message{ID: id, SenderEmail: "jane@golds.example", Timestamp: ts}
}

func TestWatcher_PollDispatchesToWorkers(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mailer := &fakeMail{messages: []mail.Message{
		inboundAt("m1", start.Add(time.Minute)),
		inboundAt("m2", start.Add(2*time.Minute)),
	}}
	h := &recordingHandler{}

	w := NewWatcher(mailer, h, 3, start)
	w.Start(context.Background())
	require.NoError(t, w.Poll(context.Background()))
	w.Stop()

	assert.ElementsMatch(t, []string{"m1", "m2"}, h.handled())
}

func TestWatcher_CursorAdvances(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mailer := &fakeMail{messages: []mail.Message{
		inboundAt("m1", start.Add(time.Minute)),
	}}
	h := &recordingHandler{}

	w := NewWatcher(mailer, h, 1, start)
	w.Start(context.Background())

	require.NoError(t, w.Poll(context.Background()))
	// Same mailbox contents: the cursor has moved past m1.
	require.NoError(t, w.Poll(context.Background()))
	w.Stop()

	assert.Equal(t, []string{"m1"}, h.handled(), "a message is enqueued exactly once")
}

func TestWatcher_NewMessagePickedUpNextPoll(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mailer := &fakeMail{messages: []mail.Message{
		inboundAt("m1", start.Add(time.Minute)),
	}}
	h := &recordingHandler{}

	w := NewWatcher(mailer, h, 1, start)
	w.Start(context.Background())
	require.NoError(t, w.Poll(context.Background()))

	mailer.messages = append(mailer.messages, inboundAt("m2", start.Add(5*time.Minute)))
	require.NoError(t, w.Poll(context.Background()))
	w.Stop()

	assert.Equal(t, []string{"m1", "m2"}, h.handled())
}

func TestWatcher_FetchFailureLeavesCursor(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mailer := &fakeMail{listErr: errors.New("imap down")}
	h := &recordingHandler{}

	w := NewWatcher(mailer, h, 1, start)
	w.Start(context.Background())
	require.Error(t, w.Poll(context.Background()))

	// Mailbox recovers; the original window is retried.
	mailer.listErr = nil
	mailer.messages = []mail.Message{inboundAt("m1", start.Add(time.Minute))}
	require.NoError(t, w.Poll(context.Background()))
	w.Stop()

	assert.Equal(t, []string{"m1"}, h.handled())
}

func TestWatcher_HandlerErrorDoesNotStopPool(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mailer := &fakeMail{messages: []mail.Message{
		inboundAt("m1", start.Add(time.Minute)),
		inboundAt("m2", start.Add(2*time.Minute)),
	}}
	h := &recordingHandler{err: errors.New("handler boom")}

	w := NewWatcher(mailer, h, 2, start)
	w.Start(context.Background())
	require.NoError(t, w.Poll(context.Background()))
	w.Stop()

	assert.Len(t, h.handled(), 2, "failures are logged per message, not fatal")
}
