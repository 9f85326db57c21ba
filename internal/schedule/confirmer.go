package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/store"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/workorder"
)

// EventConfirmationSent is published after each successful confirmation
// email, with the assignment id as payload.
const EventConfirmationSent = "EVENT_CONFIRMATION_SENT"

// ConfirmationDrafter produces the confirmation email for an assignment.
// Implementations must degrade to usable fallback text rather than fail.
type ConfirmationDrafter interface {
	GenerateConfirmation(ctx context.Context, a model.Assignment) (subject, body string)
}

// Publisher announces lifecycle events on a channel. A nil Publisher
// disables publishing; publish failures are never fatal to a cycle.
type Publisher interface {
	Publish(ctx context.Context, channel, payload string) error
}

// Confirmer runs the appointment confirmation cycle: poll assignments in a
// rolling window, diff against the last snapshot, email the customers of
// new and changed assignments at most once each, then commit the snapshot.
type Confirmer struct {
	work      workorder.Client
	mailer    mail.Client
	drafter   ConfirmationDrafter
	store     store.Store
	ledger    *Ledger
	publisher Publisher

	daysAhead int
	// fallbackRecipient receives the confirmation when the linked service
	// request carries no contact address. Empty means skip such assignments.
	fallbackRecipient string
}

// NewConfirmer wires a confirmation cycle. publisher may be nil.
func NewConfirmer(work workorder.Client, mailer mail.Client, drafter ConfirmationDrafter,
	st store.Store, ledger *Ledger, publisher Publisher, daysAhead int, fallbackRecipient string) *Confirmer {
	return &Confirmer{
		work:              work,
		mailer:            mailer,
		drafter:           drafter,
		store:             st,
		ledger:            ledger,
		publisher:         publisher,
		daysAhead:         daysAhead,
		fallbackRecipient: fallbackRecipient,
	}
}

// RunCycle executes one confirmation pass. Per-assignment failures are
// logged and skipped; the snapshot is committed only when the pass reaches
// the end, so a failed cycle is retried in full on the next tick.
func (c *Confirmer) RunCycle(ctx context.Context) error {
	now := time.Now()
	current, err := c.work.ListAssignments(ctx, now, now.AddDate(0, 0, c.daysAhead))
	if err != nil {
		return fmt.Errorf("fetch assignments: %w", err)
	}

	var previous []model.Assignment
	if err := c.store.Load(ctx, SnapshotKey, &previous); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("assignment snapshot unreadable, treating as bootstrap", "err", err)
		previous = nil
	}

	diff := Diff(current, previous)
	candidates := make([]model.Assignment, 0, len(diff.New)+len(diff.Updated))
	candidates = append(candidates, diff.New...)
	candidates = append(candidates, diff.Updated...)

	sent := 0
	for _, a := range candidates {
		if !c.ledger.ShouldSend(a.ID()) {
			continue
		}
		if c.notify(ctx, a) {
			sent++
		}
	}

	if err := c.store.Save(ctx, SnapshotKey, current); err != nil {
		return fmt.Errorf("commit assignment snapshot: %w", err)
	}

	slog.Info("confirmation cycle complete",
		"assignments", len(current), "new", len(diff.New), "updated", len(diff.Updated), "sent", sent)
	return nil
}

// notify sends one confirmation email and records it. Returns true only
// when the send succeeded and was marked.
func (c *Confirmer) notify(ctx context.Context, a model.Assignment) bool {
	to, err := c.recipient(ctx, a)
	if err != nil {
		slog.Warn("cannot resolve confirmation recipient", "assignmentId", a.ID(), "err", err)
		return false
	}

	subject, body := c.drafter.GenerateConfirmation(ctx, a)
	if err := c.mailer.Send(ctx, mail.Outbound{To: to, Subject: subject, Body: body}); err != nil {
		slog.Warn("confirmation send failed", "assignmentId", a.ID(), "to", to, "err", err)
		return false
	}

	if err := c.ledger.MarkSent(ctx, a.ID()); err != nil {
		// The email went out; a persistence failure only risks a duplicate
		// after restart.
		slog.Warn("mark sent failed", "assignmentId", a.ID(), "err", err)
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, EventConfirmationSent, a.ID()); err != nil {
			slog.Warn("event publish failed", "assignmentId", a.ID(), "err", err)
		}
	}
	return true
}

// recipient resolves the customer address for an assignment from its linked
// service request, falling back to the configured address.
func (c *Confirmer) recipient(ctx context.Context, a model.Assignment) (string, error) {
	srID := a.ServiceRequestID()
	if srID != "" {
		record, err := c.work.GetRequest(ctx, srID)
		if err != nil {
			slog.Warn("service request lookup failed", "serviceRequestId", srID, "err", err)
		} else if addrs := record.EmailAddresses(); len(addrs) > 0 {
			return addrs[0], nil
		}
	}
	if c.fallbackRecipient != "" {
		return c.fallbackRecipient, nil
	}
	return "", fmt.Errorf("no contact address for assignment %s", a.ID())
}
