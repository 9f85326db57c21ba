// Package responder implements the inbound email pipeline: a polling
// watcher feeding a worker pool, and the per-message handler that
// classifies, matches, and answers customer mail.
package responder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/ai"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/match"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/reply"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/workorder"
)

// Categorizer assigns an intent category to an email.
type Categorizer interface {
	Categorize(ctx context.Context, subject, body string) ai.Category
}

// Extractor pulls structured customer info out of an email.
type Extractor interface {
	Extract(ctx context.Context, subject, body, senderName, senderEmail string) (ai.Extraction, error)
}

// ReplyClassifier decides how a customer answered a schedule confirmation.
type ReplyClassifier interface {
	Classify(ctx context.Context, body string) (ai.ReplyKind, error)
}

// Drafter produces the outbound reply for a categorized, matched email.
type Drafter interface {
	DraftReply(ctx context.Context, msg mail.Message, category ai.Category, matches []model.MatchResult) (mail.Outbound, error)
}

// Handler processes one inbound message end to end.
type Handler struct {
	blacklist   *mail.Blacklist
	categorizer Categorizer
	extractor   Extractor
	classifier  ReplyClassifier
	drafter     Drafter
	matcher     *match.Matcher
	work        workorder.Client
	mailer      mail.Client
}

func NewHandler(blacklist *mail.Blacklist, categorizer Categorizer, extractor Extractor,
	classifier ReplyClassifier, drafter Drafter, matcher *match.Matcher,
	work workorder.Client, mailer mail.Client) *Handler {
	return &Handler{
		blacklist:   blacklist,
		categorizer: categorizer,
		extractor:   extractor,
		classifier:  classifier,
		drafter:     drafter,
		matcher:     matcher,
		work:        work,
		mailer:      mailer,
	}
}

// Handle runs the full pipeline for one message: blacklist, categorize,
// extract, match, reply, mark read. Collaborator failures degrade rather
// than abort: a missing extraction matches nothing, a failed work-order
// fetch yields an unmatched reply.
func (h *Handler) Handle(ctx context.Context, msg mail.Message) error {
	slog.Info("handling email", "id", msg.ID, "from", msg.SenderEmail, "subject", msg.Subject)

	if h.blacklist.Blocked(msg.SenderEmail) {
		slog.Info("blacklisted sender", "from", msg.SenderEmail)
		return h.markRead(ctx, msg.ID)
	}

	category := h.categorizer.Categorize(ctx, msg.Subject, msg.Body)
	slog.Info("email categorized", "id", msg.ID, "category", int(category), "name", category.String())

	extraction, err := h.extractor.Extract(ctx, msg.Subject, msg.Body, msg.SenderName, msg.SenderEmail)
	if err != nil {
		slog.Warn("identity extraction failed", "id", msg.ID, "err", err)
		extraction = ai.Extraction{}
	}
	if extraction.Email == "" {
		extraction.Email = msg.SenderEmail
	}

	matches := h.matchRecords(ctx, extraction.Identity)

	if category == ai.CategoryAppointment {
		if done, err := h.handleConfirmationReply(ctx, msg, extraction, matches); done || err != nil {
			return err
		}
	}

	out, err := h.drafter.DraftReply(ctx, msg, category, matches)
	if err != nil {
		return fmt.Errorf("draft reply for %s: %w", msg.ID, err)
	}
	if out.To != "" {
		if err := h.mailer.Send(ctx, out); err != nil {
			return fmt.Errorf("send reply for %s: %w", msg.ID, err)
		}
		slog.Info("reply sent", "id", msg.ID, "to", out.To)
	}

	return h.markRead(ctx, msg.ID)
}

// matchRecords fetches the open service requests and matches the identity
// against them. A failed fetch degrades to no matches.
func (h *Handler) matchRecords(ctx context.Context, id model.Identity) []model.MatchResult {
	records, err := h.work.ListOpenRequests(ctx)
	if err != nil {
		slog.Warn("open request fetch failed, matching skipped", "err", err)
		return nil
	}
	matches := h.matcher.Match(id, records)
	if len(matches) > 0 {
		slog.Info("matched service request",
			"serviceRequestId", matches[0].Record.ID, "score", matches[0].Score, "candidates", len(matches))
	}
	return matches
}

// handleConfirmationReply processes an answer to a schedule confirmation:
// classify the tone, update the linked work order, and send the canned
// acknowledgement. Returns done=false when no work order can be tied to the
// message, in which case the normal reply path takes over.
func (h *Handler) handleConfirmationReply(ctx context.Context, msg mail.Message, extraction ai.Extraction, matches []model.MatchResult) (bool, error) {
	srID := extraction.ServiceRequestID
	if srID == "" && len(matches) > 0 {
		srID = matches[0].Record.ID
	}
	if srID == "" {
		return false, nil
	}

	kind, err := h.classifier.Classify(ctx, msg.Body)
	if err != nil {
		slog.Warn("reply classification failed", "id", msg.ID, "err", err)
		kind = ai.ReplyOther
	}
	slog.Info("confirmation reply classified", "id", msg.ID, "kind", string(kind), "serviceRequestId", srID)

	if status := reply.StatusFor(kind); status != "" {
		if err := h.work.UpdateStatus(ctx, srID, status); err != nil {
			slog.Warn("status update failed", "serviceRequestId", srID, "err", err)
		}
	}
	if err := h.work.AddComment(ctx, srID, reply.CommentFor(kind)); err != nil {
		slog.Warn("comment failed", "serviceRequestId", srID, "err", err)
	}

	subject, body := reply.FollowUp(kind)
	out := mail.Outbound{To: msg.SenderEmail, Subject: subject, Body: body, ThreadID: msg.ThreadID}
	if err := h.mailer.Send(ctx, out); err != nil {
		return true, fmt.Errorf("send follow-up for %s: %w", msg.ID, err)
	}

	return true, h.markRead(ctx, msg.ID)
}

func (h *Handler) markRead(ctx context.Context, id string) error {
	if err := h.mailer.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	return nil
}
