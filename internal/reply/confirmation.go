package reply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/ai"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

// Fallback content when the model output cannot be used.
const (
	fallbackConfirmSubject = "Your Appointment is Confirmed"
	fallbackConfirmBody    = "This confirms your scheduled service. We appreciate your business!"
)

type confirmationJSON struct {
	Subject  string `json:"subject"`
	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html"`
}

// GenerateConfirmation drafts the appointment confirmation email for an
// assignment. Model or parse failures degrade to a static confirmation so
// the notification is never lost.
func (g *Generator) GenerateConfirmation(ctx context.Context, a model.Assignment) (subject, body string) {
	prompt := fmt.Sprintf(`You are an assistant for a gym equipment repair company.

Generate a short, professional appointment confirmation email using this assignment data:

- Assignment ID: %s
- Service Request ID: %s
- Start Date: %s
- End Date: %s
- Assigned User ID: %s

Respond ONLY in JSON with these keys:
- subject (string): subject line for the email
- body_text (string): plain text content
- body_html (string): same content in HTML using <p> tags

Body_text requirements:
- Upbeat confirmation tone.
- Include "Fitness Equipment" in the subject line together with the service request ID.
- Give a 3 hour arrival window starting half an hour before the scheduled timeslot.
- Ask if there are any unreported issues with the fitness equipment to address.
- Ask what keys, fobs, or entry requirements would make the visit more streamlined.
- Ask if there have been any contact changes.
- Plain text only, no hyperlinks.
- Only list the assigned technician.
- Sign as %s.`,
		a.ID(), a.ServiceRequestID(), a.StartDate(), a.EndDate(), a.AssignedUserID(), g.sender)

	raw, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("confirmation generation failed, using fallback", "assignment", a.ID(), "err", err)
		return fallbackConfirmSubject, fallbackConfirmBody
	}

	var parsed confirmationJSON
	if err := ai.ParseJSON(raw, &parsed); err != nil || parsed.Subject == "" || parsed.BodyText == "" {
		slog.Warn("confirmation parse failed, using fallback", "assignment", a.ID(), "err", err)
		return fallbackConfirmSubject, fallbackConfirmBody
	}
	return parsed.Subject, parsed.BodyText
}

// FollowUp returns the canned acknowledgement sent after classifying a
// customer's answer to a confirmation email.
func FollowUp(kind ai.ReplyKind) (subject, body string) {
	switch kind {
	case ai.ReplyConfirmed:
		return "Visit Confirmed - Thank You",
			"Thanks for confirming your appointment. We'll see you then!"
	case ai.ReplyQuery:
		return "Follow-up on Your Question",
			"Thanks for your message. We'll get back to you shortly with answers to your questions."
	case ai.ReplyReschedule:
		return "Reschedule Request Received",
			"Thanks for your request. We'll review and follow up with new availability."
	default:
		return "Thanks for Your Reply",
			"Thanks for your reply. We've noted your response and will follow up if needed."
	}
}

// StatusFor maps a classified reply to the work-order status it implies.
// ReplyOther implies no status change and returns "".
func StatusFor(kind ai.ReplyKind) string {
	switch kind {
	case ai.ReplyConfirmed:
		return "SCHEDULED"
	case ai.ReplyQuery:
		return "CONFIRMATION PENDING"
	case ai.ReplyReschedule:
		return "RESCHEDULE REQUESTED"
	default:
		return ""
	}
}

// CommentFor maps a classified reply to the comment recorded on the work
// order.
func CommentFor(kind ai.ReplyKind) string {
	switch kind {
	case ai.ReplyConfirmed:
		return "Customer confirmed scheduled visit."
	case ai.ReplyQuery:
		return "Customer has a question about scheduled visit."
	case ai.ReplyReschedule:
		return "Customer requested rescheduling."
	default:
		return "Received a reply regarding the scheduled visit."
	}
}
