// Package reply drafts outbound email text: category-aware replies to
// inbound customer mail and appointment confirmation messages.
package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/ai"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

// Document is a knowledge-base snippet returned by a similarity search.
type Document struct {
	Content string
	Score   float64
}

// VectorSearch retrieves company documents relevant to an email body, for
// grounding drafted replies. Implementations return at most k documents
// scoring at or above threshold.
type VectorSearch interface {
	Search(ctx context.Context, query string, k int, threshold float64) ([]Document, error)
}

// NoopSearch is a VectorSearch with no corpus behind it.
type NoopSearch struct{}

func (NoopSearch) Search(context.Context, string, int, float64) ([]Document, error) {
	return nil, nil
}

// serviceTypes maps an email category to the service line that shapes the
// reply instructions.
var serviceTypes = map[ai.Category]string{
	ai.CategoryNewServiceRequest:  "Repairs",
	ai.CategoryQuoteRequest:       "Repairs",
	ai.CategoryAppointment:        "Schedule Confirmations",
	ai.CategoryVendorCompliance:   "Preventive Maintenance",
	ai.CategoryAvailabilityUpdate: "Schedule Confirmations",
	ai.CategoryJobFollowUp:        "Repair Complete",
	ai.CategoryFeedback:           "Feedback",
	ai.CategoryInvoiceQuestion:    "Invoice or Billing",
	ai.CategoryComplaint:          "Repairs",
	ai.CategoryWarrantyClaim:      "Repairs",
	ai.CategoryCancellation:       "Cancellations",
	ai.CategoryGeneralQuestion:    "General Support",
	ai.CategoryOther:              "Spam",
}

var serviceInstructions = map[string]string{
	"Repairs":                "We received a repair-related request. Address it clearly. Confirm any possible action. Reference matched service request info if available.",
	"Schedule Confirmations": "This is a schedule confirmation or time proposal. Confirm time if reasonable and ask for entry access if needed.",
	"Preventive Maintenance": "This is a preventive maintenance inquiry. Confirm the visit, ask about equipment issues, entry access, and point of contact.",
	"Repair Complete":        "Customer is likely following up after a repair. Reassure them the repair is complete or in progress. Provide reference if possible.",
	"Cancellations":          "Customer is cancelling a visit. Confirm the cancellation. Ask if they would like to reschedule.",
	"General Support":        "Customer has a general question. Respond briefly with support info or let them know you are looking into it.",
	"Invoice or Billing":     "Respond to invoice or billing issues. Reference invoice number or status if available.",
	"Feedback":               "Acknowledge their feedback. Thank them and mention it will be shared with the team.",
	"Spam":                   "No reply needed.",
}

const (
	searchK         = 3
	searchThreshold = 0.3
)

// Generator drafts replies with a language model, grounded on matched
// service records and optionally on a document search.
type Generator struct {
	llm    ai.Completion
	search VectorSearch
	sender string
}

// NewGenerator builds a Generator. search may be nil; sender is the
// signature line appended to drafted replies.
func NewGenerator(llm ai.Completion, search VectorSearch, sender string) *Generator {
	if search == nil {
		search = NoopSearch{}
	}
	return &Generator{llm: llm, search: search, sender: sender}
}

// DraftReply produces an outbound reply to msg given its category and the
// matched service records. Spam yields a zero Outbound, which callers treat
// as "do not reply".
func (g *Generator) DraftReply(ctx context.Context, msg mail.Message, category ai.Category, matches []model.MatchResult) (mail.Outbound, error) {
	serviceType := serviceTypes[category]
	if serviceType == "" {
		serviceType = "General Support"
	}
	if serviceType == "Spam" {
		return mail.Outbound{}, nil
	}

	matchInfo := "No matching service request found."
	if len(matches) > 0 {
		top := matches[0].Record
		matchInfo = fmt.Sprintf("Service Request ID: %s, Customer: %s, Status: %s",
			top.ID, top.CustomerName, top.Status)
	}

	docs, err := g.search.Search(ctx, msg.Body, searchK, searchThreshold)
	if err != nil {
		// A missing knowledge base must not block the reply.
		docs = nil
	}
	var contextText strings.Builder
	for _, d := range docs {
		contextText.WriteString(d.Content)
		contextText.WriteString("\n")
	}

	instructions := fmt.Sprintf("Email category: %s.\nService type: %s.\nInstructions: %s",
		category, serviceType, serviceInstructions[serviceType])

	prompt := fmt.Sprintf(`You are an automated assistant for a commercial equipment service company.

Extract the sender's first name using any of this information:
- Sender Name: %s
- Sender Email: %s
- Email Subject: %s
- Email Content: %s

If you cannot confidently find a first name, use 'there' as a fallback.

Then, using the extracted first name, generate a short, friendly, helpful email reply.

Relevant company documents:
%s

Matched service info:
%s

Reply instructions:
%s

Guidelines:
- Use simple, friendly language.
- No hyperlinks, plain text only.
- Keep reply under 80 words.
- Sign as %s.

Start your reply with: "Hi [First Name],"

Reply:`, msg.SenderName, msg.SenderEmail, msg.Subject, msg.Body,
		contextText.String(), matchInfo, instructions, g.sender)

	body, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return mail.Outbound{}, fmt.Errorf("draft reply: %w", err)
	}

	return mail.Outbound{
		To:       msg.SenderEmail,
		Subject:  "Re: " + msg.Subject,
		Body:     strings.TrimSpace(body),
		ThreadID: msg.ThreadID,
	}, nil
}
