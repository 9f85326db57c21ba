package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Category is the intent class assigned to an incoming email.
type Category int

const (
	CategoryNewServiceRequest Category = iota + 1
	CategoryQuoteRequest
	CategoryAppointment
	CategoryVendorCompliance
	CategoryAvailabilityUpdate
	CategoryJobFollowUp
	CategoryFeedback
	CategoryInvoiceQuestion
	CategoryComplaint
	CategoryWarrantyClaim
	CategoryCancellation
	CategoryGeneralQuestion
	CategoryOther
)

var categoryNames = map[Category]string{
	CategoryNewServiceRequest:  "New Service Request",
	CategoryQuoteRequest:       "Request for Quote / Estimate",
	CategoryAppointment:        "Appointment / Confirmation",
	CategoryVendorCompliance:   "Insurance / Vendor Compliance",
	CategoryAvailabilityUpdate: "Availability Update",
	CategoryJobFollowUp:        "Follow-up on Ongoing Job",
	CategoryFeedback:           "Feedback / Review on Completed Service",
	CategoryInvoiceQuestion:    "Invoice / Payment Questions",
	CategoryComplaint:          "Complaint / Issue After Service",
	CategoryWarrantyClaim:      "Warranty Claim",
	CategoryCancellation:       "Cancellation Request",
	CategoryGeneralQuestion:    "General Questions / Support",
	CategoryOther:              "Others / Spam",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	return c >= CategoryNewServiceRequest && c <= CategoryOther
}

// ParseCategory converts raw model output into a Category. Anything that is
// not a number in range falls back to CategoryOther.
func ParseCategory(raw string) Category {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return CategoryOther
	}
	c := Category(n)
	if !c.Valid() {
		return CategoryOther
	}
	return c
}

// Categorizer assigns a Category to an email from its subject and body.
type Categorizer struct {
	llm Completion
}

func NewCategorizer(llm Completion) *Categorizer {
	return &Categorizer{llm: llm}
}

// Categorize classifies the email. Model failures degrade to CategoryOther
// so one bad call never blocks the inbox.
func (c *Categorizer) Categorize(ctx context.Context, subject, body string) Category {
	raw, err := c.llm.Complete(ctx, buildCategorizationPrompt(subject, body))
	if err != nil {
		slog.Warn("categorization failed, falling back to other", "err", err)
		return CategoryOther
	}
	return ParseCategory(raw)
}

func buildCategorizationPrompt(subject, body string) string {
	var sb strings.Builder
	sb.WriteString(`You are a professional-grade email classification assistant for a commercial service company. Your task is to analyze incoming emails and assign the most appropriate category based on the sender's intent. These emails are typically related to service requests, scheduling, billing, follow-ups, or general communication.

You must evaluate both the subject and body of the email to determine the correct category.

## Categories (Respond with the NUMBER only):
`)
	for c := CategoryNewServiceRequest; c <= CategoryOther; c++ {
		fmt.Fprintf(&sb, "%d. %s\n", int(c), c)
	}
	sb.WriteString(`
## Classification Guidelines:
- Always consider the full subject and body together and identify the sender's main intent, not just keywords.
- Choose 1 if the email is requesting repair, service, or technical support for a new issue, even if it mentions urgency or scheduling.
- Choose 2 if they are asking for pricing, a quote, or an estimate (explicit or implied).
- Choose 3 if the sender confirms or proposes a specific time/date for a meeting or service.
- Choose 4 if the email refers to vendor onboarding, COI, W9, or insurance.
- Choose 5 for inquiries or updates about technician/staff availability.
- Choose 6 if they refer to a job already started or ongoing and want an update or reschedule.
- Choose 7 if they provide positive or negative feedback with no issue needing resolution.
- Choose 8 if the sender is asking about an invoice, payment, or billing discrepancy.
- Choose 9 if they are unhappy after service, e.g. the issue is still not fixed or the problem returned.
- Choose 10 for warranty-related repairs within a time-based or contract-based coverage.
- Choose 11 if the email clearly requests to cancel a scheduled job, meeting, or dispatch.
- Choose 12 for a general question not fitting other categories.
- Choose 13 if the email is vague, spam, off-topic, or clearly not actionable.

## Output Rules:
- Respond with the category number only.
- Do not return any label, description, explanation, or markdown.

## Email Subject:
`)
	sb.WriteString(subject)
	sb.WriteString("\n\n## Email Body:\n\"\"\"\n")
	sb.WriteString(body)
	sb.WriteString("\n\"\"\"\n\nCategory Number:")
	return sb.String()
}
