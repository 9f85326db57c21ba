package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

// Extraction is the structured information pulled from an email: who the
// sender is plus what they are asking for.
type Extraction struct {
	model.Identity
	IssueDescription string `json:"issue_description"`
	PreferredDate    string `json:"preferred_date"`
}

// Extractor pulls a structured Extraction out of a free-form email.
type Extractor struct {
	llm Completion
}

func NewExtractor(llm Completion) *Extractor {
	return &Extractor{llm: llm}
}

// Extract asks the model for the sender identity and request details. The
// envelope sender is passed alongside the body so the model can fall back
// on it when the text is unsigned.
func (e *Extractor) Extract(ctx context.Context, subject, body, senderName, senderEmail string) (Extraction, error) {
	prompt := buildExtractionPrompt(subject, body, senderName, senderEmail)
	raw, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return Extraction{}, fmt.Errorf("extract identity: %w", err)
	}

	var out Extraction
	if err := ParseJSON(raw, &out); err != nil {
		return Extraction{}, err
	}
	return out, nil
}

func buildExtractionPrompt(subject, body, senderName, senderEmail string) string {
	var sb strings.Builder
	sb.WriteString("Extract structured customer service info from this email.\n")
	sb.WriteString("service_request_id is just a 5 digit number series, do not include characters.\n\n")
	fmt.Fprintf(&sb, "Sender Name: %s\n", senderName)
	fmt.Fprintf(&sb, "Sender Email: %s\n", senderEmail)
	fmt.Fprintf(&sb, "Email Subject: %s\n", subject)
	sb.WriteString("Email Content:\n\"\"\"\n")
	sb.WriteString(body)
	sb.WriteString("\n\"\"\"\n\n")
	sb.WriteString(`Return JSON with:
- full_name
- email
- company
- phone_number
- location
- contact_person
- service_request_id
- issue_description
- preferred_date`)
	return sb.String()
}
