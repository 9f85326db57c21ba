package ai

import (
	"context"
	"fmt"
	"strings"
)

// ReplyKind is the tone of a customer's answer to a schedule confirmation.
type ReplyKind string

const (
	ReplyConfirmed  ReplyKind = "confirmed"
	ReplyQuery      ReplyKind = "query"
	ReplyReschedule ReplyKind = "reschedule"
	ReplyOther      ReplyKind = "other"
)

// ParseReplyKind normalizes raw model output to a ReplyKind, defaulting to
// ReplyOther for anything unrecognized.
func ParseReplyKind(raw string) ReplyKind {
	k := ReplyKind(strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"'`)))
	switch k {
	case ReplyConfirmed, ReplyQuery, ReplyReschedule:
		return k
	default:
		return ReplyOther
	}
}

// ReplyClassifier decides how a customer responded to a confirmation email.
type ReplyClassifier struct {
	llm Completion
}

func NewReplyClassifier(llm Completion) *ReplyClassifier {
	return &ReplyClassifier{llm: llm}
}

func (c *ReplyClassifier) Classify(ctx context.Context, body string) (ReplyKind, error) {
	prompt := fmt.Sprintf(`A customer replied to a service schedule confirmation. Classify the tone of this response into one of:

- "confirmed" (they clearly agree to the schedule)
- "query" (they ask questions or need more info)
- "reschedule" (they want to change the time)
- "other" (none of the above)

Reply only with one of the four labels.
Customer message:
%s`, body)

	raw, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return ReplyOther, fmt.Errorf("classify reply: %w", err)
	}
	return ParseReplyKind(raw), nil
}
