package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	netmail "net/mail"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailClient implements Client over the Gmail API.
type GmailClient struct {
	svc *gmail.Service
}

// NewGmailClient creates an authenticated Gmail client from an OAuth2
// config and a previously obtained token.
func NewGmailClient(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*GmailClient, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	httpClient := cfg.Client(ctx, token)
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailClient{svc: svc}, nil
}

// ListUnread returns up to max unread inbox messages.
func (c *GmailClient) ListUnread(ctx context.Context, max int) ([]Message, error) {
	return c.list(ctx, "is:unread", int64(max))
}

// ListSince returns unread messages received strictly after since. Gmail's
// after: operator has second granularity, so the internal timestamp is
// re-checked per message.
func (c *GmailClient) ListSince(ctx context.Context, since time.Time) ([]Message, error) {
	query := fmt.Sprintf("is:unread after:%d", since.Unix())
	msgs, err := c.list(ctx, query, 0)
	if err != nil {
		return nil, err
	}
	out := msgs[:0]
	for _, m := range msgs {
		if m.Timestamp.After(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *GmailClient) list(ctx context.Context, query string, max int64) ([]Message, error) {
	call := c.svc.Users.Messages.List("me").LabelIds("UNREAD").Q(query).Context(ctx)
	if max > 0 {
		call = call.MaxResults(max)
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var out []Message
	for _, ref := range res.Messages {
		msg, err := c.GetMessage(ctx, ref.Id)
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}
	return out, nil
}

// GetMessage fetches and normalizes a single message.
func (c *GmailClient) GetMessage(ctx context.Context, id string) (*Message, error) {
	msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	out := &Message{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Timestamp: time.UnixMilli(msg.InternalDate),
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				out.Subject = h.Value
			case "From":
				if addr, err := netmail.ParseAddress(h.Value); err == nil {
					out.SenderName = addr.Name
					out.SenderEmail = addr.Address
				} else {
					out.SenderEmail = h.Value
				}
			}
		}
		out.Body = extractBody(msg.Payload)
	}
	return out, nil
}

// extractBody pulls the plain-text body out of a MIME payload, walking
// nested multipart containers.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if len(payload.Parts) == 0 {
		return decodeBody(payload.Body)
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" {
			return decodeBody(part.Body)
		}
	}
	for _, part := range payload.Parts {
		if body := extractBody(part); body != "" {
			return body
		}
	}
	return ""
}

func decodeBody(body *gmail.MessagePartBody) string {
	if body == nil || body.Data == "" {
		return ""
	}
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(body.Data)
	if err != nil {
		return ""
	}
	return string(data)
}

// MarkRead removes the UNREAD label from the message.
func (c *GmailClient) MarkRead(ctx context.Context, id string) error {
	_, err := c.svc.Users.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	return nil
}

// Send delivers a plain-text message, threading it when out.ThreadID is set.
func (c *GmailClient) Send(ctx context.Context, out Outbound) error {
	rfc822 := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		out.To, out.Subject, out.Body)

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString([]byte(rfc822)),
		ThreadId: out.ThreadID,
	}
	if _, err := c.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send to %s: %w", out.To, err)
	}
	return nil
}
