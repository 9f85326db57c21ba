// Package mail defines the mailbox capability the assistant consumes and
// its Gmail implementation.
package mail

import (
	"context"
	"time"
)

// Message is a normalized inbound message.
type Message struct {
	ID          string
	ThreadID    string
	SenderName  string
	SenderEmail string
	Subject     string
	Body        string
	Timestamp   time.Time
}

// Outbound describes a message to send. ThreadID is optional; when set the
// message is delivered into the existing conversation.
type Outbound struct {
	To       string
	Subject  string
	Body     string
	ThreadID string
}

// Client is the mailbox capability. Listing, fetching, marking read and
// sending are all best-effort remote calls; retry policy belongs to the
// caller's polling loop.
type Client interface {
	// ListUnread returns up to max unread messages from the inbox.
	ListUnread(ctx context.Context, max int) ([]Message, error)
	// ListSince returns unread messages received strictly after since.
	ListSince(ctx context.Context, since time.Time) ([]Message, error)
	// GetMessage fetches a single message by id.
	GetMessage(ctx context.Context, id string) (*Message, error)
	// MarkRead removes the message from the unread set.
	MarkRead(ctx context.Context, id string) error
	// Send delivers an outbound message.
	Send(ctx context.Context, out Outbound) error
}
