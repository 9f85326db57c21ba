// Package workorder defines the work-order system capability and its
// BlueFolder implementation.
package workorder

import (
	"context"
	"time"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

// Client is the query/update surface of the external work-order system.
type Client interface {
	// ListOpenRequests returns all open service requests.
	ListOpenRequests(ctx context.Context) ([]model.ServiceRecord, error)
	// GetRequest fetches a single service request by id.
	GetRequest(ctx context.Context, id string) (*model.ServiceRecord, error)
	// ListAssignments returns all technician assignments scheduled within
	// the date range.
	ListAssignments(ctx context.Context, start, end time.Time) ([]model.Assignment, error)
	// UpdateStatus sets the status of a service request.
	UpdateStatus(ctx context.Context, id, status string) error
	// AddComment appends a free-text comment to a service request.
	AddComment(ctx context.Context, id, text string) error
}
