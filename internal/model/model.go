// Package model defines shared data structures for the assistant service.
package model

import (
	"maps"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Identity is the set of customer-identifying fields extracted from an
// inbound message. All fields are optional; at least one must be present
// for a meaningful match.
type Identity struct {
	FullName         string `json:"full_name"`
	ContactPerson    string `json:"contact_person"`
	Company          string `json:"company"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phone_number"`
	Location         string `json:"location"`
	ServiceRequestID string `json:"service_request_id"`
}

// Empty reports whether no identifying field is populated.
func (id Identity) Empty() bool {
	return id.FullName == "" && id.ContactPerson == "" && id.Company == "" &&
		id.Email == "" && id.PhoneNumber == "" && id.Location == "" &&
		id.ServiceRequestID == ""
}

// ServiceRecord is an immutable snapshot of a work order fetched from the
// remote system. Field names mirror the remote API tags.
type ServiceRecord struct {
	ID                 string `json:"id"`
	ExternalID         string `json:"externalId"`
	CustomerName       string `json:"customerName"`
	ContactName        string `json:"contactName"`
	ContactEmail       string `json:"contactEmail"` // one or more addresses, ';' or ',' delimited
	ContactPhone       string `json:"contactPhone"`
	ContactPhoneMobile string `json:"contactPhoneMobile"`
	Description        string `json:"description"`
	Created            string `json:"created"` // raw timestamp as returned by the API
	Status             string `json:"status"`
	LocationStreet     string `json:"locationStreet"`
	LocationCity       string `json:"locationCity"`
	LocationState      string `json:"locationState"`
}

var emailSplitRe = regexp.MustCompile(`[;,]`)

// EmailAddresses returns the individual addresses from the ContactEmail
// field, lower-cased and trimmed.
func (r ServiceRecord) EmailAddresses() []string {
	var out []string
	for _, e := range emailSplitRe.Split(r.ContactEmail, -1) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// LocationLine concatenates street, city and state into a single line for
// fuzzy comparison.
func (r ServiceRecord) LocationLine() string {
	return strings.TrimSpace(r.LocationStreet + " " + r.LocationCity + " " + r.LocationState)
}

// CreatedAt parses the record's creation timestamp. Invalid or missing
// values yield the zero time, which sorts last among tie-broken matches.
func (r ServiceRecord) CreatedAt() time.Time {
	return ParseCreated(r.Created)
}

// createdLayouts are tried in order; the remote API emits fractional
// seconds without a zone, but some endpoints return plain RFC 3339.
var createdLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseCreated parses a remote timestamp, returning the zero time when the
// value is empty or unparseable.
func ParseCreated(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MatchResult pairs a normalized [0,1] score with the record it was
// computed for. Components holds the weighted per-field scores that
// produced the total, for logging and troubleshooting.
type MatchResult struct {
	Score      float64            `json:"score"`
	Record     ServiceRecord      `json:"record"`
	Components map[string]float64 `json:"components,omitempty"`
}

// Assignment is a scheduled dispatch tied to a service request. The remote
// system returns a flat element list whose tags vary by account
// configuration, so the record is kept as a string map and well-known
// fields are exposed through accessors.
type Assignment map[string]string

// Well-known assignment field keys.
const (
	FieldAssignmentID     = "assignmentId"
	FieldServiceRequestID = "serviceRequestId"
	FieldAssignedUserID   = "assignedUserId"
	FieldStartDate        = "startDate"
	FieldEndDate          = "endDate"
	FieldCreated          = "dateTimeCreated"
)

// ID returns the assignment's unique identifier, or "" when absent.
func (a Assignment) ID() string { return a[FieldAssignmentID] }

// ServiceRequestID returns the linked work order id.
func (a Assignment) ServiceRequestID() string { return a[FieldServiceRequestID] }

// AssignedUserID returns the technician assigned to the visit.
func (a Assignment) AssignedUserID() string { return a[FieldAssignedUserID] }

// StartDate returns the raw scheduled start timestamp.
func (a Assignment) StartDate() string { return a[FieldStartDate] }

// EndDate returns the raw scheduled end timestamp.
func (a Assignment) EndDate() string { return a[FieldEndDate] }

// Equal reports strict field-set equality: both assignments must have
// exactly the same keys with exactly the same values. A field appearing or
// disappearing counts as a difference.
func (a Assignment) Equal(b Assignment) bool { return maps.Equal(a, b) }

// FieldChange records a single field difference between two versions of an
// assignment.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// ChangedFields returns the per-field differences between old and a, over
// the union of both key sets, in sorted field order.
func (a Assignment) ChangedFields(old Assignment) []FieldChange {
	keys := make(map[string]struct{}, len(a)+len(old))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range old {
		keys[k] = struct{}{}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []FieldChange
	for _, k := range sorted {
		oldV, newV := old[k], a[k]
		if oldV != newV {
			changes = append(changes, FieldChange{Field: k, Old: oldV, New: newV})
		}
	}
	return changes
}
