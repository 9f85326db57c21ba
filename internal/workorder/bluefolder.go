package workorder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

// DefaultBaseURL is the production BlueFolder API root.
const DefaultBaseURL = "https://app.bluefolder.com/api/2.0"

const httpTimeout = 15 * time.Second

// BlueFolder implements Client against the BlueFolder XML-over-HTTP API.
// Authentication is HTTP Basic with the API token as the user name and a
// literal "x" password.
type BlueFolder struct {
	baseURL string
	auth    string
	client  *http.Client
}

// NewBlueFolder constructs a client. baseURL may be empty to use the
// production endpoint.
func NewBlueFolder(token, baseURL string) *BlueFolder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(token + ":x"))
	return &BlueFolder{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    "Basic " + credentials,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// post sends an XML request body and returns the raw response bytes.
func (b *BlueFolder) post(ctx context.Context, path, body string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", b.auth)
	req.Header.Set("Content-Type", "text/xml")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, string(data))
	}
	return data, nil
}

// serviceRequestXML mirrors the fields of a <serviceRequest> element the
// matcher consumes.
type serviceRequestXML struct {
	ID             string `xml:"serviceRequestId"`
	ExternalID     string `xml:"externalId"`
	CustomerName   string `xml:"customerName"`
	ContactName    string `xml:"customerContactName"`
	ContactEmail   string `xml:"customerContactEmail"`
	ContactPhone   string `xml:"customerContactPhone"`
	ContactMobile  string `xml:"customerContactPhoneMobile"`
	Description    string `xml:"description"`
	Created        string `xml:"dateTimeCreated"`
	Status         string `xml:"status"`
	LocationStreet string `xml:"customerLocationStreetAddress"`
	LocationCity   string `xml:"customerLocationCity"`
	LocationState  string `xml:"customerLocationState"`
}

func (x serviceRequestXML) toRecord() model.ServiceRecord {
	return model.ServiceRecord{
		ID:                 x.ID,
		ExternalID:         x.ExternalID,
		CustomerName:       x.CustomerName,
		ContactName:        x.ContactName,
		ContactEmail:       x.ContactEmail,
		ContactPhone:       x.ContactPhone,
		ContactPhoneMobile: x.ContactMobile,
		Description:        x.Description,
		Created:            x.Created,
		Status:             x.Status,
		LocationStreet:     x.LocationStreet,
		LocationCity:       x.LocationCity,
		LocationState:      x.LocationState,
	}
}

// ListOpenRequests fetches the basic list of open service requests.
func (b *BlueFolder) ListOpenRequests(ctx context.Context) ([]model.ServiceRecord, error) {
	const body = `<request>
	<serviceRequestList>
		<listType>basic</listType>
		<status>open</status>
	</serviceRequestList>
</request>`

	data, err := b.post(ctx, "/serviceRequests/list.aspx", body)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	return ParseServiceRequests(data)
}

// GetRequest fetches a single service request by id.
func (b *BlueFolder) GetRequest(ctx context.Context, id string) (*model.ServiceRecord, error) {
	body := fmt.Sprintf(`<request>
	<serviceRequestId>%s</serviceRequestId>
</request>`, xmlEscape(id))

	data, err := b.post(ctx, "/serviceRequests/get.aspx", body)
	if err != nil {
		return nil, fmt.Errorf("get service request %s: %w", id, err)
	}

	records, err := ParseServiceRequests(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("service request %s not found", id)
	}
	return &records[0], nil
}

// ParseServiceRequests extracts every <serviceRequest> element from a
// response document, skipping records without an id.
func ParseServiceRequests(data []byte) ([]model.ServiceRecord, error) {
	var records []model.ServiceRecord

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse service request xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "serviceRequest" {
			continue
		}

		var sr serviceRequestXML
		if err := decoder.DecodeElement(&sr, &start); err != nil {
			return nil, fmt.Errorf("decode serviceRequest: %w", err)
		}
		if sr.ID == "" {
			slog.Warn("skipping service request without serviceRequestId")
			continue
		}
		records = append(records, sr.toRecord())
	}
	return records, nil
}

const assignmentDateLayout = "2006-01-02T15:04:05"

// ListAssignments fetches the assignments scheduled in [start, end].
func (b *BlueFolder) ListAssignments(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	body := fmt.Sprintf(`<request>
	<serviceRequestAssignmentList>
		<dateRangeStart>%s</dateRangeStart>
		<dateRangeEnd>%s</dateRangeEnd>
	</serviceRequestAssignmentList>
</request>`,
		start.Format(assignmentDateLayout), end.Format(assignmentDateLayout))

	data, err := b.post(ctx, "/serviceRequests/getAssignmentList.aspx", body)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return ParseAssignments(data)
}

// ParseAssignments extracts every <serviceRequestAssignment> element. The
// element's children vary by account configuration, so each child tag is
// kept verbatim as a field; the nested <assignedTo><userId> is flattened
// to assignedUserId. Records without an assignmentId are skipped with a
// warning.
func ParseAssignments(data []byte) ([]model.Assignment, error) {
	var assignments []model.Assignment

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse assignment xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "serviceRequestAssignment" {
			continue
		}

		a, err := decodeAssignment(decoder)
		if err != nil {
			return nil, err
		}
		if a.ID() == "" {
			slog.Warn("skipping assignment without assignmentId")
			continue
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// decodeAssignment reads the children of a <serviceRequestAssignment>
// element into a flat string map until the closing tag.
func decodeAssignment(decoder *xml.Decoder) (model.Assignment, error) {
	a := make(model.Assignment)
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("decode assignment: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "assignedTo" {
				var assigned struct {
					UserID string `xml:"userId"`
				}
				if err := decoder.DecodeElement(&assigned, &el); err != nil {
					return nil, fmt.Errorf("decode assignedTo: %w", err)
				}
				a[model.FieldAssignedUserID] = assigned.UserID
				continue
			}
			var value string
			if err := decoder.DecodeElement(&value, &el); err != nil {
				return nil, fmt.Errorf("decode assignment field %s: %w", el.Name.Local, err)
			}
			a[el.Name.Local] = value
		case xml.EndElement:
			return a, nil
		}
	}
}

// UpdateStatus sets the status on a service request.
func (b *BlueFolder) UpdateStatus(ctx context.Context, id, status string) error {
	body := fmt.Sprintf(`<request>
	<serviceRequest>
		<serviceRequestId>%s</serviceRequestId>
		<status>%s</status>
	</serviceRequest>
</request>`, xmlEscape(id), xmlEscape(status))

	if _, err := b.post(ctx, "/serviceRequests/update.aspx", body); err != nil {
		return fmt.Errorf("update status of %s: %w", id, err)
	}
	return nil
}

// AddComment appends a comment to a service request.
func (b *BlueFolder) AddComment(ctx context.Context, id, text string) error {
	body := fmt.Sprintf(`<request>
	<serviceRequestComment>
		<serviceRequestId>%s</serviceRequestId>
		<comment>%s</comment>
	</serviceRequestComment>
</request>`, xmlEscape(id), xmlEscape(text))

	if _, err := b.post(ctx, "/serviceRequests/comments/add.aspx", body); err != nil {
		return fmt.Errorf("add comment to %s: %w", id, err)
	}
	return nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails on a failing writer; bytes.Buffer never does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
