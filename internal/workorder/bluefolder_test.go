package workorder

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceRequestListXML = `<?xml version="1.0" encoding="utf-8"?>
<response status="ok">
	<serviceRequestList>
		<serviceRequest>
			<serviceRequestId>1001</serviceRequestId>
			<externalId>PO-77</externalId>
			<customerName>Gold Gym Downtown</customerName>
			<customerContactName>Jane Doe</customerContactName>
			<customerContactEmail>jane@golds.example; frontdesk@golds.example</customerContactEmail>
			<customerContactPhone>555-0100</customerContactPhone>
			<customerContactPhoneMobile>555-0101</customerContactPhoneMobile>
			<description>Treadmill belt slipping</description>
			<dateTimeCreated>2026-03-01T09:30:00</dateTimeCreated>
			<status>open</status>
			<customerLocationStreetAddress>12 Main St</customerLocationStreetAddress>
			<customerLocationCity>Austin</customerLocationCity>
			<customerLocationState>TX</customerLocationState>
		</serviceRequest>
		<serviceRequest>
			<serviceRequestId></serviceRequestId>
			<customerName>Broken Record</customerName>
		</serviceRequest>
		<serviceRequest>
			<serviceRequestId>1002</serviceRequestId>
			<customerName>Iron Works Gym</customerName>
			<status>open</status>
		</serviceRequest>
	</serviceRequestList>
</response>`

func TestParseServiceRequests(t *testing.T) {
	records, err := ParseServiceRequests([]byte(serviceRequestListXML))
	require.NoError(t, err)
	require.Len(t, records, 2, "record without serviceRequestId must be skipped")

	first := records[0]
	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, "PO-77", first.ExternalID)
	assert.Equal(t, "Gold Gym Downtown", first.CustomerName)
	assert.Equal(t, "Jane Doe", first.ContactName)
	assert.Equal(t, []string{"jane@golds.example", "frontdesk@golds.example"}, first.EmailAddresses())
	assert.Equal(t, "555-0100", first.ContactPhone)
	assert.Equal(t, "555-0101", first.ContactPhoneMobile)
	assert.Equal(t, "12 Main St Austin TX", first.LocationLine())
	assert.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), first.CreatedAt())

	assert.Equal(t, "1002", records[1].ID)
}

func TestParseServiceRequests_Malformed(t *testing.T) {
	_, err := ParseServiceRequests([]byte(`<response><serviceRequest><serviceRequestId>1</serviceRequestId>`))
	assert.Error(t, err)
}

const assignmentListXML = `<?xml version="1.0" encoding="utf-8"?>
<response status="ok">
	<serviceRequestAssignmentList>
		<serviceRequestAssignment>
			<assignmentId>A1</assignmentId>
			<serviceRequestId>1001</serviceRequestId>
			<assignedTo>
				<userId>42</userId>
			</assignedTo>
			<startDate>2026-03-05T08:00:00</startDate>
			<endDate>2026-03-05T10:00:00</endDate>
			<notes>bring spare belt</notes>
		</serviceRequestAssignment>
		<serviceRequestAssignment>
			<serviceRequestId>1002</serviceRequestId>
		</serviceRequestAssignment>
		<serviceRequestAssignment>
			<assignmentId>A2</assignmentId>
			<serviceRequestId>1002</serviceRequestId>
		</serviceRequestAssignment>
	</serviceRequestAssignmentList>
</response>`

func TestParseAssignments(t *testing.T) {
	assignments, err := ParseAssignments([]byte(assignmentListXML))
	require.NoError(t, err)
	require.Len(t, assignments, 2, "assignment without assignmentId must be skipped")

	a := assignments[0]
	assert.Equal(t, "A1", a.ID())
	assert.Equal(t, "1001", a.ServiceRequestID())
	assert.Equal(t, "42", a.AssignedUserID(), "assignedTo>userId must flatten to assignedUserId")
	assert.Equal(t, "2026-03-05T08:00:00", a.StartDate())
	assert.Equal(t, "2026-03-05T10:00:00", a.EndDate())
	assert.Equal(t, "bring spare belt", a["notes"], "unknown child tags are kept verbatim")

	assert.Equal(t, "A2", assignments[1].ID())
}

func TestParseAssignments_Empty(t *testing.T) {
	assignments, err := ParseAssignments([]byte(`<response status="ok"><serviceRequestAssignmentList/></response>`))
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestBlueFolder_ListOpenRequests(t *testing.T) {
	var gotAuth, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		assert.Equal(t, "/serviceRequests/list.aspx", r.URL.Path)
		w.Write([]byte(serviceRequestListXML))
	}))
	defer srv.Close()

	client := NewBlueFolder("secret-token", srv.URL)
	records, err := client.ListOpenRequests(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// base64("secret-token:x")
	assert.Equal(t, "Basic c2VjcmV0LXRva2VuOng=", gotAuth)
	assert.Equal(t, "text/xml", gotContentType)
	assert.Contains(t, gotBody, "<listType>basic</listType>")
	assert.Contains(t, gotBody, "<status>open</status>")
}

func TestBlueFolder_ListAssignments_DateRange(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		assert.Equal(t, "/serviceRequests/getAssignmentList.aspx", r.URL.Path)
		w.Write([]byte(assignmentListXML))
	}))
	defer srv.Close()

	client := NewBlueFolder("t", srv.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	assignments, err := client.ListAssignments(context.Background(), start, end)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)

	assert.Contains(t, gotBody, "<dateRangeStart>2026-03-01T00:00:00</dateRangeStart>")
	assert.Contains(t, gotBody, "<dateRangeEnd>2026-03-31T23:59:59</dateRangeEnd>")
}

func TestBlueFolder_UpdateStatus_EscapesXML(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`<response status="ok"/>`))
	}))
	defer srv.Close()

	client := NewBlueFolder("t", srv.URL)
	err := client.UpdateStatus(context.Background(), "1001", "Pending <Reschedule>")
	require.NoError(t, err)
	assert.Contains(t, gotBody, "<status>Pending &lt;Reschedule&gt;</status>")
}

func TestBlueFolder_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewBlueFolder("t", srv.URL)
	_, err := client.ListOpenRequests(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
