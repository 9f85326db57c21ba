package reply

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/ai"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

type fakeCompletion struct {
	out    string
	err    error
	prompt string
}

func (f *fakeCompletion) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

type fakeSearch struct {
	docs []Document
	err  error
}

func (f fakeSearch) Search(context.Context, string, int, float64) ([]Document, error) {
	return f.docs, f.err
}

var inbound = mail.Message{
	ID:          "m1",
	ThreadID:    "t1",
	SenderName:  "Jane Doe",
	SenderEmail: "jane@golds.example",
	Subject:     "Treadmill broken",
	Body:        "The belt keeps slipping, can someone come out?",
}

func TestDraftReply(t *testing.T) {
	llm := &fakeCompletion{out: "Hi Jane,\n\nWe can help with that treadmill.\n"}
	g := NewGenerator(llm, fakeSearch{docs: []Document{{Content: "belt tensioning guide", Score: 0.8}}}, "Ron McDonnell, Pronto Gym Services")

	matches := []model.MatchResult{{
		Score:  0.92,
		Record: model.ServiceRecord{ID: "1001", CustomerName: "Gold Gym Downtown", Status: "open"},
	}}

	out, err := g.DraftReply(context.Background(), inbound, ai.CategoryNewServiceRequest, matches)
	require.NoError(t, err)

	assert.Equal(t, "jane@golds.example", out.To)
	assert.Equal(t, "Re: Treadmill broken", out.Subject)
	assert.Equal(t, "Hi Jane,\n\nWe can help with that treadmill.", out.Body)
	assert.Equal(t, "t1", out.ThreadID)

	assert.Contains(t, llm.prompt, "Service Request ID: 1001, Customer: Gold Gym Downtown, Status: open")
	assert.Contains(t, llm.prompt, "belt tensioning guide")
	assert.Contains(t, llm.prompt, "Service type: Repairs")
	assert.Contains(t, llm.prompt, "Sign as Ron McDonnell, Pronto Gym Services.")
}

func TestDraftReply_NoMatches(t *testing.T) {
	llm := &fakeCompletion{out: "Hi there,"}
	g := NewGenerator(llm, nil, "Ops")

	_, err := g.DraftReply(context.Background(), inbound, ai.CategoryGeneralQuestion, nil)
	require.NoError(t, err)
	assert.Contains(t, llm.prompt, "No matching service request found.")
}

func TestDraftReply_SpamSkipped(t *testing.T) {
	llm := &fakeCompletion{out: "should not be called"}
	g := NewGenerator(llm, nil, "Ops")

	out, err := g.DraftReply(context.Background(), inbound, ai.CategoryOther, nil)
	require.NoError(t, err)
	assert.Zero(t, out, "spam category must produce no reply")
	assert.Empty(t, llm.prompt, "spam must not reach the model")
}

func TestDraftReply_SearchFailureIgnored(t *testing.T) {
	llm := &fakeCompletion{out: "Hi there,"}
	g := NewGenerator(llm, fakeSearch{err: errors.New("index offline")}, "Ops")

	_, err := g.DraftReply(context.Background(), inbound, ai.CategoryGeneralQuestion, nil)
	assert.NoError(t, err, "search failure must not block the reply")
}

func TestDraftReply_ModelError(t *testing.T) {
	g := NewGenerator(&fakeCompletion{err: errors.New("boom")}, nil, "Ops")
	_, err := g.DraftReply(context.Background(), inbound, ai.CategoryNewServiceRequest, nil)
	assert.Error(t, err)
}

var assignment = model.Assignment{
	model.FieldAssignmentID:     "A1",
	model.FieldServiceRequestID: "1001",
	model.FieldAssignedUserID:   "42",
	model.FieldStartDate:        "2026-03-05T08:00:00",
	model.FieldEndDate:          "2026-03-05T10:00:00",
}

func TestGenerateConfirmation(t *testing.T) {
	llm := &fakeCompletion{out: "```json\n" + `{
		"subject": "Fitness Equipment Service - Request 1001",
		"body_text": "Your technician arrives between 7:30 and 10:30.",
		"body_html": "<p>Your technician arrives between 7:30 and 10:30.</p>"
	}` + "\n```"}
	g := NewGenerator(llm, nil, "Gerume Bekele, Pronto Gym Services, Inc.")

	subject, body := g.GenerateConfirmation(context.Background(), assignment)
	assert.Equal(t, "Fitness Equipment Service - Request 1001", subject)
	assert.Equal(t, "Your technician arrives between 7:30 and 10:30.", body)

	assert.Contains(t, llm.prompt, "Assignment ID: A1")
	assert.Contains(t, llm.prompt, "Service Request ID: 1001")
	assert.Contains(t, llm.prompt, "Start Date: 2026-03-05T08:00:00")
}

func TestGenerateConfirmation_FallbackOnError(t *testing.T) {
	g := NewGenerator(&fakeCompletion{err: errors.New("boom")}, nil, "Ops")
	subject, body := g.GenerateConfirmation(context.Background(), assignment)
	assert.Equal(t, fallbackConfirmSubject, subject)
	assert.Equal(t, fallbackConfirmBody, body)
}

func TestGenerateConfirmation_FallbackOnBadJSON(t *testing.T) {
	g := NewGenerator(&fakeCompletion{out: "here is your email!"}, nil, "Ops")
	subject, body := g.GenerateConfirmation(context.Background(), assignment)
	assert.Equal(t, fallbackConfirmSubject, subject)
	assert.Equal(t, fallbackConfirmBody, body)
}

func TestFollowUp(t *testing.T) {
	kinds := []ai.ReplyKind{ai.ReplyConfirmed, ai.ReplyQuery, ai.ReplyReschedule, ai.ReplyOther}
	seen := map[string]bool{}
	for _, k := range kinds {
		subject, body := FollowUp(k)
		assert.NotEmpty(t, subject)
		assert.NotEmpty(t, body)
		assert.False(t, seen[subject], "subjects must be distinct per kind")
		seen[subject] = true
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, "SCHEDULED", StatusFor(ai.ReplyConfirmed))
	assert.Equal(t, "CONFIRMATION PENDING", StatusFor(ai.ReplyQuery))
	assert.Equal(t, "RESCHEDULE REQUESTED", StatusFor(ai.ReplyReschedule))
	assert.Empty(t, StatusFor(ai.ReplyOther), "other implies no status change")
}

func TestCommentFor(t *testing.T) {
	for _, k := range []ai.ReplyKind{ai.ReplyConfirmed, ai.ReplyQuery, ai.ReplyReschedule, ai.ReplyOther} {
		assert.NotEmpty(t, CommentFor(k))
	}
}
