package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

func assignment(id, srID, user, start string) model.Assignment {
	a := model.Assignment{
		model.FieldAssignmentID:     id,
		model.FieldServiceRequestID: srID,
		model.FieldAssignedUserID:   user,
	}
	if start != "" {
		a[model.FieldStartDate] = start
	}
	return a
}

func TestDiff_Bootstrap(t *testing.T) {
	current := []model.Assignment{
		assignment("A1", "1001", "42", "2026-03-05T08:00:00"),
		assignment("A2", "1002", "43", ""),
	}

	got := Diff(current, nil)
	assert.Len(t, got.New, 2, "empty snapshot makes everything new")
	assert.Empty(t, got.Updated)
}

func TestDiff_Idempotent(t *testing.T) {
	current := []model.Assignment{
		assignment("A1", "1001", "42", "2026-03-05T08:00:00"),
	}

	got := Diff(current, current)
	assert.Empty(t, got.New)
	assert.Empty(t, got.Updated)
}

func TestDiff_StatusChange(t *testing.T) {
	prev := []model.Assignment{
		{model.FieldAssignmentID: "A1", model.FieldServiceRequestID: "1001", "status": "open"},
	}
	current := []model.Assignment{
		{model.FieldAssignmentID: "A1", model.FieldServiceRequestID: "1001", "status": "closed"},
	}

	got := Diff(current, prev)
	assert.Empty(t, got.New)
	require.Len(t, got.Updated, 1)
	assert.Equal(t, "A1", got.Updated[0].ID())
}

func TestDiff_FieldAppearsOrDisappears(t *testing.T) {
	base := model.Assignment{model.FieldAssignmentID: "A1"}
	withNotes := model.Assignment{model.FieldAssignmentID: "A1", "notes": "bring belt"}

	got := Diff([]model.Assignment{withNotes}, []model.Assignment{base})
	assert.Len(t, got.Updated, 1, "field appearing counts as an update")

	got = Diff([]model.Assignment{base}, []model.Assignment{withNotes})
	assert.Len(t, got.Updated, 1, "field disappearing counts as an update")
}

func TestDiff_NewAndUpdatedMixed(t *testing.T) {
	prev := []model.Assignment{
		assignment("A1", "1001", "42", "2026-03-05T08:00:00"),
		assignment("A2", "1002", "43", ""),
	}
	current := []model.Assignment{
		assignment("A1", "1001", "42", "2026-03-06T08:00:00"), // start moved
		assignment("A2", "1002", "43", ""),                    // unchanged
		assignment("A3", "1003", "44", ""),                    // brand new
	}

	got := Diff(current, prev)
	require.Len(t, got.New, 1)
	assert.Equal(t, "A3", got.New[0].ID())
	require.Len(t, got.Updated, 1)
	assert.Equal(t, "A1", got.Updated[0].ID())
}

func TestDiff_DisappearedNotReported(t *testing.T) {
	prev := []model.Assignment{
		assignment("A1", "1001", "42", ""),
		assignment("A2", "1002", "43", ""),
	}
	current := []model.Assignment{
		assignment("A1", "1001", "42", ""),
	}

	got := Diff(current, prev)
	assert.Empty(t, got.New)
	assert.Empty(t, got.Updated)
}

func TestDiff_MissingIDSkipped(t *testing.T) {
	current := []model.Assignment{
		{model.FieldServiceRequestID: "1001"}, // no assignment id
		assignment("A1", "1002", "42", ""),
	}

	got := Diff(current, nil)
	require.Len(t, got.New, 1)
	assert.Equal(t, "A1", got.New[0].ID())

	got = Diff(current, []model.Assignment{assignment("A9", "9", "9", "")})
	require.Len(t, got.New, 1)
	assert.Equal(t, "A1", got.New[0].ID())
}
