// Package schedule implements the appointment confirmation pipeline:
// snapshot diffing of polled assignments, the at-most-once sent ledger,
// and the cycle runner that ties them to the mailbox and work-order
// collaborators.
package schedule

import (
	"log/slog"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

// DiffResult partitions a polled assignment list relative to the previous
// snapshot. Assignments present in both and field-for-field equal appear in
// neither bucket. Ordering follows the input iteration order per bucket.
type DiffResult struct {
	New     []model.Assignment
	Updated []model.Assignment
}

// Diff classifies every assignment in current as new or updated against
// previous. An empty or unavailable previous snapshot is the bootstrap
// case: everything in current is new. Assignments present only in previous
// (disappeared) are not reported; deletion handling is a separate
// reconciliation concern.
//
// Equality is strict over the full field set, so a field appearing,
// disappearing, or changing value all classify the assignment as updated.
// Records without an assignment id are skipped with a warning rather than
// failing the batch.
func Diff(current, previous []model.Assignment) DiffResult {
	var result DiffResult

	oldByID := make(map[string]model.Assignment, len(previous))
	for _, a := range previous {
		if id := a.ID(); id != "" {
			oldByID[id] = a
		}
	}

	if len(oldByID) == 0 {
		for _, a := range current {
			if a.ID() == "" {
				slog.Warn("skipping assignment without assignmentId")
				continue
			}
			result.New = append(result.New, a)
		}
		return result
	}

	for _, a := range current {
		id := a.ID()
		if id == "" {
			slog.Warn("skipping assignment without assignmentId")
			continue
		}

		old, ok := oldByID[id]
		switch {
		case !ok:
			slog.Info("new assignment", "assignmentId", id)
			result.New = append(result.New, a)
		case !a.Equal(old):
			for _, c := range a.ChangedFields(old) {
				slog.Info("assignment field changed",
					"assignmentId", id, "field", c.Field, "old", c.Old, "new", c.New)
			}
			result.Updated = append(result.Updated, a)
		}
	}

	return result
}
