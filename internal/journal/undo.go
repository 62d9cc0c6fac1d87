package journal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// UndoResult describes what an undo reversed: the operation type that was
// undone, the affected task, and the per-field values the undo restored.
type UndoResult struct {
	// TaskID is the task the undone operation touched.
	TaskID string `json:"task_id"`

	// UndoneType is the type of the operation that was reversed.
	UndoneType constants.OperationType `json:"undone_type"`

	// RestoredFields maps field names to the {from, to} values the undo
	// applied (from the undone state back to the restored state). Empty when
	// the undo removed or re-inserted a whole task.
	RestoredFields map[string]domain.FieldDiff `json:"restored_fields,omitempty"`
}

// Undo reverses the most recent recorded operation by restoring its Before
// snapshot verbatim: undo of a create removes the task, undo of a delete
// re-inserts it, everything else swaps the prior state back in. The restore
// bypasses validation so historical states are never re-judged. The undo
// itself is appended to the audit trail but not pushed onto the undo history.
// Undo does not take a cancellation token beyond the store's entry checks;
// half-applied undos are worse than slow ones.
func (r *Recorder) Undo(ctx context.Context) (*UndoResult, error) {
	record, err := r.latest()
	if err != nil {
		return nil, err
	}

	result := &UndoResult{
		TaskID:     record.TaskID,
		UndoneType: record.Type,
	}

	switch {
	case record.Before == nil:
		// The operation created the task; undo removes it.
		if err := r.store.Remove(ctx, record.TaskID); err != nil {
			return nil, ledgererrors.Wrap(err, "undo create")
		}
	default:
		// Covers delete (re-insert) and in-place mutations (swap back).
		if err := r.store.Restore(ctx, record.Before); err != nil {
			return nil, ledgererrors.Wrap(err, "undo restore")
		}
		if record.After != nil {
			reversed := &domain.OperationRecord{Before: record.After, After: record.Before}
			result.RestoredFields = reversed.Diff()
		}
	}

	r.dropLatest()

	undoRecord := &domain.OperationRecord{
		TaskID:      record.TaskID,
		Before:      record.After,
		After:       record.Before,
		Type:        constants.OpUndo,
		Actor:       record.Actor,
		Description: fmt.Sprintf("undo %s", record.Type),
		RecordedAt:  r.store.Clock().Now().UTC(),
	}

	r.mu.Lock()
	if err := r.appendAudit(undoRecord); err != nil {
		log.Warn().Err(err).Str("task_id", undoRecord.TaskID).Msg("audit append failed")
	}
	subscribers := r.subscribers
	r.mu.Unlock()

	for _, sub := range subscribers {
		sub.OperationCommitted(undoRecord)
	}
	return result, nil
}
