package journal

import (
	"encoding/json"
	"os"

	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// auditFilePerm keeps the audit trail readable only by the owner.
const auditFilePerm = 0o600

// appendAudit appends one record as a JSON line to the audit trail and syncs
// it to disk. The trail is append-only; nothing ever rewrites it, including
// undo, which appends its own entry instead of erasing the undone one.
// Caller holds r.mu.
func (r *Recorder) appendAudit(record *domain.OperationRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return ledgererrors.Wrap(err, "marshal audit record")
	}
	line = append(line, '\n')

	f, err := os.OpenFile(r.auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, auditFilePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return ledgererrors.Wrap(err, "open audit trail")
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return ledgererrors.Wrap(err, "append audit record")
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return ledgererrors.Wrap(err, "sync audit trail")
	}
	return f.Close()
}

// ReadAudit loads every record from the audit trail, oldest first. Lines that
// fail to parse are skipped so one corrupt entry cannot hide the rest of the
// trail.
func (r *Recorder) ReadAudit() ([]*domain.OperationRecord, error) {
	data, err := os.ReadFile(r.auditPath) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ledgererrors.Wrap(err, "read audit trail")
	}

	var records []*domain.OperationRecord
	start := 0
	for i := 0; i <= len(data); i++ {
		if i < len(data) && data[i] != '\n' {
			continue
		}
		line := data[start:i]
		start = i + 1
		if len(line) == 0 {
			continue
		}
		var record domain.OperationRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}
