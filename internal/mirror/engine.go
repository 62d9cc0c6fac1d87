package mirror

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/journal"
	"github.com/taskledger/taskledger/internal/ledger"
)

// Strategy selects how detected conflicts are resolved.
type Strategy string

const (
	// StrategyMerge resolves every conflict in favor of the preferred source.
	StrategyMerge Strategy = "merge"

	// StrategyNewest resolves each conflict in favor of whichever side
	// changed more recently: mirror file mtime vs task updated_at.
	StrategyNewest Strategy = "newest"

	// StrategyReport only reports conflicts without changing either side.
	StrategyReport Strategy = "report"
)

// Source names a side of a conflict.
type Source string

const (
	// SourceLedger prefers ledger state.
	SourceLedger Source = "ledger"

	// SourceMirror prefers the human-edited mirror file.
	SourceMirror Source = "mirror"
)

// ConflictType classifies a detected divergence.
type ConflictType string

const (
	// ConflictTitleMismatch means the mirror title differs from the ledger's.
	ConflictTitleMismatch ConflictType = "title_mismatch"

	// ConflictStatusMismatch means the mirror section or checkbox disagrees
	// with the ledger status.
	ConflictStatusMismatch ConflictType = "status_mismatch"

	// ConflictDescriptionMismatch means the quoted description differs.
	ConflictDescriptionMismatch ConflictType = "description_mismatch"

	// ConflictMissingInMirror means an active ledger task has no mirror line.
	ConflictMissingInMirror ConflictType = "missing_in_mirror"

	// ConflictUnknownTask means the mirror lists an id the ledger doesn't have.
	ConflictUnknownTask ConflictType = "unknown_task"
)

// Conflict is one field-level divergence between ledger and mirror.
type Conflict struct {
	TaskID      string       `json:"task_id"`
	Field       string       `json:"field"`
	Type        ConflictType `json:"type"`
	LedgerValue string       `json:"ledger_value,omitempty"`
	MirrorValue string       `json:"mirror_value,omitempty"`
}

// Resolution reports how one conflict was handled.
type Resolution struct {
	Conflict Conflict `json:"conflict"`

	// Action is one of "kept_ledger", "applied_mirror", "created_from_mirror",
	// or "reported".
	Action string `json:"action"`
}

// Engine owns the mirror file: it regenerates it after ledger mutations,
// fingerprints the generated content, and detects and resolves divergence
// introduced by human edits.
type Engine struct {
	rec  *journal.Recorder
	path string

	lastHash string // fingerprint of the last mirror content this engine observed
}

// NewEngine builds an Engine writing the mirror at path. Resolutions that
// change the ledger go through the recorder so they are undoable and audited.
func NewEngine(rec *journal.Recorder, path string) *Engine {
	return &Engine{rec: rec, path: path}
}

// Path returns the mirror file path.
func (e *Engine) Path() string {
	return e.path
}

// Fingerprint returns the SHA-256 hex of the last mirror content the engine
// wrote or observed, or an empty string before either.
func (e *Engine) Fingerprint() string {
	return e.lastHash
}

// primeFingerprint seeds the fingerprint from the on-disk mirror so edits made
// after this point become detectable. Returns false when the mirror is missing.
func (e *Engine) primeFingerprint() (bool, error) {
	data, err := os.ReadFile(e.path) //#nosec G304 -- mirror path is fixed at engine construction
	if err != nil {
		if os.IsNotExist(err) {
			e.lastHash = ""
			return false, nil
		}
		return false, ledgererrors.Wrap(ledgererrors.ErrMirrorUnreadable, err.Error())
	}
	e.lastHash = fingerprint(data)
	return true, nil
}

// WriteMirror regenerates the mirror from ledger state and writes it
// atomically, recording the content fingerprint.
func (e *Engine) WriteMirror(ctx context.Context) error {
	tasks, err := e.rec.Store().All(ctx)
	if err != nil {
		return err
	}
	content := Render(tasks)
	if err := writeFileAtomic(e.path, []byte(content)); err != nil {
		return ledgererrors.Wrap(err, "write mirror")
	}
	e.lastHash = fingerprint([]byte(content))
	return nil
}

// DetectExternalEdit re-hashes the on-disk mirror and reports whether it
// differs from what the engine last wrote. A missing file counts as an
// external edit; before the first write nothing is detectable.
func (e *Engine) DetectExternalEdit() (bool, error) {
	if e.lastHash == "" {
		return false, nil
	}
	data, err := os.ReadFile(e.path) //#nosec G304 -- mirror path is fixed at engine construction
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, ledgererrors.Wrap(ledgererrors.ErrMirrorUnreadable, err.Error())
	}
	return fingerprint(data) != e.lastHash, nil
}

// DetectConflicts parses the on-disk mirror and compares it field by field
// against the ledger. An unreadable or missing mirror degrades to "no
// conflicts detectable" with a warning rather than an error, per the rule
// that sync must never take the ledger down with it.
func (e *Engine) DetectConflicts(ctx context.Context) ([]Conflict, []string, error) {
	data, err := os.ReadFile(e.path) //#nosec G304 -- mirror path is fixed at engine construction
	if err != nil {
		warning := "mirror missing, conflicts not detectable"
		if !os.IsNotExist(err) {
			warning = "mirror unreadable, conflicts not detectable: " + err.Error()
		}
		return nil, []string{warning}, nil
	}

	parsed := Parse(string(data))
	warnings := parsed.Warnings

	tasks, err := e.rec.Store().All(ctx)
	if err != nil {
		return nil, warnings, err
	}
	byID := make(map[string]*domain.Task, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}

	var conflicts []Conflict
	seen := make(map[string]struct{}, len(parsed.Entries))
	for _, entry := range parsed.Entries {
		seen[entry.ID] = struct{}{}
		task, ok := byID[entry.ID]
		if !ok {
			conflicts = append(conflicts, Conflict{
				TaskID:      entry.ID,
				Field:       "task",
				Type:        ConflictUnknownTask,
				MirrorValue: entry.Title,
			})
			continue
		}
		if entry.Title != task.Title {
			conflicts = append(conflicts, Conflict{
				TaskID:      task.ID,
				Field:       "title",
				Type:        ConflictTitleMismatch,
				LedgerValue: task.Title,
				MirrorValue: entry.Title,
			})
		}
		if entry.Status != task.Status {
			conflicts = append(conflicts, Conflict{
				TaskID:      task.ID,
				Field:       "status",
				Type:        ConflictStatusMismatch,
				LedgerValue: string(task.Status),
				MirrorValue: string(entry.Status),
			})
		}
		if entry.Description != task.Description {
			conflicts = append(conflicts, Conflict{
				TaskID:      task.ID,
				Field:       "description",
				Type:        ConflictDescriptionMismatch,
				LedgerValue: task.Description,
				MirrorValue: entry.Description,
			})
		}
	}
	for _, task := range tasks {
		if task.Archived {
			continue
		}
		if _, ok := seen[task.ID]; !ok {
			conflicts = append(conflicts, Conflict{
				TaskID:      task.ID,
				Field:       "task",
				Type:        ConflictMissingInMirror,
				LedgerValue: task.Title,
			})
		}
	}
	return conflicts, warnings, nil
}

// ResolveConflicts applies the given strategy to detected conflicts. Ledger
// changes go through the recorder as resolve_conflict operations. Deleting a
// task because its mirror line disappeared is never automatic; those
// conflicts are only reported. On success the mirror is regenerated so both
// sides converge.
func (e *Engine) ResolveConflicts(ctx context.Context, conflicts []Conflict, strategy Strategy, prefer Source) ([]Resolution, error) {
	switch strategy {
	case StrategyMerge, StrategyNewest, StrategyReport:
	default:
		return nil, ledgererrors.Wrapf(ledgererrors.ErrUnknownStrategy, "%q", strategy)
	}
	if strategy == StrategyMerge && prefer != SourceLedger && prefer != SourceMirror {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrInvalidArgument, "unknown source %q", prefer)
	}

	if strategy == StrategyReport {
		resolutions := make([]Resolution, 0, len(conflicts))
		for _, c := range conflicts {
			resolutions = append(resolutions, Resolution{Conflict: c, Action: "reported"})
		}
		return resolutions, nil
	}

	// Group field-level mirror wins per task so one resolution update covers
	// all of a task's conflicting fields.
	updates := make(map[string]ledger.TaskUpdate)
	resolutions := make([]Resolution, 0, len(conflicts))

	for _, c := range conflicts {
		winner, err := e.winner(ctx, c, strategy, prefer)
		if err != nil {
			return nil, err
		}

		switch c.Type {
		case ConflictTitleMismatch, ConflictStatusMismatch, ConflictDescriptionMismatch:
			if winner == SourceLedger {
				resolutions = append(resolutions, Resolution{Conflict: c, Action: "kept_ledger"})
				continue
			}
			update := updates[c.TaskID]
			switch c.Type {
			case ConflictTitleMismatch:
				title := c.MirrorValue
				update.Title = &title
			case ConflictStatusMismatch:
				status := constants.TaskStatus(c.MirrorValue)
				update.Status = &status
			case ConflictDescriptionMismatch:
				description := c.MirrorValue
				update.Description = &description
			case ConflictMissingInMirror, ConflictUnknownTask:
				// Handled in the outer switch.
			}
			updates[c.TaskID] = update
			resolutions = append(resolutions, Resolution{Conflict: c, Action: "applied_mirror"})

		case ConflictUnknownTask:
			if winner == SourceLedger {
				// The rewrite below drops the unknown line.
				resolutions = append(resolutions, Resolution{Conflict: c, Action: "kept_ledger"})
				continue
			}
			_, err := e.rec.Create(ctx, ledger.CreateRequest{
				ID:    c.TaskID,
				Title: c.MirrorValue,
			})
			if err != nil {
				return resolutions, ledgererrors.Wrapf(err, "create task %q from mirror", c.TaskID)
			}
			resolutions = append(resolutions, Resolution{Conflict: c, Action: "created_from_mirror"})

		case ConflictMissingInMirror:
			resolutions = append(resolutions, Resolution{Conflict: c, Action: "reported"})
		}
	}

	for taskID, update := range updates {
		if update.IsEmpty() {
			continue
		}
		if _, err := e.rec.ApplyResolution(ctx, taskID, update, "apply mirror edits"); err != nil {
			return resolutions, ledgererrors.Wrapf(err, "resolve task %q", taskID)
		}
	}

	if err := e.WriteMirror(ctx); err != nil {
		return resolutions, err
	}
	return resolutions, nil
}

// winner decides which side a conflict goes to under the given strategy.
func (e *Engine) winner(ctx context.Context, c Conflict, strategy Strategy, prefer Source) (Source, error) {
	if strategy == StrategyMerge {
		return prefer, nil
	}

	// Newest wins: compare the mirror file's mtime against the task's
	// updated_at. Conflicts without a ledger task always favor the mirror.
	info, err := os.Stat(e.path)
	if err != nil {
		return SourceLedger, nil
	}
	if c.Type == ConflictUnknownTask {
		return SourceMirror, nil
	}
	task, err := e.rec.Store().Get(ctx, c.TaskID)
	if err != nil {
		return SourceLedger, err
	}
	if info.ModTime().After(task.UpdatedAt) {
		return SourceMirror, nil
	}
	return SourceLedger, nil
}

// Watch polls for external mirror edits every interval and invokes onChange
// with the detected conflicts (possibly none, when the edit was compatible).
// The fingerprint is primed from the on-disk mirror before the first tick and
// re-armed after every detection, so each edit is reported exactly once. It
// blocks until ctx is canceled.
func (e *Engine) Watch(ctx context.Context, interval time.Duration, onChange func(conflicts []Conflict, warnings []string)) error {
	log := zerolog.Ctx(ctx)
	if _, err := e.primeFingerprint(); err != nil {
		log.Warn().Err(err).Msg("mirror fingerprint unavailable")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if e.lastHash == "" {
				// The mirror was missing on the previous pass; it showing up
				// is the first detectable edit.
				primed, err := e.primeFingerprint()
				if err != nil {
					log.Warn().Err(err).Msg("mirror check failed")
				}
				if !primed {
					continue
				}
			} else {
				edited, err := e.DetectExternalEdit()
				if err != nil {
					log.Warn().Err(err).Msg("mirror check failed")
					continue
				}
				if !edited {
					continue
				}
				if _, err := e.primeFingerprint(); err != nil {
					log.Warn().Err(err).Msg("mirror check failed")
				}
			}
			conflicts, warnings, err := e.DetectConflicts(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("conflict detection failed")
				continue
			}
			onChange(conflicts, warnings)
		}
	}
}

// fingerprint returns the SHA-256 hex digest of content.
func fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// writeFileAtomic writes the mirror with write-then-fsync-then-rename so a
// crash can't leave a half-written file where humans edit.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) //#nosec G304,G302 -- mirror is a human-readable project file
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
