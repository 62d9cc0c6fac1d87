package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// taskFilePath returns the JSON file path for a task id. IDs are validated
// UUIDs before they reach here, so the path cannot escape the tasks dir.
func (s *Store) taskFilePath(id string) string {
	return filepath.Join(s.tasksDir, id+".json")
}

// persist writes the task file atomically. Caller holds s.mu.
func (s *Store) persist(task *domain.Task) error {
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return ledgererrors.Wrapf(err, "marshal task %q", task.ID)
	}
	if err := atomicWrite(s.taskFilePath(task.ID), data); err != nil {
		return ledgererrors.Wrapf(err, "write task %q", task.ID)
	}
	return nil
}

// removeFile deletes the task's JSON file. Caller holds s.mu.
func (s *Store) removeFile(id string) error {
	if err := os.Remove(s.taskFilePath(id)); err != nil && !os.IsNotExist(err) {
		return ledgererrors.Wrapf(err, "remove task file %q", id)
	}
	return nil
}

// load reads every task file under the tasks directory into memory and
// rebuilds the insertion-ordered index by creation time (id as tiebreaker,
// so the order is stable across restarts).
func (s *Store) load() error {
	entries, err := os.ReadDir(s.tasksDir)
	if err != nil {
		return ledgererrors.Wrap(err, "read tasks directory")
	}

	loaded := make([]*domain.Task, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.tasksDir, entry.Name())
		data, err := os.ReadFile(path) //#nosec G304 -- path is inside the ledger's own tasks dir
		if err != nil {
			return ledgererrors.Wrapf(err, "read task file %q", entry.Name())
		}
		var task domain.Task
		if err := json.Unmarshal(data, &task); err != nil {
			return ledgererrors.Wrapf(err, "parse task file %q", entry.Name())
		}
		if err := domain.ValidateID(task.ID); err != nil {
			return ledgererrors.Wrapf(err, "task file %q", entry.Name())
		}
		loaded = append(loaded, &task)
	}

	sort.Slice(loaded, func(i, j int) bool {
		if loaded[i].CreatedAt.Equal(loaded[j].CreatedAt) {
			return loaded[i].ID < loaded[j].ID
		}
		return loaded[i].CreatedAt.Before(loaded[j].CreatedAt)
	})

	for _, task := range loaded {
		s.tasks[task.ID] = task
		s.pos[task.ID] = len(s.order)
		s.order = append(s.order, task.ID)
	}
	return nil
}

// atomicWrite writes data to a file atomically using write-then-fsync-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return ledgererrors.Wrap(err, "create temp file")
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return ledgererrors.Wrap(err, "write data")
	}

	// Sync before rename so a crash cannot leave a truncated task file
	// behind the final name.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return ledgererrors.Wrap(err, "sync file")
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return ledgererrors.Wrap(err, "close file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return ledgererrors.Wrap(err, "rename file")
	}
	return nil
}
