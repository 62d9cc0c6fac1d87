// Package ledger implements the task store: the canonical in-memory task map
// with an insertion-ordered index, persisted as one JSON file per task with
// atomic writes, guarded by an exclusive file lock so only one process writes
// the ledger at a time.
package ledger

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taskledger/taskledger/internal/clock"
	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/ctxutil"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/flock"
)

// LockTimeout is the maximum duration to wait for the ledger lock.
const LockTimeout = 5 * time.Second

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// Store is the canonical task store for one project. All mutations go through
// a single write path; reads are served from memory behind an RWMutex.
type Store struct {
	projectRoot string
	home        string // projectRoot/.taskledger
	tasksDir    string // home/tasks
	clk         clock.Clock
	lockTimeout time.Duration

	mu     sync.RWMutex
	tasks  map[string]*domain.Task
	order  []string       // task ids in insertion (creation) order
	pos    map[string]int // id -> index into order
	gen    uint64         // bumped on every committed mutation
	lock   *os.File
	closed bool
}

// Option configures a Store at open time.
type Option func(*Store)

// WithClock replaces the wall clock, used by tests and newest-wins resolution.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clk = c }
}

// WithLockTimeout overrides how long Open waits for the ledger lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// Open opens (creating if necessary) the ledger under projectRoot/.taskledger,
// acquires the exclusive ledger lock, and loads all task files into memory.
// The caller must Close the store to release the lock.
func Open(ctx context.Context, projectRoot string, opts ...Option) (*Store, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if projectRoot == "" {
		return nil, ledgererrors.Wrap(ledgererrors.ErrEmptyValue, "project root")
	}
	info, err := os.Stat(projectRoot)
	if err != nil || !info.IsDir() {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrProjectPathNotFound, "%q", projectRoot)
	}

	home := filepath.Join(projectRoot, constants.LedgerHome)
	s := &Store{
		projectRoot: projectRoot,
		home:        home,
		tasksDir:    filepath.Join(home, constants.TasksDir),
		clk:         clock.RealClock{},
		lockTimeout: LockTimeout,
		tasks:       make(map[string]*domain.Task),
		pos:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.tasksDir, dirPerm); err != nil {
		return nil, ledgererrors.Wrap(err, "create ledger directory")
	}

	lockFile, err := flock.Acquire(ctx, filepath.Join(home, constants.LockFileName), s.lockTimeout)
	if err != nil {
		return nil, ledgererrors.Wrap(err, "acquire ledger lock")
	}
	s.lock = lockFile

	if err := s.load(); err != nil {
		_ = flock.Release(s.lock)
		return nil, err
	}
	return s, nil
}

// Close releases the ledger lock. Subsequent operations fail with
// ErrLedgerClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.lock == nil {
		return nil
	}
	if err := flock.Release(s.lock); err != nil {
		return ledgererrors.Wrap(err, "release ledger lock")
	}
	return nil
}

// ProjectRoot returns the project root this store was opened against.
func (s *Store) ProjectRoot() string {
	return s.projectRoot
}

// Home returns the .taskledger directory path for this store.
func (s *Store) Home() string {
	return s.home
}

// Clock returns the store's clock, shared with collaborators that need
// consistent time (newest-wins conflict resolution).
func (s *Store) Clock() clock.Clock {
	return s.clk
}

// Generation returns a counter bumped on every committed mutation. Readers
// such as the search index use it to detect staleness.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Len returns the number of tasks in the ledger, archived included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get retrieves a task by ID. Archived tasks remain addressable.
// Returns ErrInvalidTaskID for malformed ids and ErrTaskNotFound for
// well-formed ids that don't exist.
func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}
	task, ok := s.tasks[id]
	if !ok {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}
	return task.Clone(), nil
}

// List returns one page of tasks in stable insertion order, applying the
// request's filters. Total counts all matches across pages.
func (s *Store) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrValueOutOfRange,
			"page size %d exceeds maximum %d", pageSize, constants.MaxPageSize)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}

	matched := make([]*domain.Task, 0, len(s.order))
	for _, id := range s.order {
		task := s.tasks[id]
		if !matchesList(task, req) {
			continue
		}
		matched = append(matched, task)
	}

	result := &ListResult{
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
		Tasks:    []*domain.Task{},
	}

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return result, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	result.Tasks = make([]*domain.Task, 0, end-start)
	for _, task := range matched[start:end] {
		result.Tasks = append(result.Tasks, task.Clone())
	}
	return result, nil
}

// All returns clones of every task in insertion order, archived included.
// Used by the search engine and the mirror renderer.
func (s *Store) All(ctx context.Context) ([]*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}
	out := make([]*domain.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	return out, nil
}

// BlockedBy returns the IDs of non-archived tasks whose dependencies include
// id, in insertion order. It is the derived inverse of the dependency
// relation and is never persisted.
func (s *Store) BlockedBy(ctx context.Context, id string) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}
	if _, ok := s.tasks[id]; !ok {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}
	return s.dependents(id), nil
}

// dependents scans for non-archived tasks depending on id. Callers must hold
// at least a read lock.
func (s *Store) dependents(id string) []string {
	var out []string
	for _, otherID := range s.order {
		other := s.tasks[otherID]
		if other.ID == id || other.Archived {
			continue
		}
		if other.HasDependency(id) {
			out = append(out, other.ID)
		}
	}
	return out
}

// matchesList applies the ListRequest filters to a task.
func matchesList(task *domain.Task, req ListRequest) bool {
	if task.Archived && !req.IncludeArchived {
		return false
	}
	if req.Status != nil && task.Status != *req.Status {
		return false
	}
	if req.Priority != nil && task.Priority != *req.Priority {
		return false
	}
	if req.Tag != "" && !task.HasTag(req.Tag) {
		return false
	}
	if req.Assignee != "" && task.Assignee != req.Assignee {
		return false
	}
	if req.Category != "" && task.Category != req.Category {
		return false
	}
	return true
}
