package todo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codexcore/runtime/internal/logging"
)

// Store is a single-writer, whole-file JSON to-do store. Concurrent
// readers may race and observe an earlier snapshot; callers are expected to
// serialize writers.
type Store struct {
	mu sync.Mutex

	path            string
	filesDirEnabled bool
	filesRoot       string // <workspace>/.codex/todos
	now             Clock
	logger          logging.Logger

	items []*Item // insertion order
}

// Option customizes Store construction.
type Option func(*Store)

// WithClock overrides the store's time source (tests).
func WithClock(c Clock) Option {
	return func(s *Store) { s.now = c }
}

// WithFilesDir enables per-item file writes under
// <workspace>/.codex/todos/<date>/<session_id>/<NNN>-<uuid>, disabled by
// default.
func WithFilesDir(root string) Option {
	return func(s *Store) {
		s.filesDirEnabled = true
		s.filesRoot = root
	}
}

// Open loads path (if it exists) into a new Store. A missing file is not an
// error: the store starts empty.
func Open(path string, logger logging.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		now:    time.Now,
		logger: logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("todo: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	var items []*Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("todo: parse %s: %w", s.path, err)
	}
	s.items = items
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("todo: create store dir: %w", err)
	}
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("todo: marshal store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("todo: write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

// Add creates a fresh Item with a new UUID, status open, and
// created_at == updated_at == now, persists the store, and returns the
// item.
func (s *Store) Add(sessionID, date string, taskNumber int, title, description string, files, tags []string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	item := &Item{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Date:        date,
		TaskNumber:  taskNumber,
		Title:       title,
		Description: description,
		Files:       files,
		Tags:        tags,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items = append(s.items, item)
	if err := s.save(); err != nil {
		return nil, err
	}
	if s.filesDirEnabled {
		if err := s.writeItemFile(item); err != nil {
			s.logger.Warn("todo: failed to write item file for %s: %v", item.ID, err)
		}
	}
	return item, nil
}

// SetStatus updates an item's status and stamps updated_at. Fails with
// ErrNotFound if id is unknown.
func (s *Store) SetStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(id)
	if item == nil {
		return &ErrNotFound{ID: id}
	}
	item.Status = status
	item.UpdatedAt = s.now().UTC()
	return s.save()
}

// Remove deletes an item. Fails with ErrNotFound if id is unknown.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.save()
		}
	}
	return &ErrNotFound{ID: id}
}

// List returns a snapshot of all items in insertion order.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	for i, item := range s.items {
		out[i] = *item
	}
	return out
}

// OpenOrInProgress returns items whose status is open or in_progress,
// sorted by (session_id, date, task_number) for deterministic output —
// consumed by the Compactor's to-do-reference scoring signal.
func (s *Store) OpenOrInProgress() []Item {
	all := s.List()
	out := make([]Item, 0, len(all))
	for _, item := range all {
		if item.Status == StatusOpen || item.Status == StatusInProgress {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionID != out[j].SessionID {
			return out[i].SessionID < out[j].SessionID
		}
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TaskNumber < out[j].TaskNumber
	})
	return out
}

func (s *Store) find(id string) *Item {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (s *Store) writeItemFile(item *Item) error {
	dir := filepath.Join(s.filesRoot, item.Date, item.SessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%03d-%s", item.TaskNumber, item.ID)
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
