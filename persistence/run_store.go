package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/lexcodex/pagemend/framework"
)

// RunStatus enumerates the review lifecycle of a stored run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusApproved RunStatus = "approved"
	RunStatusRejected RunStatus = "rejected"
)

// RunRecord is one completed pipeline pass awaiting (or past) review.
type RunRecord struct {
	ID        string           `json:"id"`
	State     *framework.State `json:"state"`
	Status    RunStatus        `json:"status"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FileRunStore stores run records as a single JSON document on disk. Runs are
// few and reviewed by hand, so a flat file keeps the store inspectable.
type FileRunStore struct {
	path  string
	mu    sync.RWMutex
	cache map[string]RunRecord
}

// NewFileRunStore creates a store under the provided directory.
func NewFileRunStore(root string) (*FileRunStore, error) {
	if root == "" {
		return nil, errors.New("run store root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	store := &FileRunStore{
		path:  filepath.Join(root, "runs.json"),
		cache: make(map[string]RunRecord),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileRunStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var records []RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	for _, record := range records {
		s.cache[record.ID] = record
	}
	return nil
}

func (s *FileRunStore) persist() error {
	records := make([]RunRecord, 0, len(s.cache))
	for _, record := range s.cache {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Save writes a record to disk.
func (s *FileRunStore) Save(ctx context.Context, record *RunRecord) error {
	if record == nil {
		return errors.New("nil run record")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record.UpdatedAt = time.Now().UTC()
	s.cache[record.ID] = *record
	return s.persist()
}

// Load retrieves a record by ID.
func (s *FileRunStore) Load(ctx context.Context, id string) (*RunRecord, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.cache[id]
	if !ok {
		return nil, false, nil
	}
	return &record, true, nil
}

// List returns all records sorted by ID.
func (s *FileRunStore) List(ctx context.Context) ([]RunRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]RunRecord, 0, len(s.cache))
	for _, record := range s.cache {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Delete removes a record.
func (s *FileRunStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, id)
	return s.persist()
}
