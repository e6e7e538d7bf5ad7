// Package storage persists verification runs.
package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/labelaudit/internal/models"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunStore saves runs and reads them back. List returns runs without their
// reports, newest first.
type RunStore interface {
	Save(ctx context.Context, run *models.Run) error
	Get(ctx context.Context, id string) (*models.Run, error)
	List(ctx context.Context) ([]models.Run, error)
	Close() error
}

// prepare fills in the id and creation time of a new run.
func prepare(run *models.Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Summary = models.Summarize(run.Report)
}

func sortNewestFirst(runs []models.Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
}

// Memory keeps runs in process memory.
type Memory struct {
	runs map[string]*models.Run
	mu   sync.RWMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		runs: make(map[string]*models.Run),
	}
}

func (s *Memory) Save(_ context.Context, run *models.Run) error {
	prepare(run)

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *run
	s.runs[run.ID] = &stored
	return nil
}

func (s *Memory) Get(_ context.Context, id string) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[id]
	if !exists {
		return nil, ErrRunNotFound
	}
	out := *run
	return &out, nil
}

func (s *Memory) List(_ context.Context) ([]models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Run, 0, len(s.runs))
	for _, run := range s.runs {
		r := *run
		r.Report = nil
		result = append(result, r)
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *Memory) Close() error { return nil }
