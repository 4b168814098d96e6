package api

import (
	"context"
	"sort"
	"sync"

	"github.com/soaringjerry/findrisc/internal/services"
)

// memoryStore keeps assessments in process; used when no SQLite path is set.
type memoryStore struct {
	mu          sync.RWMutex
	assessments map[string]*services.Assessment
	byUser      map[string][]*services.Assessment
}

func NewMemoryStore() services.AssessmentStore {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		assessments: map[string]*services.Assessment{},
		byUser:      map[string][]*services.Assessment{},
	}
}

func (s *memoryStore) AddAssessment(_ context.Context, a *services.Assessment) error {
	cp := *a
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assessments[cp.ID]; exists {
		return services.NewInvalidError("duplicate assessment id " + cp.ID)
	}
	s.assessments[cp.ID] = &cp
	list := append(s.byUser[cp.UserID], &cp)
	// keep newest first
	sort.Slice(list, func(i, j int) bool { return newerFirst(list[i], list[j]) })
	s.byUser[cp.UserID] = list
	return nil
}

func (s *memoryStore) GetAssessment(_ context.Context, id string) (*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a := s.assessments[id]
	if a == nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) ListAssessmentsByUser(_ context.Context, userID string) ([]*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAssessments(s.byUser[userID]), nil
}

func (s *memoryStore) ListAssessments(_ context.Context) ([]*services.Assessment, error) {
	s.mu.RLock()
	all := make([]*services.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		all = append(all, a)
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i], all[j]) })
	return copyAssessments(all), nil
}

// newerFirst orders by submission time descending, then id descending, matching
// the SQLite store's ORDER BY.
func newerFirst(a, b *services.Assessment) bool {
	if a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.ID > b.ID
	}
	return a.SubmittedAt.After(b.SubmittedAt)
}

func copyAssessments(in []*services.Assessment) []*services.Assessment {
	out := make([]*services.Assessment, 0, len(in))
	for _, a := range in {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

var _ services.AssessmentStore = (*memoryStore)(nil)
