package api

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/lmeval/internal/report"
)

// Evaluation is a completed evaluation run kept by the server.
type Evaluation struct {
	ID        string        `json:"id"`
	Object    string        `json:"object"`
	CreatedAt int64         `json:"createdAt"`
	Result    report.Report `json:"result"`
}

type EvaluationSummary struct {
	ID         string        `json:"id"`
	Object     string        `json:"object"`
	CreatedAt  int64         `json:"createdAt"`
	TestSet    string        `json:"testSet"`
	Perplexity report.Number `json:"perplexity"`
	Methods    int           `json:"methods"`
}

// EvaluationStore keeps evaluations in memory, keyed by id.
type EvaluationStore struct {
	mu          sync.Mutex
	evaluations map[string]*Evaluation
	maxEntries  int
}

// NewEvaluationStore returns a store that evicts the oldest evaluation once
// it holds maxEntries. A non-positive maxEntries means unbounded.
func NewEvaluationStore(maxEntries int) *EvaluationStore {
	return &EvaluationStore{
		evaluations: make(map[string]*Evaluation),
		maxEntries:  maxEntries,
	}
}

func (s *EvaluationStore) Create(r report.Report, now time.Time) Evaluation {
	ev := &Evaluation{
		ID:        newEvaluationID(),
		Object:    "evaluation",
		CreatedAt: now.Unix(),
		Result:    r,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxEntries > 0 && len(s.evaluations) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.evaluations[ev.ID] = ev
	return *ev
}

func (s *EvaluationStore) Get(id string) (*Evaluation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.evaluations[id]
	return ev, ok
}

func (s *EvaluationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.evaluations[id]; !ok {
		return false
	}
	delete(s.evaluations, id)
	return true
}

// List returns summaries ordered by creation time, then id.
func (s *EvaluationStore) List() []EvaluationSummary {
	s.mu.Lock()
	out := make([]EvaluationSummary, 0, len(s.evaluations))
	for _, ev := range s.evaluations {
		out = append(out, EvaluationSummary{
			ID:         ev.ID,
			Object:     "evaluation.summary",
			CreatedAt:  ev.CreatedAt,
			TestSet:    ev.Result.TestSet,
			Perplexity: ev.Result.Perplexity,
			Methods:    len(ev.Result.Data),
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *EvaluationStore) evictOldestLocked() {
	var oldest *Evaluation
	for _, ev := range s.evaluations {
		if oldest == nil || ev.CreatedAt < oldest.CreatedAt ||
			(ev.CreatedAt == oldest.CreatedAt && ev.ID < oldest.ID) {
			oldest = ev
		}
	}
	if oldest != nil {
		delete(s.evaluations, oldest.ID)
	}
}

func newEvaluationID() string {
	return "eval_" + uuid.NewString()
}
