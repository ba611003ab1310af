package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/partmatch/internal/models"
)

// DefaultCapacity bounds how many comparisons the server keeps in memory.
const DefaultCapacity = 1000

// ComparisonStore keeps recent comparisons in memory. Once full, the oldest
// comparison is dropped for each new one.
type ComparisonStore struct {
	comparisons map[string]*models.Comparison
	order       []string
	capacity    int
	mu          sync.RWMutex
}

func New(capacity int) *ComparisonStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ComparisonStore{
		comparisons: make(map[string]*models.Comparison),
		capacity:    capacity,
	}
}

func (s *ComparisonStore) Get(id string) (*models.Comparison, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comparison, exists := s.comparisons[id]
	return comparison, exists
}

func (s *ComparisonStore) Set(id string, comparison *models.Comparison) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comparisons[id]; !exists {
		s.order = append(s.order, id)
	}
	s.comparisons[id] = comparison

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.comparisons, oldest)
	}
}

// List returns stored comparisons, most recently inserted first.
func (s *ComparisonStore) List() []*models.Comparison {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Comparison, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		result = append(result, s.comparisons[s.order[i]])
	}
	return result
}

func (s *ComparisonStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comparisons[id]; !exists {
		return false
	}
	delete(s.comparisons, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ComparisonStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comparisons)
}
