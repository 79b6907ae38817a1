package api

import (
	"sync"

	"github.com/google/uuid"
)

// FitStore keeps completed fits in memory, in creation order.
type FitStore struct {
	mu    sync.Mutex
	fits  map[string]FitResponse
	order []string
}

func NewFitStore() *FitStore {
	return &FitStore{fits: make(map[string]FitResponse)}
}

func (s *FitStore) Save(fit FitResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fits[fit.ID]; !ok {
		s.order = append(s.order, fit.ID)
	}
	s.fits[fit.ID] = fit
}

func (s *FitStore) Get(id string) (FitResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fit, ok := s.fits[id]
	return fit, ok
}

func (s *FitStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fits[id]; !ok {
		return false
	}
	delete(s.fits, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *FitStore) List() []FitResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FitResponse, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.fits[id])
	}
	return out
}

func newFitID() string {
	return "fit_" + uuid.NewString()
}
