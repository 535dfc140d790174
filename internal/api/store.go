package api

import "sync"

// SampleStore keeps the most recent sample responses so they can be fetched
// again by id.
type SampleStore struct {
	mu    sync.Mutex
	limit int
	order []string
	items map[string]SamplesResponse
}

// DefaultStoreLimit bounds a store created with a non-positive limit.
const DefaultStoreLimit = 256

func NewSampleStore(limit int) *SampleStore {
	if limit <= 0 {
		limit = DefaultStoreLimit
	}
	return &SampleStore{
		limit: limit,
		items: make(map[string]SamplesResponse),
	}
}

// Save records resp, evicting the oldest entry when the store is full.
func (s *SampleStore) Save(resp SamplesResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[resp.ID]; !ok {
		s.order = append(s.order, resp.ID)
	}
	s.items[resp.ID] = resp
	for len(s.order) > s.limit {
		delete(s.items, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *SampleStore) Get(id string) (SamplesResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.items[id]
	return resp, ok
}

func (s *SampleStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *SampleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
