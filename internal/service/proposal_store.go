package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/study-planner-api/internal/planner"
)

const proposalCachePrefix = "study_planner:proposal:"

// StudyPlanProposal is a generated plan waiting to be saved or exported.
type StudyPlanProposal struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Params       planner.WeightParams `json:"params"`
	TotalHours   float64              `json:"totalHours"`
	BlockHours   float64              `json:"blockHours"`
	StepHours    float64              `json:"stepHours"`
	Policy       planner.Policy       `json:"policy"`
	WeekdayHours float64              `json:"weekdayHours"`
	WeekendHours float64              `json:"weekendHours"`
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
	Excluded     []string             `json:"excluded"`
	Plan         planner.Plan         `json:"plan"`
	RequestedAt  time.Time            `json:"requestedAt"`
}

// ProposalStore holds generated previews until they are saved or expire.
type ProposalStore interface {
	Save(ctx context.Context, proposal StudyPlanProposal) error
	Get(ctx context.Context, id string) (StudyPlanProposal, bool, error)
	Delete(ctx context.Context, id string) error
}

type memoryProposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]StudyPlanProposal
}

// NewMemoryProposalStore keeps proposals in process memory for ttl.
func NewMemoryProposalStore(ttl time.Duration) ProposalStore {
	return &memoryProposalStore{
		ttl:   ttl,
		items: make(map[string]StudyPlanProposal),
	}
}

func (s *memoryProposalStore) Save(_ context.Context, proposal StudyPlanProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ID] = proposal
	s.evictLocked()
	return nil
}

func (s *memoryProposalStore) Get(ctx context.Context, id string) (StudyPlanProposal, bool, error) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return StudyPlanProposal{}, false, nil
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		_ = s.Delete(ctx, id)
		return StudyPlanProposal{}, false, nil
	}
	return proposal, true, nil
}

func (s *memoryProposalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// evictLocked drops expired proposals so abandoned previews do not accumulate.
func (s *memoryProposalStore) evictLocked() {
	for id, proposal := range s.items {
		if time.Since(proposal.RequestedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}

type cacheProposalStore struct {
	cache *CacheService
	ttl   time.Duration
}

// NewCacheProposalStore keeps proposals in Redis through the cache service so every
// replica can serve them.
func NewCacheProposalStore(cache *CacheService, ttl time.Duration) ProposalStore {
	return &cacheProposalStore{cache: cache, ttl: ttl}
}

func (s *cacheProposalStore) Save(ctx context.Context, proposal StudyPlanProposal) error {
	return s.cache.Set(ctx, proposalCachePrefix+proposal.ID, proposal, s.ttl)
}

func (s *cacheProposalStore) Get(ctx context.Context, id string) (StudyPlanProposal, bool, error) {
	var proposal StudyPlanProposal
	hit, err := s.cache.Get(ctx, proposalCachePrefix+id, &proposal)
	if err != nil || !hit {
		return StudyPlanProposal{}, false, err
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		return StudyPlanProposal{}, false, nil
	}
	return proposal, true, nil
}

func (s *cacheProposalStore) Delete(ctx context.Context, id string) error {
	return s.cache.Invalidate(ctx, proposalCachePrefix+id)
}
