package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProposalStoreExpires(t *testing.T) {
	var store ProposalStore = NewMemoryProposalStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, StudyPlanProposal{ID: "fresh", RequestedAt: time.Now()}))
	require.NoError(t, store.Save(ctx, StudyPlanProposal{ID: "stale", RequestedAt: time.Now().Add(-2 * time.Minute)}))

	_, ok, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx, "fresh"))
	_, ok, _ = store.Get(ctx, "fresh")
	assert.False(t, ok)
}

func TestCacheProposalStoreRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	var store ProposalStore = NewCacheProposalStore(cache, time.Minute)
	ctx := context.Background()

	proposal := StudyPlanProposal{ID: "p-1", Title: "Finals", TotalHours: 20, RequestedAt: time.Now()}
	require.NoError(t, store.Save(ctx, proposal))
	assert.Contains(t, repo.items, proposalCachePrefix+"p-1")

	loaded, ok, err := store.Get(ctx, "p-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Finals", loaded.Title)

	require.NoError(t, store.Delete(ctx, "p-1"))
	_, ok, err = store.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheProposalStoreDisabledCache(t *testing.T) {
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	var store ProposalStore = NewCacheProposalStore(cache, time.Minute)

	require.NoError(t, store.Save(context.Background(), StudyPlanProposal{ID: "p-1", RequestedAt: time.Now()}))
	_, ok, err := store.Get(context.Background(), "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
