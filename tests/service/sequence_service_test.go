package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/facturaec/proforma-api/internal/repository"
	"github.com/facturaec/proforma-api/internal/service"
	"github.com/facturaec/proforma-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSequenceService(t *testing.T) *service.SequenceService {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSequenceRepository(db)
	return service.NewSequenceService(repo, testutil.NewTestLogger())
}

func TestAllocateNext_StartsAtOne(t *testing.T) {
	svc := setupSequenceService(t)

	n, err := svc.AllocateNext(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAllocateNext_Sequential(t *testing.T) {
	svc := setupSequenceService(t)
	ctx := context.Background()

	for want := 1; want <= 5; want++ {
		n, err := svc.AllocateNext(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}

func TestAllocateNext_IndependentPerUser(t *testing.T) {
	svc := setupSequenceService(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		n, err := svc.AllocateNext(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// A different user starts from 1 regardless of other users' sequences
	n, err := svc.AllocateNext(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAllocateNext_ConcurrentNoDuplicates(t *testing.T) {
	svc := setupSequenceService(t)
	ctx := context.Background()

	const workers = 10
	results := make([]int, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.AllocateNext(ctx, "user-1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "allocation %d failed", i)
	}

	// Every allocation must be unique and the set must be gap-free 1..N
	sort.Ints(results)
	for i, n := range results {
		assert.Equal(t, i+1, n)
	}
}

func TestPeekNext_DoesNotConsume(t *testing.T) {
	svc := setupSequenceService(t)
	ctx := context.Background()

	n, err := svc.PeekNext(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "peek on a fresh user previews 1")

	// Peeking repeatedly never advances the sequence
	n, err = svc.PeekNext(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	allocated, err := svc.AllocateNext(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, allocated)

	n, err = svc.PeekNext(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
