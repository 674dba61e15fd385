package locallock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"itemservice/internal/lock"
	"itemservice/internal/lock/locallock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_MutualExclusion(t *testing.T) {
	provider := locallock.NewProvider()
	const workers = 20

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := provider.Acquire(context.Background(), "lock:item:1", 5*time.Second, 5*time.Second)
			require.NoError(t, err)
			defer lease.Release(context.Background())

			// non-atomic update, only safe under the lease
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestAcquire_WaitTimeout(t *testing.T) {
	provider := locallock.NewProvider()

	lease, err := provider.Acquire(context.Background(), "lock:item:1", time.Second, 10*time.Second)
	require.NoError(t, err)
	defer lease.Release(context.Background())

	_, err = provider.Acquire(context.Background(), "lock:item:1", 50*time.Millisecond, 10*time.Second)
	assert.ErrorIs(t, err, lock.ErrAcquireTimeout)
}

func TestAcquire_HoldTimeoutFreesLease(t *testing.T) {
	provider := locallock.NewProvider()

	// never released by its holder; the hold ceiling must free it
	_, err := provider.Acquire(context.Background(), "lock:item:1", time.Second, 50*time.Millisecond)
	require.NoError(t, err)

	lease, err := provider.Acquire(context.Background(), "lock:item:1", time.Second, time.Second)
	require.NoError(t, err)
	lease.Release(context.Background())
}

func TestRelease_ExpiredLeaseDoesNotStealLock(t *testing.T) {
	provider := locallock.NewProvider()

	first, err := provider.Acquire(context.Background(), "lock:item:1", time.Second, 50*time.Millisecond)
	require.NoError(t, err)

	// wait for the first lease to expire and a second holder to take over
	second, err := provider.Acquire(context.Background(), "lock:item:1", time.Second, 10*time.Second)
	require.NoError(t, err)

	// releasing the stale lease must not free the second holder's lock
	require.NoError(t, first.Release(context.Background()))
	_, err = provider.Acquire(context.Background(), "lock:item:1", 50*time.Millisecond, time.Second)
	assert.ErrorIs(t, err, lock.ErrAcquireTimeout)

	second.Release(context.Background())
}

func TestAcquire_IndependentKeysDoNotBlock(t *testing.T) {
	provider := locallock.NewProvider()

	leaseA, err := provider.Acquire(context.Background(), lock.ItemKey(1), time.Second, 10*time.Second)
	require.NoError(t, err)
	defer leaseA.Release(context.Background())

	// a held lease on item 1 must not delay item 2 at all
	start := time.Now()
	leaseB, err := provider.Acquire(context.Background(), lock.ItemKey(2), time.Second, 10*time.Second)
	require.NoError(t, err)
	defer leaseB.Release(context.Background())

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
