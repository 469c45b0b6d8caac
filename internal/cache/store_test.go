package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, clock *fakeClock, bus Bus) *Store {
	t.Helper()
	s := NewStore(nil, Options{StaleTime: 5 * time.Second, Now: clock.Now, Bus: bus})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func countingFetcher(calls *int32, val any) Fetcher {
	return func(ctx context.Context) (any, error) {
		atomic.AddInt32(calls, 1)
		return val, nil
	}
}

func TestSetGetAndStaleness(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, clock, nil)

	require.True(t, s.IsStale("documents"), "missing keys are stale")

	s.Set("documents", []string{"a"})
	e, ok := s.Get("documents")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, e.Data)
	require.False(t, s.IsStale("documents"))

	clock.Advance(5 * time.Second)
	require.True(t, s.IsStale("documents"))

	s.SetWithWindow("system-overview", 1, time.Minute)
	clock.Advance(30 * time.Second)
	require.False(t, s.IsStale("system-overview"))
}

func TestInvalidatePrefix(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	s.Set(MessagesPageKey("c1", 0, 50), 1)
	s.Set(MessagesPageKey("c1", 50, 50), 2)
	s.Set(MessagesPageKey("c10", 0, 50), 3)
	s.Set(KeyConversations, 4)

	require.Equal(t, 2, s.Invalidate(MessagesKey("c1")))

	_, ok := s.Get(MessagesPageKey("c10", 0, 50))
	require.True(t, ok, "sibling with shared string prefix must survive")
	_, ok = s.Get(KeyConversations)
	require.True(t, ok)
	require.Equal(t, 0, s.Invalidate("   "))
}

func TestFetchMissThenHit(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	var calls int32

	v, err := s.Fetch(context.Background(), KeyDocuments, 0, countingFetcher(&calls, "v1"))
	require.NoError(t, err)
	require.Equal(t, "v1", v)

	v, err = s.Fetch(context.Background(), KeyDocuments, 0, countingFetcher(&calls, "v2"))
	require.NoError(t, err)
	require.Equal(t, "v1", v, "fresh hit must not refetch")
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchStaleWhileRevalidate(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, clock, nil)
	s.Set(KeyDocuments, "old")
	clock.Advance(10 * time.Second)

	release := make(chan struct{})
	var calls int32
	slow := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "new", nil
	}

	v, err := s.Fetch(context.Background(), KeyDocuments, 0, slow)
	require.NoError(t, err)
	require.Equal(t, "old", v, "stale read returns the last good value immediately")

	close(release)
	require.Eventually(t, func() bool {
		e, ok := s.Get(KeyDocuments)
		return ok && e.Data == "new"
	}, time.Second, 5*time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFailedBackgroundRefreshKeepsValue(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, clock, nil)
	s.Set(KeyDocuments, "old")
	clock.Advance(time.Minute)

	done := make(chan struct{})
	_, err := s.Fetch(context.Background(), KeyDocuments, 0, func(ctx context.Context) (any, error) {
		defer close(done)
		return nil, errors.New("offline")
	})
	require.NoError(t, err)
	<-done
	require.Eventually(t, func() bool {
		e, ok := s.Get(KeyDocuments)
		return ok && e.Data == "old"
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidateForcesNextReadToFetch(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	var calls int32
	_, err := s.Fetch(context.Background(), KeyDocuments, 0, countingFetcher(&calls, []string{"a", "b"}))
	require.NoError(t, err)

	s.Invalidate(KeyDocuments)
	_, ok := s.Get(KeyDocuments)
	require.False(t, ok, "invalidation never leaves fabricated data behind")

	v, err := s.Fetch(context.Background(), KeyDocuments, 0, countingFetcher(&calls, []string{"a"}))
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, v)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchRacingInvalidationIsNotCached(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	started := make(chan struct{})
	release := make(chan struct{})

	result := make(chan any, 1)
	go func() {
		v, _ := s.Fetch(context.Background(), MessagesPageKey("c1", 0, 50), 0, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "pre-send list", nil
		})
		result <- v
	}()

	<-started
	s.Invalidate(MessagesKey("c1"))
	close(release)

	require.Equal(t, "pre-send list", <-result)
	_, ok := s.Get(MessagesPageKey("c1", 0, 50))
	require.False(t, ok, "result fetched before invalidation must not be cached")
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Fetch(context.Background(), KeyOverview, 0, fetch)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchCallerCancel(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx, KeyOverview, 0, func(ctx context.Context) (any, error) {
		<-release
		return 1, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueryTyped(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	got, err := Query(context.Background(), s, KeyTopics, 0, func(ctx context.Context) ([]string, error) {
		return []string{"go"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"go"}, got)

	s.Set(KeyOverview, "not an int")
	_, err = Query(context.Background(), s, KeyOverview, 0, func(ctx context.Context) (int, error) { return 1, nil })
	require.Error(t, err)
}

func TestBusPropagatesInvalidation(t *testing.T) {
	bus := NewMemoryBus()
	clock := newFakeClock()
	a := NewStore(nil, Options{Now: clock.Now, Bus: bus})
	b := NewStore(nil, Options{Now: clock.Now, Bus: bus})
	defer func() { _ = a.Close() }()
	defer func() { _ = b.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Listen(ctx))
	require.NoError(t, b.Listen(ctx))

	a.Set(KeyDocuments, 1)
	b.Set(KeyDocuments, 1)

	require.Equal(t, 1, a.Invalidate(KeyDocuments))
	_, ok := b.Get(KeyDocuments)
	require.False(t, ok, "peer store should drop the key")
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(" localhost:6379 ")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, redisDialTimeout, opts.DialTimeout)

	opts, err = redisOptions("redis://:pw@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = redisOptions("")
	require.Error(t, err)
	_, err = redisOptions("redis://host:6379/notadb")
	require.Error(t, err)
}

func TestDecodeInvalidation(t *testing.T) {
	inv, err := decodeInvalidation(`{"origin":"a","keys":["/documents/"]}`)
	require.NoError(t, err)
	assert.Equal(t, Invalidation{Origin: "a", Keys: []string{"/documents/"}}, inv)

	_, err = decodeInvalidation(`{"origin":"a","keys":[]}`)
	require.Error(t, err)
	_, err = decodeInvalidation(`not json`)
	require.Error(t, err)
}

func TestInvalidationBookkeepingStaysBounded(t *testing.T) {
	s := newTestStore(t, newFakeClock(), nil)
	for i := 0; i < 1000; i++ {
		s.Invalidate(MessagesKey(fmt.Sprintf("c%d", i)))
	}
	v, err := s.Fetch(context.Background(), KeyOverview, 0, func(ctx context.Context) (any, error) { return 1, nil })
	require.NoError(t, err)
	require.Equal(t, 1, v)

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Empty(t, s.loads, "no state is kept for invalidated keys once loads finish")
	_, cached := s.entries[KeyOverview]
	require.True(t, cached, "an unrelated invalidation does not block caching")
}
