package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

const (
	DefaultStaleTime      = 5 * time.Second
	defaultRefreshTimeout = 30 * time.Second
)

type Entry struct {
	Key        string
	Data       any
	FetchedAt  time.Time
	StaleAfter time.Duration
}

func (e Entry) staleAt(now time.Time) bool {
	return now.Sub(e.FetchedAt) >= e.StaleAfter
}

type Fetcher func(ctx context.Context) (any, error)

type Options struct {
	StaleTime      time.Duration
	RefreshTimeout time.Duration
	Bus            Bus
	Now            func() time.Time
}

// Store is the process-wide keyed cache. Entries change only through its
// methods; readers receive copies of Entry, never pointers into the map.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	// loads are the fetches in flight. An invalidation covering a load's
	// key marks it, and a marked load does not write its result back.
	loads map[*pendingLoad]struct{}

	sf  singleflight.Group
	log *logger.Logger
	now func() time.Time

	staleTime      time.Duration
	refreshTimeout time.Duration

	bus    Bus
	origin string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStore(log *logger.Logger, opts Options) *Store {
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	stale := opts.StaleTime
	if stale <= 0 {
		stale = DefaultStaleTime
	}
	rt := opts.RefreshTimeout
	if rt <= 0 {
		rt = defaultRefreshTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		entries:        make(map[string]*Entry),
		loads:          make(map[*pendingLoad]struct{}),
		log:            log.With("component", "CacheStore"),
		now:            now,
		staleTime:      stale,
		refreshTimeout: rt,
		bus:            opts.Bus,
		origin:         uuid.NewString(),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Listen subscribes to remote invalidations until ctx ends. It is a no-op
// without a bus.
func (s *Store) Listen(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Subscribe(ctx, func(inv Invalidation) {
		if inv.Origin == s.origin {
			return
		}
		for _, k := range inv.Keys {
			s.invalidateLocal(k)
		}
	})
}

func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (s *Store) Set(key string, data any) {
	s.SetWithWindow(key, data, 0)
}

// SetWithWindow stores data with its own staleness window; a non-positive
// window uses the store default.
func (s *Store) SetWithWindow(key string, data any, window time.Duration) {
	if window <= 0 {
		window = s.staleTime
	}
	s.mu.Lock()
	s.entries[key] = &Entry{Key: key, Data: data, FetchedAt: s.now(), StaleAfter: window}
	s.mu.Unlock()
}

// IsStale reports true for missing keys as well.
func (s *Store) IsStale(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return true
	}
	return e.staleAt(s.now())
}

// Invalidate drops keyOrPrefix and every key below it, then tells peers on
// the bus. It returns how many local entries were dropped.
func (s *Store) Invalidate(keyOrPrefix string) int {
	keyOrPrefix = strings.TrimSpace(keyOrPrefix)
	if keyOrPrefix == "" {
		return 0
	}
	n := s.invalidateLocal(keyOrPrefix)
	if s.bus != nil {
		ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
		defer cancel()
		if err := s.bus.Publish(ctx, Invalidation{Origin: s.origin, Keys: []string{keyOrPrefix}}); err != nil {
			s.log.Warn("cache invalidation publish failed", "key", keyOrPrefix, "error", err)
		}
	}
	return n
}

func (s *Store) invalidateLocal(keyOrPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if matches(k, keyOrPrefix) {
			delete(s.entries, k)
			n++
		}
	}
	for p := range s.loads {
		if matches(p.key, keyOrPrefix) {
			p.invalidated = true
		}
	}
	s.log.Debug("cache invalidated", "key", keyOrPrefix, "dropped", n)
	return n
}

type pendingLoad struct {
	key         string
	invalidated bool
}

// Fetch returns the cached value for key when present, starting a
// background refresh if it is stale. On a miss it blocks on fetcher.
// Concurrent misses for one key share a single fetch.
func (s *Store) Fetch(ctx context.Context, key string, window time.Duration, fetcher Fetcher) (any, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher required")
	}
	s.mu.RLock()
	e, ok := s.entries[key]
	var cached Entry
	if ok {
		cached = *e
	}
	s.mu.RUnlock()

	if ok {
		if cached.staleAt(s.now()) {
			s.refreshInBackground(key, window, fetcher)
		}
		return cached.Data, nil
	}

	ch := s.sf.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(s.ctx, s.refreshTimeout)
		defer cancel()
		return s.load(lctx, key, window, fetcher)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Store) refreshInBackground(key string, window time.Duration, fetcher Fetcher) {
	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err, _ := s.sf.Do(key, func() (any, error) {
			ctx, cancel := context.WithTimeout(s.ctx, s.refreshTimeout)
			defer cancel()
			return s.load(ctx, key, window, fetcher)
		})
		if err != nil {
			// The stale value stays in place; the next read tries again.
			s.log.Warn("background refresh failed", "key", key, "error", err)
		}
	}()
}

func (s *Store) load(ctx context.Context, key string, window time.Duration, fetcher Fetcher) (any, error) {
	p := &pendingLoad{key: key}
	s.mu.Lock()
	s.loads[p] = struct{}{}
	s.mu.Unlock()

	data, err := fetcher(ctx)

	s.mu.Lock()
	delete(s.loads, p)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if window <= 0 {
		window = s.staleTime
	}
	if !p.invalidated {
		s.entries[key] = &Entry{Key: key, Data: data, FetchedAt: s.now(), StaleAfter: window}
	} else {
		s.log.Debug("dropping fetch result invalidated mid-flight", "key", key)
	}
	s.mu.Unlock()
	return data, nil
}

// Close stops background refreshes and waits for them to exit.
func (s *Store) Close() error {
	s.cancel()
	s.wg.Wait()
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

// Query is the typed form of Store.Fetch.
func Query[T any](ctx context.Context, s *Store, key string, window time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := s.Fetch(ctx, key, window, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %q holds %T", key, v)
	}
	return out, nil
}
