package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

const (
	DefaultRedisChannel = "docchat:cache-invalidation"
	redisDialTimeout    = 5 * time.Second
)

// RedisBus shares invalidations between processes over Redis pub/sub.
// Messages published while a peer is disconnected are lost; stale
// entries on that peer age out through their stale time instead.
type RedisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string

	mu   sync.Mutex
	subs []*goredis.PubSub
	wg   sync.WaitGroup
}

// redisOptions accepts either host:port or a redis:// URL carrying
// credentials and a database number.
func redisOptions(addr string) (*goredis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("missing redis addr")
	}
	if strings.Contains(addr, "://") {
		opts, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		if opts.DialTimeout == 0 {
			opts.DialTimeout = redisDialTimeout
		}
		return opts, nil
	}
	return &goredis.Options{Addr: addr, DialTimeout: redisDialTimeout}, nil
}

// NewRedisBus connects to addr and pings it before returning.
func NewRedisBus(log *logger.Logger, addr, channel string) (*RedisBus, error) {
	opts, err := redisOptions(addr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	if channel = strings.TrimSpace(channel); channel == "" {
		channel = DefaultRedisChannel
	}

	rdb := goredis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisBus{
		log:     log.With("component", "RedisCacheBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *RedisBus) Publish(ctx context.Context, inv Invalidation) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode invalidation: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// Subscribe confirms the subscription, then delivers invalidations on a
// background goroutine until ctx ends or the bus closes.
func (b *RedisBus) Subscribe(ctx context.Context, onInvalidation func(Invalidation)) error {
	if onInvalidation == nil {
		return errors.New("onInvalidation callback required")
	}
	ps := b.rdb.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.mu.Lock()
	b.subs = append(b.subs, ps)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				inv, err := decodeInvalidation(m.Payload)
				if err != nil {
					b.log.Warn("ignoring cache invalidation", "error", err)
					continue
				}
				onInvalidation(inv)
			}
		}
	}()
	return nil
}

func decodeInvalidation(payload string) (Invalidation, error) {
	var inv Invalidation
	if err := json.Unmarshal([]byte(payload), &inv); err != nil {
		return Invalidation{}, fmt.Errorf("decode: %w", err)
	}
	if len(inv.Keys) == 0 {
		return Invalidation{}, errors.New("no keys")
	}
	return inv, nil
}

// Close ends every subscription, waits for their goroutines, then
// disconnects.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, ps := range subs {
		_ = ps.Close()
	}
	b.wg.Wait()
	return b.rdb.Close()
}
