package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-docchat/internal/cache"
	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

const (
	DefaultOverviewStaleTime = time.Minute
	DefaultTopicsStaleTime   = 5 * time.Minute
	DefaultStatsStaleTime    = time.Minute
	DefaultTopicDays         = 7
)

type API interface {
	SystemOverview(ctx context.Context) (domain.SystemOverview, error)
	PopularTopics(ctx context.Context, days int) (domain.Page[domain.PopularTopic], error)
	ConversationStats(ctx context.Context, conversationID string) (domain.ConversationStats, error)
	Health(ctx context.Context) (domain.Health, error)
}

type Options struct {
	OverviewStaleTime time.Duration
	TopicsStaleTime   time.Duration
	StatsStaleTime    time.Duration
}

type Service struct {
	log   *logger.Logger
	api   API
	store *cache.Store

	overviewStale time.Duration
	topicsStale   time.Duration
	statsStale    time.Duration
}

func New(log *logger.Logger, api API, store *cache.Store, opts Options) (*Service, error) {
	if api == nil || store == nil {
		return nil, fmt.Errorf("api and cache store required")
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		log:           log.With("component", "AnalyticsService"),
		api:           api,
		store:         store,
		overviewStale: opts.OverviewStaleTime,
		topicsStale:   opts.TopicsStaleTime,
		statsStale:    opts.StatsStaleTime,
	}
	if s.overviewStale <= 0 {
		s.overviewStale = DefaultOverviewStaleTime
	}
	if s.topicsStale <= 0 {
		s.topicsStale = DefaultTopicsStaleTime
	}
	if s.statsStale <= 0 {
		s.statsStale = DefaultStatsStaleTime
	}
	return s, nil
}

func (s *Service) Overview(ctx context.Context) (domain.SystemOverview, error) {
	return cache.Query(ctx, s.store, cache.KeyOverview, s.overviewStale, s.api.SystemOverview)
}

func (s *Service) PopularTopics(ctx context.Context, days int) ([]domain.PopularTopic, error) {
	if days <= 0 {
		days = DefaultTopicDays
	}
	page, err := cache.Query(ctx, s.store, cache.TopicsKey(days), s.topicsStale,
		func(ctx context.Context) (domain.Page[domain.PopularTopic], error) {
			return s.api.PopularTopics(ctx, days)
		})
	if err != nil {
		return nil, err
	}
	out := make([]domain.PopularTopic, len(page.Data))
	copy(out, page.Data)
	return out, nil
}

// ConversationStats is disabled for an empty id and returns a zero value.
func (s *Service) ConversationStats(ctx context.Context, conversationID string) (domain.ConversationStats, bool, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return domain.ConversationStats{}, false, nil
	}
	stats, err := cache.Query(ctx, s.store, cache.ConversationStatsKey(conversationID), s.statsStale,
		func(ctx context.Context) (domain.ConversationStats, error) {
			return s.api.ConversationStats(ctx, conversationID)
		})
	if err != nil {
		return domain.ConversationStats{}, false, err
	}
	return stats, true, nil
}

// Health is never cached.
func (s *Service) Health(ctx context.Context) (domain.Health, error) {
	return s.api.Health(ctx)
}

type Dashboard struct {
	Overview domain.SystemOverview `json:"overview" yaml:"overview"`
	Topics   []domain.PopularTopic `json:"topics" yaml:"topics"`
	Days     int                   `json:"days" yaml:"days"`
}

// Dashboard loads the overview and topics concurrently. Either failure
// fails the whole load.
func (s *Service) Dashboard(ctx context.Context, days int) (Dashboard, error) {
	if days <= 0 {
		days = DefaultTopicDays
	}
	out := Dashboard{Days: days}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ov, err := s.Overview(gctx)
		if err != nil {
			return fmt.Errorf("overview: %w", err)
		}
		out.Overview = ov
		return nil
	})
	g.Go(func() error {
		topics, err := s.PopularTopics(gctx, days)
		if err != nil {
			return fmt.Errorf("popular topics: %w", err)
		}
		out.Topics = topics
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("dashboard load failed", "error", err)
		return Dashboard{}, err
	}
	return out, nil
}
