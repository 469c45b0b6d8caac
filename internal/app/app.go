package app

import (
	"context"
	"fmt"

	"github.com/yungbote/neurobridge-docchat/internal/analytics"
	"github.com/yungbote/neurobridge-docchat/internal/auth"
	"github.com/yungbote/neurobridge-docchat/internal/cache"
	"github.com/yungbote/neurobridge-docchat/internal/client"
	"github.com/yungbote/neurobridge-docchat/internal/config"
	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/ingestion"
	"github.com/yungbote/neurobridge-docchat/internal/observability"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
	"github.com/yungbote/neurobridge-docchat/internal/realtime"
	"github.com/yungbote/neurobridge-docchat/internal/session"
)

// App owns the client core: one request client, one cache, one event hub,
// and the components built on them.
type App struct {
	Log *logger.Logger
	Cfg config.Config

	Auth          *auth.Store
	Client        *client.Client
	Cache         *cache.Store
	Hub           *realtime.Hub
	Conversations *session.Directory
	Ingestion     *ingestion.Coordinator
	Analytics     *analytics.Service

	otelShutdown observability.Shutdown
	cancel       context.CancelFunc
}

type Option func(*options)

type options struct {
	log              *logger.Logger
	onSessionExpired func()
	tracing          func(*logger.Logger) observability.Shutdown
}

// WithLogger replaces the logger built from cfg.Log.Mode.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// withTracing replaces the OTel setup; tests use it to observe shutdown.
func withTracing(fn func(*logger.Logger) observability.Shutdown) Option {
	return func(o *options) { o.tracing = fn }
}

// WithSessionExpired runs fn after a 401 clears the credential.
func WithSessionExpired(fn func()) Option {
	return func(o *options) { o.onSessionExpired = fn }
}

// teardown releases what New has acquired so far, newest first.
type teardown []func()

func (t *teardown) add(fn func()) { *t = append(*t, fn) }

func (t teardown) run() {
	for i := len(t) - 1; i >= 0; i-- {
		t[i]()
	}
}

func initTracing(log *logger.Logger) observability.Shutdown {
	return observability.Init(context.Background(), log, observability.ConfigFromEnv("docchat"))
}

func New(cfg config.Config, opts ...Option) (_ *App, err error) {
	o := options{tracing: initTracing}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log, err = logger.New(cfg.Log.Mode)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var undo teardown
	defer func() {
		if err != nil {
			undo.run()
		}
	}()

	shutdown := o.tracing(log)
	undo.add(func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	})

	var authOpts []auth.Option
	if o.onSessionExpired != nil {
		authOpts = append(authOpts, auth.WithSessionExpired(o.onSessionExpired))
	}
	creds := auth.NewStore(log, cfg.API.Token, authOpts...)
	if creds.Expired() {
		log.Warn("configured token is already expired; requests will likely be rejected")
	}

	c, err := client.New(client.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		MaxRetries:     cfg.API.MaxRetries,
		RetryDelay:     cfg.API.RetryDelay,
		Credentials:    creds,
		OnUnauthorized: creds.Expire,
		Log:            log,
	})
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}

	var bus cache.Bus
	if cfg.Redis.Addr != "" {
		bus, err = cache.NewRedisBus(log, cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			return nil, fmt.Errorf("init cache bus: %w", err)
		}
	}
	store := cache.NewStore(log, cache.Options{StaleTime: cfg.Cache.StaleTime, Bus: bus})
	undo.add(func() { _ = store.Close() })
	hub := realtime.NewHub(log)

	co, err := ingestion.New(log, c, store, hub, ingestion.Options{
		MaxFileSize:     cfg.Documents.MaxFileSize,
		PollInterval:    cfg.Documents.PollInterval,
		MaxPollFailures: cfg.Documents.MaxPollFailures,
		StaleTime:       cfg.Cache.StaleTime,
	})
	if err != nil {
		return nil, err
	}
	an, err := analytics.New(log, c, store, analytics.Options{
		OverviewStaleTime: cfg.Cache.OverviewStaleTime,
		TopicsStaleTime:   cfg.Cache.TopicsStaleTime,
		StatsStaleTime:    cfg.Cache.StatsStaleTime,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Log:           log,
		Cfg:           cfg,
		Auth:          creds,
		Client:        c,
		Cache:         store,
		Hub:           hub,
		Conversations: session.NewDirectory(log, c, store, cfg.Cache.StaleTime),
		Ingestion:     co,
		Analytics:     an,
		otelShutdown:  shutdown,
	}, nil
}

// Start begins listening for cross-process cache invalidations.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if err := a.Cache.Listen(ctx); err != nil {
		return fmt.Errorf("cache bus subscribe: %w", err)
	}
	return nil
}

// NewSession opens a session manager. An empty conversationID starts a new
// conversation on the first send.
func (a *App) NewSession(conversationID string, onCreated func(domain.Conversation)) (*session.Manager, error) {
	return session.New(a.Log, a.Client, a.Cache, a.Hub, session.Options{
		ConversationID:        conversationID,
		DefaultTitle:          a.Cfg.Chat.DefaultTitle,
		MaxMessageLength:      a.Cfg.Chat.MaxMessageLength,
		PageSize:              a.Cfg.Chat.PageSize,
		StaleTime:             a.Cfg.Cache.StaleTime,
		CreateTimeout:         a.Cfg.API.Timeout,
		OnConversationCreated: onCreated,
	})
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn("cache close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("tracing shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
