package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-docchat/internal/cache"
	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
	"github.com/yungbote/neurobridge-docchat/internal/realtime"
)

const (
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollFailures = 3
)

type API interface {
	UploadDocument(ctx context.Context, f domain.File) (domain.Document, error)
	ListDocuments(ctx context.Context) (domain.Page[domain.Document], error)
	DeleteDocument(ctx context.Context, id string) error
	DocumentStatus(ctx context.Context, id string) (domain.Document, error)
}

type Options struct {
	MaxFileSize     int64
	AllowedTypes    []string
	PollInterval    time.Duration
	MaxPollFailures int
	StaleTime       time.Duration
}

// Coordinator uploads documents and tracks their processing.
type Coordinator struct {
	log   *logger.Logger
	api   API
	store *cache.Store
	hub   *realtime.Hub

	maxFileSize     int64
	allowed         map[string]struct{}
	pollInterval    time.Duration
	maxPollFailures int
	staleTime       time.Duration
}

func New(log *logger.Logger, api API, store *cache.Store, hub *realtime.Hub, opts Options) (*Coordinator, error) {
	if api == nil {
		return nil, fmt.Errorf("api required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Coordinator{
		log:             log.With("component", "IngestionCoordinator"),
		api:             api,
		store:           store,
		hub:             hub,
		maxFileSize:     opts.MaxFileSize,
		pollInterval:    opts.PollInterval,
		maxPollFailures: opts.MaxPollFailures,
		staleTime:       opts.StaleTime,
	}
	if c.maxFileSize <= 0 {
		c.maxFileSize = DefaultMaxFileSize
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.maxPollFailures <= 0 {
		c.maxPollFailures = DefaultMaxPollFailures
	}
	types := opts.AllowedTypes
	if len(types) == 0 {
		types = DefaultAllowedTypes
	}
	c.allowed = make(map[string]struct{}, len(types))
	for _, t := range types {
		if mt := mediaType(t); mt != "" {
			c.allowed[mt] = struct{}{}
		}
	}
	return c, nil
}

// Upload pre-checks f and, if it passes, sends it. A file that fails the
// checks never reaches the network.
func (c *Coordinator) Upload(ctx context.Context, f domain.File) (domain.Document, error) {
	if err := c.Check(f); err != nil {
		c.log.Info("upload rejected", "filename", f.Name, "kind", apierr.KindOf(err))
		return domain.Document{}, err
	}
	if f.Body != nil {
		f = c.capBody(f)
	}
	doc, err := c.api.UploadDocument(ctx, f)
	if err != nil {
		c.log.Warn("upload failed", "filename", f.Name, "kind", apierr.KindOf(err), "error", err)
		return domain.Document{}, err
	}
	c.store.Invalidate(cache.KeyDocuments)
	c.log.Info("document uploaded", "document_id", doc.ID, "status", doc.Status)
	c.publish(realtime.EventDocumentUploaded, doc)
	return doc, nil
}

func (c *Coordinator) List(ctx context.Context) ([]domain.Document, error) {
	page, err := cache.Query(ctx, c.store, cache.KeyDocuments, c.staleTime,
		func(ctx context.Context) (domain.Page[domain.Document], error) {
			return c.api.ListDocuments(ctx)
		})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Document, len(page.Data))
	copy(out, page.Data)
	return out, nil
}

func (c *Coordinator) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apierr.Validation("missing_document_id", "Document id is required.")
	}
	if err := c.api.DeleteDocument(ctx, id); err != nil {
		return err
	}
	c.store.Invalidate(cache.KeyDocuments)
	c.store.Invalidate(cache.DocumentStatusKey(id))
	c.log.Info("document deleted", "document_id", id)
	c.publish(realtime.EventDocumentDeleted, domain.Document{ID: id})
	return nil
}

func (c *Coordinator) terminal(doc domain.Document) {
	c.store.Invalidate(cache.KeyDocuments)
	c.log.Info("document processing finished", "document_id", doc.ID, "status", doc.Status)
	c.publish(realtime.EventDocumentStatus, doc)
}

func (c *Coordinator) publish(event realtime.Event, doc domain.Document) {
	if c.hub == nil {
		return
	}
	c.hub.Broadcast(realtime.Message{Channel: realtime.ChannelDocuments, Event: event, Data: doc})
}
