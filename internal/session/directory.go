package session

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-docchat/internal/cache"
	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

type DirectoryAPI interface {
	ListConversations(ctx context.Context, skip, limit int) (domain.Page[domain.Conversation], error)
	GetConversation(ctx context.Context, id string) (domain.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

// Directory serves conversation listings through the shared cache.
type Directory struct {
	log       *logger.Logger
	api       DirectoryAPI
	store     *cache.Store
	staleTime time.Duration
}

func NewDirectory(log *logger.Logger, api DirectoryAPI, store *cache.Store, staleTime time.Duration) *Directory {
	if log == nil {
		log = logger.Nop()
	}
	return &Directory{log: log.With("component", "ConversationDirectory"), api: api, store: store, staleTime: staleTime}
}

func (d *Directory) List(ctx context.Context, skip, limit int) (domain.Page[domain.Conversation], error) {
	return cache.Query(ctx, d.store, cache.ConversationsPageKey(skip, limit), d.staleTime,
		func(ctx context.Context) (domain.Page[domain.Conversation], error) {
			return d.api.ListConversations(ctx, skip, limit)
		})
}

func (d *Directory) Get(ctx context.Context, id string) (domain.Conversation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Conversation{}, apierr.Validation("missing_conversation_id", "Conversation id is required.")
	}
	return cache.Query(ctx, d.store, cache.ConversationKey(id), d.staleTime,
		func(ctx context.Context) (domain.Conversation, error) {
			return d.api.GetConversation(ctx, id)
		})
}

// Delete removes a conversation and drops every cached view of it.
func (d *Directory) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apierr.Validation("missing_conversation_id", "Conversation id is required.")
	}
	if err := d.api.DeleteConversation(ctx, id); err != nil {
		return err
	}
	d.store.Invalidate(cache.KeyConversations)
	d.store.Invalidate(cache.ConversationKey(id))
	d.store.Invalidate(cache.MessagesKey(id))
	d.store.Invalidate(cache.ConversationStatsKey(id))
	d.log.Info("conversation deleted", "conversation_id", id)
	return nil
}
