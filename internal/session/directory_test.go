package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-docchat/internal/cache"
	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
)

type fakeDirectoryAPI struct {
	listCalls int
	deleted   []string
	convs     []domain.Conversation
}

func (f *fakeDirectoryAPI) ListConversations(ctx context.Context, skip, limit int) (domain.Page[domain.Conversation], error) {
	f.listCalls++
	return domain.Page[domain.Conversation]{Data: f.convs, Total: len(f.convs)}, nil
}

func (f *fakeDirectoryAPI) GetConversation(ctx context.Context, id string) (domain.Conversation, error) {
	for _, c := range f.convs {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Conversation{}, apierr.FromStatus(http.StatusNotFound, "", "Conversation not found")
}

func (f *fakeDirectoryAPI) DeleteConversation(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestDirectoryDeleteInvalidatesListing(t *testing.T) {
	store := cache.NewStore(nil, cache.Options{})
	defer func() { _ = store.Close() }()
	api := &fakeDirectoryAPI{convs: []domain.Conversation{{ID: "c1", Title: "Taxes"}}}
	d := NewDirectory(nil, api, store, 0)

	page, err := d.List(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	_, err = d.List(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Equal(t, 1, api.listCalls)

	store.Set(cache.MessagesPageKey("c1", 0, 50), "cached")
	require.NoError(t, d.Delete(context.Background(), "c1"))
	require.Equal(t, []string{"c1"}, api.deleted)

	_, ok := store.Get(cache.ConversationsPageKey(0, 20))
	require.False(t, ok)
	_, ok = store.Get(cache.MessagesPageKey("c1", 0, 50))
	require.False(t, ok)
}

func TestDirectoryGetMissing(t *testing.T) {
	store := cache.NewStore(nil, cache.Options{})
	defer func() { _ = store.Close() }()
	d := NewDirectory(nil, &fakeDirectoryAPI{}, store, 0)

	_, err := d.Get(context.Background(), "nope")
	require.True(t, apierr.Is(err, apierr.KindNotFound))
	_, err = d.Get(context.Background(), "")
	require.True(t, apierr.Local(err))
}
