package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
)

// GET /analytics/overview
func (c *Client) SystemOverview(ctx context.Context) (domain.SystemOverview, error) {
	var out domain.SystemOverview
	err := c.doJSON(ctx, http.MethodGet, "/analytics/overview", "/analytics/overview", nil, nil, &out)
	return out, err
}

// GET /analytics/popular-topics?days
func (c *Client) PopularTopics(ctx context.Context, days int) (domain.Page[domain.PopularTopic], error) {
	var out domain.Page[domain.PopularTopic]
	q := url.Values{}
	if days > 0 {
		q.Set("days", fmt.Sprint(days))
	}
	err := c.doJSON(ctx, http.MethodGet, "/analytics/popular-topics", "/analytics/popular-topics", q, nil, &out)
	return out, err
}

// GET /analytics/conversations/{id}/stats
func (c *Client) ConversationStats(ctx context.Context, conversationID string) (domain.ConversationStats, error) {
	var out domain.ConversationStats
	err := c.doJSON(ctx, http.MethodGet, "/analytics/conversations/{id}/stats", "/analytics/conversations/"+escape(conversationID)+"/stats", nil, nil, &out)
	return out, err
}

// GET /health
func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var out domain.Health
	err := c.doJSON(ctx, http.MethodGet, "/health", "/health", nil, nil, &out)
	return out, err
}

// POST /system/clear-cache
func (c *Client) ClearServerCache(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/system/clear-cache", "/system/clear-cache", nil, nil, nil)
}
