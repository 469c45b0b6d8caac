package client

import (
	"context"
	"net/http"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
)

type createConversationReq struct {
	Title string `json:"title"`
}

type sendMessageReq struct {
	Content string      `json:"content"`
	Role    domain.Role `json:"role"`
}

// POST /conversations/
func (c *Client) CreateConversation(ctx context.Context, title string) (domain.Conversation, error) {
	var out domain.Conversation
	err := c.doJSON(ctx, http.MethodPost, "/conversations/", "/conversations/", nil, createConversationReq{Title: title}, &out)
	return out, err
}

// GET /conversations/?skip&limit
func (c *Client) ListConversations(ctx context.Context, skip, limit int) (domain.Page[domain.Conversation], error) {
	var out domain.Page[domain.Conversation]
	err := c.doJSON(ctx, http.MethodGet, "/conversations/", "/conversations/", pagingQuery(skip, limit), nil, &out)
	return out, err
}

// GET /conversations/{id}
func (c *Client) GetConversation(ctx context.Context, id string) (domain.Conversation, error) {
	var out domain.Conversation
	err := c.doJSON(ctx, http.MethodGet, "/conversations/{id}", "/conversations/"+escape(id), nil, nil, &out)
	return out, err
}

// DELETE /conversations/{id}
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/conversations/{id}", "/conversations/"+escape(id), nil, nil, nil)
}

// POST /conversations/{id}/messages/
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (domain.Message, error) {
	var out domain.Message
	err := c.doJSON(ctx, http.MethodPost, "/conversations/{id}/messages/", "/conversations/"+escape(conversationID)+"/messages/", nil,
		sendMessageReq{Content: content, Role: domain.RoleUser}, &out)
	if err == nil {
		out.Origin = domain.OriginConfirmed
	}
	return out, err
}

// GET /conversations/{id}/messages/?skip&limit
func (c *Client) ListMessages(ctx context.Context, conversationID string, skip, limit int) (domain.Page[domain.Message], error) {
	var out domain.Page[domain.Message]
	err := c.doJSON(ctx, http.MethodGet, "/conversations/{id}/messages/", "/conversations/"+escape(conversationID)+"/messages/", pagingQuery(skip, limit), nil, &out)
	for i := range out.Data {
		out.Data[i].Origin = domain.OriginConfirmed
	}
	return out, err
}
