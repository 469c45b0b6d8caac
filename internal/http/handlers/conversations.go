package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/http/response"
)

type ConversationHandler struct {
	backend Backend
}

func NewConversationHandler(backend Backend) *ConversationHandler {
	return &ConversationHandler{backend: backend}
}

type createConversationReq struct {
	Title string `json:"title"`
}

type sendMessageReq struct {
	Content string      `json:"content"`
	Role    domain.Role `json:"role"`
}

// POST /conversations/
func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_request", err)
		return
	}
	conv, err := h.backend.CreateConversation(req.Title)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, conv)
}

// GET /conversations/?skip=0&limit=20
func (h *ConversationHandler) List(c *gin.Context) {
	skip, limit := paging(c, 20)
	response.RespondOK(c, h.backend.ListConversations(skip, limit))
}

// GET /conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.backend.GetConversation(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, conv)
}

// DELETE /conversations/:id
func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.backend.DeleteConversation(c.Param("id")); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Conversation deleted"})
}

// POST /conversations/:id/messages/
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "empty_message", errors.New("content must not be empty"))
		return
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	msg, err := h.backend.SendMessage(c.Param("id"), role, req.Content)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, msg)
}

// GET /conversations/:id/messages/?skip=0&limit=50
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	skip, limit := paging(c, 50)
	page, err := h.backend.ListMessages(c.Param("id"), skip, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

func paging(c *gin.Context, defLimit int) (int, int) {
	skip, limit := 0, defLimit
	if v := strings.TrimSpace(c.Query("skip")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return skip, limit
}
