package domain

import (
	"github.com/yungbote/neurobridge-docchat/internal/domain/analytics"
	"github.com/yungbote/neurobridge-docchat/internal/domain/chat"
	"github.com/yungbote/neurobridge-docchat/internal/domain/common"
	"github.com/yungbote/neurobridge-docchat/internal/domain/documents"
)

type (
	Conversation      = chat.Conversation
	ConversationStats = chat.ConversationStats
	Message           = chat.Message
	Role              = chat.Role
	Origin            = chat.Origin

	Document       = documents.Document
	DocumentStatus = documents.Status
	File           = documents.File

	SystemOverview = analytics.SystemOverview
	Activity       = analytics.Activity
	PopularTopic   = analytics.PopularTopic
	Health         = analytics.Health
)

type Page[T any] = common.Page[T]

const (
	RoleUser      = chat.RoleUser
	RoleAssistant = chat.RoleAssistant

	OriginOptimistic = chat.OriginOptimistic
	OriginConfirmed  = chat.OriginConfirmed
	TempIDPrefix     = chat.TempIDPrefix

	StatusProcessing = documents.StatusProcessing
	StatusProcessed  = documents.StatusProcessed
	StatusReady      = documents.StatusReady
	StatusError      = documents.StatusError
)
