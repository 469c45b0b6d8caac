// Package fakeapi serves the document-chat HTTP API from memory. It backs
// integration tests and the mock-server command.
package fakeapi

import (
	"context"
	"mime"
	"net"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	httpserver "github.com/yungbote/neurobridge-docchat/internal/http"
	httpH "github.com/yungbote/neurobridge-docchat/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-docchat/internal/http/middleware"
	"github.com/yungbote/neurobridge-docchat/internal/ingestion"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

type Options struct {
	// ProcessAfterReads is how many status reads a document stays in
	// processing for.
	ProcessAfterReads int
	// JWTSecret turns on bearer auth when set.
	JWTSecret   string
	MaxFileSize int64
	Origins     []string
	Reply       func(content string) string
	Now         func() time.Time
}

type Server struct {
	State  *State
	server *httpserver.Server
}

func New(log *logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Nop()
	}
	gin.SetMode(gin.ReleaseMode)
	log = log.With("component", "FakeAPI")
	state := newState(opts)

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = ingestion.DefaultMaxFileSize
	}
	cfg := httpserver.RouterConfig{
		Log:                 log,
		Origins:             opts.Origins,
		Faults:              state,
		ConversationHandler: httpH.NewConversationHandler(state),
		DocumentHandler:     httpH.NewDocumentHandler(state, maxSize, MaxExtractBytes, allowedType),
		AnalyticsHandler:    httpH.NewAnalyticsHandler(state),
		HealthHandler:       httpH.NewHealthHandler(state),
	}
	if opts.JWTSecret != "" {
		cfg.AuthMiddleware = httpMW.NewAuthMiddleware(log, opts.JWTSecret)
	}
	return &Server{State: state, server: httpserver.NewServer(cfg)}
}

func (s *Server) Handler() *gin.Engine { return s.server.Engine }

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return s.server.Serve(ctx, ln)
}

func (s *Server) Run(ctx context.Context, addr string) error {
	return s.server.Run(ctx, addr)
}

// NewTestServer starts s on a loopback httptest server.
func (s *Server) NewTestServer() *httptest.Server {
	return httptest.NewServer(s.server.Engine)
}

func allowedType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err != nil {
		return false
	}
	mt = strings.ToLower(mt)
	for _, t := range ingestion.DefaultAllowedTypes {
		if t == mt {
			return true
		}
	}
	return false
}
