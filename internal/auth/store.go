package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

// Store holds the bearer credential for the lifetime of the process.
// Nothing is written to disk.
type Store struct {
	mu    sync.RWMutex
	token string

	log              *logger.Logger
	now              func() time.Time
	onSessionExpired func()
}

type Option func(*Store)

// WithSessionExpired registers the hook invoked after the credential is
// cleared because the server rejected it. It typically routes the user back
// to a sign-in entry point.
func WithSessionExpired(fn func()) Option {
	return func(s *Store) { s.onSessionExpired = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(log *logger.Logger, token string, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		token: strings.TrimSpace(token),
		log:   log.With("component", "AuthStore"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Set(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Expired reports whether the token carries an exp claim in the past.
// The signature is not checked; the server stays authoritative. Opaque
// tokens and tokens without exp are never considered expired.
func (s *Store) Expired() bool {
	tok := s.Token()
	if tok == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

// Expire clears the credential and signals the session-expired hook once per
// held credential.
func (s *Store) Expire() {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	hook := s.onSessionExpired
	s.mu.Unlock()

	s.log.Warn("session expired; credential cleared", "had_credential", had)
	if had && hook != nil {
		hook()
	}
}
