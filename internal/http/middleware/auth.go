package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/neurobridge-docchat/internal/http/response"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

// SubjectKey holds the verified token subject in the gin context.
const SubjectKey = "subject"

var (
	errMissingToken = errors.New("missing or invalid token")
	errExpiredToken = errors.New("token expired")
	errInvalidToken = errors.New("token invalid")
)

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	parser *jwt.Parser
}

// NewAuthMiddleware verifies HS256 bearer tokens signed with secret.
func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthMiddleware{
		log:    log.With("middleware", "auth"),
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (am *AuthMiddleware) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return am.secret, nil
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the token subject under SubjectKey otherwise.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errMissingToken)
			return
		}
		var claims jwt.RegisteredClaims
		if _, err := am.parser.ParseWithClaims(raw, &claims, am.key); err != nil {
			am.log.Debug("token rejected", "error", err)
			reason := errInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = errExpiredToken
			}
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", reason)
			return
		}
		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(rest)
	return tok, tok != ""
}
