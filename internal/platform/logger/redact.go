package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const redacted = "[REDACTED]"

// Keys whose values are dropped. A key matches when it contains one of
// these, except content which must match exactly so content_type survives.
var secretKeyParts = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey"}

// Keys whose values are replaced by a salted hash prefix: stable enough to
// correlate lines, useless for recovering the value.
var hashedKeyParts = []string{"user_id", "filename"}

type redactor struct {
	on   bool
	salt string
}

func newRedactor(on bool, salt string) *redactor {
	return &redactor{on: on, salt: salt}
}

// pairs scrubs a key/value list. A trailing key without a value is kept.
func (r *redactor) pairs(kv []interface{}) []interface{} {
	if r == nil || !r.on || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		out = append(out, key, r.value(normKey(key), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (r *redactor) value(key string, v interface{}) interface{} {
	switch {
	case key == "content" || containsAny(key, secretKeyParts):
		return redacted
	case containsAny(key, hashedKeyParts):
		return r.hash(v)
	}
	switch t := v.(type) {
	case string:
		if looksLikeJWT(t) {
			return redacted
		}
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, vv := range t {
			out[k] = r.value(normKey(k), vv)
		}
		return out
	}
	return v
}

func (r *redactor) hash(v interface{}) string {
	raw := strings.TrimSpace(fmt.Sprint(v))
	if v == nil || raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func normKey(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

func containsAny(s string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
