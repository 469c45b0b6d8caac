package client

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
)

// parseHTTPError understands both the `{"error":{"message","code"}}` envelope
// and the `{"detail": ...}` shape, falling back to the status text.
func parseHTTPError(status int, raw []byte) *apierr.Error {
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	msg, code := "", ""
	if err := json.Unmarshal(raw, &env); err == nil {
		msg = strings.TrimSpace(env.Error.Message)
		code = strings.TrimSpace(env.Error.Code)
		if msg == "" && len(env.Detail) > 0 {
			msg = detailMessage(env.Detail)
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return apierr.FromStatus(status, code, msg)
}

func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	// Validation failures arrive as a list of {loc, msg}.
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				parts = append(parts, m)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
