package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRedactorScrubsSecrets(t *testing.T) {
	r := newRedactor(true, "")
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	out := r.pairs([]interface{}{
		"authorization", "Bearer abc",
		"content", "hello there",
		"content_type", "text/plain",
		"note", jwt,
		"status", 200,
	})
	if len(out) != 10 {
		t.Fatalf("len: want=10 got=%d", len(out))
	}
	want := []interface{}{redacted, redacted, "text/plain", redacted, 200}
	for i, w := range want {
		if out[2*i+1] != w {
			t.Fatalf("%v: want=%v got=%v", out[2*i], w, out[2*i+1])
		}
	}
}

func TestRedactorHashesWithSalt(t *testing.T) {
	a := newRedactor(true, "a").pairs([]interface{}{"filename", "taxes-2025.pdf"})[1].(string)
	b := newRedactor(true, "b").pairs([]interface{}{"filename", "taxes-2025.pdf"})[1].(string)
	if !strings.HasPrefix(a, "hash:") || len(a) != len("hash:")+12 {
		t.Fatalf("filename: want hashed got=%q", a)
	}
	if a == b {
		t.Fatalf("salt should change the hash")
	}
}

func TestRedactorNestedAndOddLength(t *testing.T) {
	r := newRedactor(true, "")
	out := r.pairs([]interface{}{"meta", map[string]interface{}{"api_key": "k", "n": 1}, "dangling"})
	m := out[1].(map[string]interface{})
	if m["api_key"] != redacted || m["n"] != 1 {
		t.Fatalf("nested: %v", m)
	}
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestRedactionOff(t *testing.T) {
	in := []interface{}{"authorization", "Bearer abc"}
	if out := newRedactor(false, "").pairs(in); out[1] != "Bearer abc" {
		t.Fatalf("redaction off should pass values through, got=%v", out[1])
	}
}

func TestNewWritesRedactedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	log, err := New("production", WithOutputs(path), WithRedaction(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("component", "test").Info("sent", "content", "my secret question", "conversation_id", "c-1")
	log.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	line := string(raw)
	if strings.Contains(line, "my secret question") || !strings.Contains(line, redacted) || !strings.Contains(line, "c-1") {
		t.Fatalf("unexpected log line: %s", line)
	}
}
