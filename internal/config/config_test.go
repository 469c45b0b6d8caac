package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DOCCHAT_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("base_url: want=%q got=%q", "http://localhost:8000", c.API.BaseURL)
	}
	if c.API.MaxRetries != 3 || c.API.RetryDelay != time.Second || c.API.Timeout != 30*time.Second {
		t.Fatalf("api defaults: got=%+v", c.API)
	}
	if c.Chat.MaxMessageLength != 4000 {
		t.Fatalf("max_message_length: want=4000 got=%d", c.Chat.MaxMessageLength)
	}
	if c.Documents.MaxFileSize != 10*1024*1024 || c.Documents.PollInterval != 2*time.Second {
		t.Fatalf("documents defaults: got=%+v", c.Documents)
	}
	if c.Cache.StaleTime != 5*time.Second || c.Cache.TopicsStaleTime != 5*time.Minute {
		t.Fatalf("cache defaults: got=%+v", c.Cache)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	body := "api:\n  base_url: http://files.example:9000/\n  max_retries: 1\ndocuments:\n  poll_interval: 500ms\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCCHAT_CONFIG", path)
	t.Setenv("DOCCHAT_API_MAX_RETRIES", "5")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.API.BaseURL != "http://files.example:9000" {
		t.Fatalf("base_url: want trailing slash trimmed got=%q", c.API.BaseURL)
	}
	if c.API.MaxRetries != 5 {
		t.Fatalf("env should override file: got=%d", c.API.MaxRetries)
	}
	if c.Documents.PollInterval != 500*time.Millisecond {
		t.Fatalf("poll_interval: got=%s", c.Documents.PollInterval)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv("DOCCHAT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	isolate(t)
	t.Setenv("DOCCHAT_API_BASE_URL", "not a url")
	t.Setenv("DOCCHAT_CHAT_MAX_MESSAGE_LENGTH", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error")
	}
}
