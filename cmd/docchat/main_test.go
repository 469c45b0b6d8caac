package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/realtime"
)

func withOutput(t *testing.T, format string) {
	t.Helper()
	prev := outputFormat
	outputFormat = format
	t.Cleanup(func() { outputFormat = prev })
}

func TestRenderFormats(t *testing.T) {
	v := map[string]int{"total": 3}
	text := func(w io.Writer) { fmt.Fprint(w, "three") }

	withOutput(t, "json")
	var buf bytes.Buffer
	require.NoError(t, render(&buf, v, text))
	assert.JSONEq(t, `{"total":3}`, buf.String())

	outputFormat = "yaml"
	buf.Reset()
	require.NoError(t, render(&buf, v, text))
	assert.Equal(t, "total: 3\n", buf.String())

	outputFormat = "text"
	buf.Reset()
	require.NoError(t, render(&buf, v, text))
	assert.Equal(t, "three", buf.String())
}

func TestErrorLine(t *testing.T) {
	prev := verbose
	t.Cleanup(func() { verbose = prev })

	verbose = false
	err := fmt.Errorf("upload: %w", apierr.New(apierr.KindFileTooLarge, "file_too_large", "File exceeds 10 MB."))
	assert.Equal(t, "File exceeds 10 MB.", errorLine(err))
	assert.Equal(t, "plain failure", errorLine(errors.New("plain failure")))

	verbose = true
	line := errorLine(apierr.FromStatus(503, "", "down"))
	assert.True(t, strings.HasPrefix(line, "Something went wrong."), line)
	assert.Contains(t, line, "503")
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table(&buf, []string{"ID"}, nil)
	assert.Contains(t, buf.String(), "(none)")
}

func TestTablePadsColumns(t *testing.T) {
	var buf bytes.Buffer
	table(&buf, []string{"ID", "NAME"}, [][]string{{"1", "alpha"}, {"22", "b"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1   alpha", lines[1])
	assert.Equal(t, "22  b", lines[2])
}

func TestDetectContentType(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"notes.md":    "text/markdown",
		"paper.pdf":   "application/pdf",
		"report.DOCX": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"blob":        "text/plain; charset=utf-8",
	}
	for name, want := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))
		f, err := os.Open(path)
		require.NoError(t, err)
		assert.Equal(t, want, detectContentType(path, f), name)
		_ = f.Close()
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"chat", "conversations", "docs", "analytics", "health", "mock-server"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.Equal(t, "true", mockServerCmd.Annotations["offline"])
}

func TestPrintEventsDrainsSubscriber(t *testing.T) {
	hub := realtime.NewHub(nil)
	sub := hub.Subscribe("session:s-1")
	defer hub.CloseSubscriber(sub)

	hub.Broadcast(realtime.Message{Channel: "session:s-1", Event: realtime.EventMessageAppended})
	hub.Broadcast(realtime.Message{Channel: "session:s-1", Event: realtime.EventMessageConfirmed})

	var buf bytes.Buffer
	dropped := printEvents(&buf, sub, 0)
	assert.Equal(t, int64(0), dropped)
	assert.Contains(t, buf.String(), "event message.appended")
	assert.Contains(t, buf.String(), "event message.confirmed")

	buf.Reset()
	printEvents(&buf, sub, dropped)
	assert.Empty(t, buf.String())
	assert.Equal(t, int64(0), printEvents(&buf, nil, 0))
}
