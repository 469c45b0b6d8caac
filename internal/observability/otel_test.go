package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestParseHeaders(t *testing.T) {
	h := parseHeaders("x-api-key=abc, broken, =v,k=,tenant=docs")
	if len(h) != 2 || h["x-api-key"] != "abc" || h["tenant"] != "docs" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input should yield nil headers")
	}
}

func TestConfigFromEnvClampsRatio(t *testing.T) {
	cases := map[string]float64{"": 1, "0.25": 0.25, "-3": 0, "7": 1, "junk": 1}
	for raw, want := range cases {
		t.Setenv("OTEL_SAMPLER_RATIO", raw)
		if got := ConfigFromEnv("docchat").SampleRatio; got != want {
			t.Fatalf("ratio %q: want=%v got=%v", raw, want, got)
		}
	}
}

func TestConfigFromEnvServiceName(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	if got := ConfigFromEnv("docchat").ServiceName; got != "docchat" {
		t.Fatalf("service: want=docchat got=%q", got)
	}
	t.Setenv("OTEL_SERVICE_NAME", "docchat-ci")
	if got := ConfigFromEnv("docchat").ServiceName; got != "docchat-ci" {
		t.Fatalf("service: want=docchat-ci got=%q", got)
	}
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown := Init(context.Background(), nil, Config{})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitExportsSpansToWriter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown := Init(context.Background(), nil, Config{Enabled: true, SampleRatio: 1, Writer: &buf})
	_, span := otel.Tracer("test").Start(context.Background(), "docchat.test-span")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "docchat.test-span") {
		t.Fatalf("span not exported: %s", buf.String())
	}
}
