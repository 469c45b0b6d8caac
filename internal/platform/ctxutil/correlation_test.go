package ctxutil

import (
	"context"
	"testing"
)

func TestWithSessionIDKeepsOtherFields(t *testing.T) {
	ctx := WithCorrelation(context.Background(), Correlation{RequestID: "r-1"})
	ctx = WithSessionID(ctx, "s-1")
	c, ok := CorrelationFrom(ctx)
	if !ok || c.SessionID != "s-1" || c.RequestID != "r-1" {
		t.Fatalf("unexpected correlation: %+v ok=%v", c, ok)
	}
}

func TestFieldsSkipsEmptyAndFirstAttempt(t *testing.T) {
	got := Correlation{RequestID: "r-1", Attempt: 1}.Fields()
	if len(got) != 2 || got[0] != "request_id" {
		t.Fatalf("fields: %v", got)
	}
	got = Correlation{SessionID: "s", Attempt: 3}.Fields()
	if len(got) != 4 || got[3] != 3 {
		t.Fatalf("fields: %v", got)
	}
}

func TestParseAttempt(t *testing.T) {
	cases := map[string]int{"": 1, "0": 1, "x": 1, "2": 2}
	for in, want := range cases {
		if got := ParseAttempt(in); got != want {
			t.Fatalf("ParseAttempt(%q): want=%d got=%d", in, want, got)
		}
	}
}
