package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStatusKinds(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusBadRequest, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusTeapot, KindServer},
	}
	for _, tc := range cases {
		if got := FromStatus(tc.status, "", "").Kind; got != tc.want {
			t.Fatalf("status %d: want=%s got=%s", tc.status, tc.want, got)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("send message: %w", FromStatus(http.StatusNotFound, "missing", "no conversation"))
	if !Is(err, KindNotFound) {
		t.Fatalf("want not_found got=%s", KindOf(err))
	}
	if KindOf(context.DeadlineExceeded) != KindNetwork {
		t.Fatalf("deadline should classify as network")
	}
	if KindOf(errors.New("boom")) != KindServer {
		t.Fatalf("unknown should classify as server")
	}
	if KindOf(nil) != "" {
		t.Fatalf("nil should have empty kind")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Network(errors.New("dial"))) {
		t.Fatalf("network errors are retryable")
	}
	if !Retryable(FromStatus(http.StatusBadGateway, "", "")) {
		t.Fatalf("502 is retryable")
	}
	if !Retryable(FromStatus(http.StatusTooManyRequests, "", "")) {
		t.Fatalf("429 is retryable")
	}
	if Retryable(FromStatus(http.StatusNotFound, "", "")) {
		t.Fatalf("404 is not retryable")
	}
	if Retryable(New(KindFileTooLarge, "file_too_large", "too big")) {
		t.Fatalf("local pre-checks are not retryable")
	}
}

func TestLocal(t *testing.T) {
	if !Local(Validation("empty_message", "message is empty")) {
		t.Fatalf("validation pre-check should be local")
	}
	if Local(FromStatus(http.StatusUnprocessableEntity, "", "")) {
		t.Fatalf("server 422 is not local")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Validation("too_long", "Message exceeds 4000 characters.")); got != "Message exceeds 4000 characters." {
		t.Fatalf("validation message: got=%q", got)
	}
	if got := UserMessage(FromStatus(http.StatusUnauthorized, "", "")); got == "" {
		t.Fatalf("expected unauthorized message")
	}
	if got := UserMessage(nil); got != "" {
		t.Fatalf("nil: want empty got=%q", got)
	}
}
