package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("DOCCHAT_TEST_INT", "abc")
	if got := Int("DOCCHAT_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("DOCCHAT_TEST_INT", " 42 ")
	if got := Int("DOCCHAT_TEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("DOCCHAT_TEST_BOOL", "")
	if !Bool("DOCCHAT_TEST_BOOL", true) {
		t.Fatalf("Bool: empty should use default")
	}
	t.Setenv("DOCCHAT_TEST_BOOL", "on")
	if !Bool("DOCCHAT_TEST_BOOL", false) {
		t.Fatalf("Bool: on should be true")
	}
	t.Setenv("DOCCHAT_TEST_BOOL", "nope")
	if Bool("DOCCHAT_TEST_BOOL", true) {
		t.Fatalf("Bool: unknown should be false")
	}
}

func TestFloatAndString(t *testing.T) {
	t.Setenv("DOCCHAT_TEST_FLOAT", "0.25")
	if got := Float("DOCCHAT_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	t.Setenv("DOCCHAT_TEST_STRING", "  ")
	if got := String("DOCCHAT_TEST_STRING", "def"); got != "def" {
		t.Fatalf("String: want=def got=%q", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("DOCCHAT_TEST_DURATION", "250ms")
	if got := Duration("DOCCHAT_TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Fatalf("Duration: want=250ms got=%v", got)
	}
	t.Setenv("DOCCHAT_TEST_DURATION", "soon")
	if got := Duration("DOCCHAT_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("Duration: want=1s got=%v", got)
	}
}
