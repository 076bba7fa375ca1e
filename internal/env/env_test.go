package env

import (
	"testing"
	"time"
)

func TestGetString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")

	if got := GetString("TEST_STRING", "fallback"); got != "value" {
		t.Errorf("expected %q, got %q", "value", got)
	}
	if got := GetString("TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("TEST_INT", "8080")
	t.Setenv("TEST_INT_BAD", "not a number")

	if got := GetInt("TEST_INT", 1); got != 8080 {
		t.Errorf("expected 8080, got %d", got)
	}
	if got := GetInt("TEST_INT_BAD", 1); got != 1 {
		t.Errorf("expected fallback on unparsable value, got %d", got)
	}
	if got := GetInt("TEST_INT_MISSING", 1); got != 1 {
		t.Errorf("expected fallback, got %d", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BOOL_BAD", "yep")

	if got := GetBool("TEST_BOOL", false); !got {
		t.Error("expected true")
	}
	if got := GetBool("TEST_BOOL_BAD", false); got {
		t.Error("expected fallback on unparsable value")
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "720h")

	if got := GetDuration("TEST_DURATION", time.Minute); got != 720*time.Hour {
		t.Errorf("expected 720h, got %v", got)
	}
	if got := GetDuration("TEST_DURATION_MISSING", time.Minute); got != time.Minute {
		t.Errorf("expected fallback, got %v", got)
	}
}
