package env_test

import (
	"testing"
	"time"

	"stream-scorer/internal/env"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	if got := env.GetEnvString("TEST_STR", "fallback"); got != "value" {
		t.Fatalf("GetEnvString = %q", got)
	}
	if got := env.GetEnvString("TEST_STR_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("GetEnvString default = %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := env.GetEnvInt("TEST_INT", 7); got != 42 {
		t.Fatalf("GetEnvInt = %d", got)
	}
	t.Setenv("TEST_INT_BAD", "forty-two")
	if got := env.GetEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Fatalf("GetEnvInt with bad value = %d, want default", got)
	}
	if got := env.GetEnvInt("TEST_INT_MISSING", 7); got != 7 {
		t.Fatalf("GetEnvInt default = %d", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "750ms")
	if got := env.GetEnvDuration("TEST_DUR", time.Second); got != 750*time.Millisecond {
		t.Fatalf("GetEnvDuration = %v", got)
	}
	t.Setenv("TEST_DUR_BAD", "soon")
	if got := env.GetEnvDuration("TEST_DUR_BAD", time.Second); got != time.Second {
		t.Fatalf("GetEnvDuration with bad value = %v, want default", got)
	}
	if got := env.GetEnvDuration("TEST_DUR_MISSING", 2*time.Second); got != 2*time.Second {
		t.Fatalf("GetEnvDuration default = %v", got)
	}
}
