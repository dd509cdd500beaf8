package ctxutil

import (
	"context"
	"testing"
)

func TestUserID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if got := GetUserID(ctx); got != 0 {
		t.Errorf("expected 0 for unset user ID, got %d", got)
	}

	ctx = WithUserID(ctx, 42)
	if got := GetUserID(ctx); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestChatID(t *testing.T) {
	t.Parallel()
	ctx := WithChatID(context.Background(), -100123)
	if got := GetChatID(ctx); got != -100123 {
		t.Errorf("expected -100123, got %d", got)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if _, ok := GetRequestID(ctx); ok {
		t.Error("expected no request ID on empty context")
	}

	ctx = WithRequestID(ctx, "req-1")
	id, ok := GetRequestID(ctx)
	if !ok || id != "req-1" {
		t.Errorf("expected req-1, got %q (ok=%v)", id, ok)
	}
}
