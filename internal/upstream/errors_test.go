package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIsSentinels(t *testing.T) {
	timeout := FromTransport("humantic", context.DeadlineExceeded)
	if !errors.Is(timeout, ErrTimeout) || !errors.Is(timeout, ErrUnavailable) {
		t.Fatalf("timeout should match ErrTimeout and ErrUnavailable")
	}
	if errors.Is(timeout, ErrRejected) {
		t.Fatalf("timeout should not match ErrRejected")
	}

	netErr := FromTransport("humantic", errors.New("connection refused"))
	if !errors.Is(netErr, ErrUnavailable) || errors.Is(netErr, ErrTimeout) {
		t.Fatalf("network error should only match ErrUnavailable")
	}

	rej := Rejected("humantic", 403, "invalid api key")
	wrapped := fmt.Errorf("create subject: %w", rej)
	if !errors.Is(wrapped, ErrRejected) || errors.Is(wrapped, ErrUnavailable) {
		t.Fatalf("rejected error should only match ErrRejected")
	}
	got, ok := As(wrapped)
	if !ok || got.StatusCode != 403 || got.Message != "invalid api key" {
		t.Fatalf("unexpected unwrapped error: %+v", got)
	}
}

func TestRejectedDefaultMessage(t *testing.T) {
	err := Rejected("humantic", 500, "")
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status in message, got %q", err.Error())
	}
}
