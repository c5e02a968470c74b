package domain

import (
	"context"
	"testing"
)

func TestGenerationUsage_RoundTrip(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())

	got := UsageFromContext(ctx)
	if got != u {
		t.Fatal("expected the same collector back from context")
	}

	got.AddTokens(120)
	got.AddTokens(30)

	if u.TotalTokens != 150 {
		t.Errorf("expected 150 tokens, got %d", u.TotalTokens)
	}
	if !u.Used {
		t.Error("expected Used to be set")
	}
}

func TestGenerationUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatalf("expected nil collector, got %+v", u)
	}
	u.AddTokens(10) // must not panic
}
