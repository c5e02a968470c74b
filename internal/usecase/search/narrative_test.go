package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/trebound/catalog-search/internal/domain"
	"github.com/trebound/catalog-search/internal/domain/catalog"
)

// --- Mocks ---

type mockGenerator struct {
	text        string
	err         error
	block       bool
	tokens      int
	called      bool
	instruction string
	context     string
}

func (m *mockGenerator) Generate(ctx context.Context, instruction, facts string) (domain.Generation, error) {
	m.called = true
	m.instruction = instruction
	m.context = facts
	if m.block {
		<-ctx.Done()
		return domain.Generation{}, ctx.Err()
	}
	if m.err != nil {
		return domain.Generation{}, m.err
	}
	return domain.Generation{Text: m.text, TotalTokens: m.tokens}, nil
}

func narrativeSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Activities: []catalog.Item{
			{
				Kind: catalog.KindActivity, Name: "Virtual Escape Room Challenge", Slug: "virtual-escape-room",
				Tagline: "Solve it together", ActivityType: "Virtual", GroupSize: "10-50 people",
			},
			{Kind: catalog.KindActivity, Name: "Drum Circle", Slug: "drum-circle", ActivityType: "Indoor"},
		},
		Venues: []catalog.Item{
			{Kind: catalog.KindVenue, Name: "Hill Resort", Slug: "hill-resort", Location: "Coorg", Facets: []string{"Pool"}},
		},
		Destinations: []catalog.Item{
			{Kind: catalog.KindDestination, Name: "Goa", Slug: "goa", Location: "West India"},
		},
		FetchedAt: time.Now(),
	}
}

// --- Tests ---

func TestRespond_UsesGenerator(t *testing.T) {
	gen := &mockGenerator{text: "  Try the Virtual Escape Room Challenge!  ", tokens: 42}
	ctx, usage := domain.NewContextWithUsage(context.Background())

	got := NewResponder(gen).Respond(ctx, "virtual escape", narrativeSnapshot())

	if !got.Generated {
		t.Error("expected generated narrative")
	}
	if got.Text != "Try the Virtual Escape Room Challenge!" {
		t.Errorf("unexpected text %q", got.Text)
	}
	if !strings.Contains(gen.instruction, `"virtual escape"`) {
		t.Errorf("instruction must quote the query, got %q", gen.instruction)
	}
	if !strings.Contains(gen.context, "Slug: virtual-escape-room") {
		t.Errorf("context must list item slugs, got %q", gen.context)
	}
	if !strings.Contains(gen.context, "VENUES (1 available)") {
		t.Errorf("context must group venues with a count, got %q", gen.context)
	}
	if usage.TotalTokens != 42 {
		t.Errorf("expected 42 tokens recorded, got %d", usage.TotalTokens)
	}
}

func TestRespond_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{"nil generator", nil},
		{"provider error", &mockGenerator{err: domain.ErrGenerationFailed}},
		{"quota exceeded", &mockGenerator{err: domain.ErrGenerationQuotaExceeded}},
		{"blank output", &mockGenerator{text: "   \n"}},
		{"timeout", &mockGenerator{block: true}},
	}

	snap := narrativeSnapshot()
	want := Fallback("escape room", snap)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResponder(tc.gen).WithTimeout(20 * time.Millisecond)
			got := r.Respond(context.Background(), "escape room", snap)

			if got.Generated {
				t.Error("expected fallback narrative")
			}
			if got.Text != want {
				t.Errorf("expected fallback text %q, got %q", want, got.Text)
			}
		})
	}
}

func TestFallbackReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, reasonTimeout},
		{domain.ErrGenerationQuotaExceeded, reasonQuota},
		{domain.ErrGenerationEmpty, reasonEmpty},
		{errors.New("boom"), reasonError},
	}
	for _, tc := range tests {
		if got := fallbackReason(tc.err); got != tc.want {
			t.Errorf("fallbackReason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestFallback_WithMatches(t *testing.T) {
	got := Fallback("virtual escape room in goa", narrativeSnapshot())

	for _, want := range []string{
		`Great! I found 2 options for "virtual escape room in goa".`,
		`We have 1 activities including "Virtual Escape Room Challenge" which is perfect for 10-50 people.`,
		"We also cover 1 destinations including Goa.",
		"Explore the options below",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("fallback missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "venues like") {
		t.Errorf("fallback must skip collections without matches: %q", got)
	}
}

func TestFallback_NoMatches(t *testing.T) {
	got := Fallback("paintball", narrativeSnapshot())
	if !strings.HasPrefix(got, `I couldn't find exact matches for "paintball"`) {
		t.Errorf("unexpected apology %q", got)
	}
}

func TestFallback_VenueDefaults(t *testing.T) {
	snap := catalog.Snapshot{Venues: []catalog.Item{{Name: "Lake Villa", Slug: "lake-villa"}}}
	got := Fallback("villa", snap)
	if !strings.Contains(got, `Plus 1 venues like "Lake Villa" in premium locations.`) {
		t.Errorf("unexpected venue sentence in %q", got)
	}
}

func TestInstruction_Versioned(t *testing.T) {
	got, err := Instruction("  corporate offsite ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, `"corporate offsite"`) {
		t.Errorf("expected trimmed query in instruction, got %q", got)
	}
	if !strings.Contains(got, "under 200 words") {
		t.Errorf("expected word limit in instruction, got %q", got)
	}
	if instructionTemplate.Name() != PromptVersion {
		t.Errorf("template name = %q, want %q", instructionTemplate.Name(), PromptVersion)
	}
}
