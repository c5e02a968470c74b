package generation

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/trebound/catalog-search/internal/domain"
	"github.com/trebound/catalog-search/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterGenerationMetrics()
	os.Exit(m.Run())
}

type mockGenerator struct {
	gen   domain.Generation
	err   error
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, _, _ string) (domain.Generation, error) {
	m.calls++
	return m.gen, m.err
}

func TestInstrumentedGenerator_Success(t *testing.T) {
	inner := &mockGenerator{gen: domain.Generation{Text: "Try the treasure hunt.", TotalTokens: 80}}
	g := NewInstrumentedGenerator(inner, "openai", "gpt-4o-mini", nil, zap.NewNop())

	gen, err := g.Generate(context.Background(), "instruction", "facts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Text != "Try the treasure hunt." || gen.TotalTokens != 80 {
		t.Errorf("unexpected generation %+v", gen)
	}
}

func TestInstrumentedGenerator_WrapsError(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrGenerationFailed}
	g := NewInstrumentedGenerator(inner, "openai", "gpt-4o-mini", nil, zap.NewNop())

	_, err := g.Generate(context.Background(), "instruction", "facts")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestInstrumentedGenerator_BudgetRejection(t *testing.T) {
	budget := NewBudgetTracker("test-budget", Limits{Daily: 100}, BudgetActionReject, zap.NewNop())
	budget.Record(100)

	inner := &mockGenerator{gen: domain.Generation{Text: "unused"}}
	g := NewInstrumentedGenerator(inner, "test-budget", "model", budget, zap.NewNop())

	_, err := g.Generate(context.Background(), "instruction", "facts")
	if !errors.Is(err, domain.ErrGenerationQuotaExceeded) {
		t.Fatalf("expected ErrGenerationQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner generator must not be called when the budget is exhausted")
	}
}

func TestInstrumentedGenerator_RecordsBudgetAndMetrics(t *testing.T) {
	budget := NewBudgetTracker("test-record", Limits{Daily: 1000, Monthly: 5000}, BudgetActionReject, zap.NewNop())
	inner := &mockGenerator{gen: domain.Generation{Text: "ok", PromptTokens: 150, CompletionTokens: 50, TotalTokens: 200}}
	g := NewInstrumentedGenerator(inner, "test-record", "model", budget, zap.NewNop())

	if _, err := g.Generate(context.Background(), "instruction", "facts"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := budget.RemainingDaily(); got != 800 {
		t.Errorf("expected daily remaining 800, got %d", got)
	}
	gauge := metrics.GenerationBudgetTokensRemaining.WithLabelValues("test-record", "monthly")
	if got := testutil.ToFloat64(gauge); got != 4800 {
		t.Errorf("expected monthly gauge 4800, got %v", got)
	}
}
