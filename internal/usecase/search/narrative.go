package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/trebound/catalog-search/internal/domain"
	"github.com/trebound/catalog-search/internal/domain/catalog"
	"github.com/trebound/catalog-search/internal/logger"
	"github.com/trebound/catalog-search/internal/metrics"
)

// PromptVersion names the instruction template sent to the generator.
const PromptVersion = "search-answer/v1"

const (
	defaultNarrativeTimeout = 8 * time.Second
	answerMaxWords          = 200
)

var instructionTemplate = template.Must(template.New(PromptVersion).Parse(
	`Based on the catalog data provided, analyze the search query "{{.Query}}" and provide a helpful response.

The user is looking for team building activities, venues, or destinations. Provide a conversational response that:
1. Acknowledges their search query
2. Highlights relevant options from the actual data
3. Suggests specific activities or venues that match their needs
4. Is helpful and engaging

Keep the response under {{.MaxWords}} words and mention specific items from the data when relevant.`))

// Fallback reasons reported in metrics.
const (
	reasonDisabled = "disabled"
	reasonError    = "error"
	reasonTimeout  = "timeout"
	reasonEmpty    = "empty"
	reasonQuota    = "quota"
)

// Narrative is the human-readable answer to a query.
type Narrative struct {
	Text string
	// Generated is true when Text came from the generator rather than the template.
	Generated bool
}

// Responder writes the answer text for a query. It prefers the generator and
// falls back to a deterministic template on any failure.
type Responder struct {
	gen     Generator
	timeout time.Duration
}

// NewResponder creates a responder. A nil generator always uses the fallback.
func NewResponder(gen Generator) *Responder {
	return &Responder{gen: gen, timeout: defaultNarrativeTimeout}
}

// WithTimeout bounds each generation call.
func (r *Responder) WithTimeout(d time.Duration) *Responder {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Respond never fails. Generation errors, timeouts and blank output all
// produce the fallback narrative.
func (r *Responder) Respond(ctx context.Context, query string, snap catalog.Snapshot) Narrative {
	if r.gen == nil {
		metrics.NarrativeFallbacksTotal.WithLabelValues(reasonDisabled).Inc()
		return Narrative{Text: Fallback(query, snap)}
	}

	instruction, err := Instruction(query)
	if err != nil {
		logger.FromContext(ctx).Error("Render instruction failed", zap.Error(err))
		metrics.NarrativeFallbacksTotal.WithLabelValues(reasonError).Inc()
		return Narrative{Text: Fallback(query, snap)}
	}

	genCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	gen, err := r.gen.Generate(genCtx, instruction, BuildContext(query, snap))
	if err == nil && strings.TrimSpace(gen.Text) == "" {
		err = domain.ErrGenerationEmpty
	}
	if err != nil {
		reason := fallbackReason(err)
		logger.FromContext(ctx).Warn("Generated answer unavailable, using fallback",
			zap.String("reason", reason),
			zap.String("prompt_version", PromptVersion),
			zap.Error(err),
		)
		metrics.NarrativeFallbacksTotal.WithLabelValues(reason).Inc()
		return Narrative{Text: Fallback(query, snap)}
	}

	domain.UsageFromContext(ctx).AddTokens(gen.TotalTokens)
	return Narrative{Text: strings.TrimSpace(gen.Text), Generated: true}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return reasonTimeout
	case errors.Is(err, domain.ErrGenerationQuotaExceeded):
		return reasonQuota
	case errors.Is(err, domain.ErrGenerationEmpty):
		return reasonEmpty
	default:
		return reasonError
	}
}

// Instruction renders the versioned instruction template for a query.
func Instruction(query string) (string, error) {
	var b strings.Builder
	err := instructionTemplate.Execute(&b, struct {
		Query    string
		MaxWords int
	}{Query: strings.TrimSpace(query), MaxWords: answerMaxWords})
	if err != nil {
		return "", fmt.Errorf("execute %s: %w", PromptVersion, err)
	}
	return b.String(), nil
}

// BuildContext summarizes the snapshot for the generator: one line per item,
// grouped by collection with counts, followed by the query.
func BuildContext(query string, snap catalog.Snapshot) string {
	var b strings.Builder
	b.WriteString("CATALOG DATA:\n")
	for _, k := range catalog.Kinds {
		items := snap.Collection(k)
		fmt.Fprintf(&b, "\n%s (%d available):\n", collectionTitle(k), len(items))
		for _, item := range items {
			b.WriteString(contextLine(item))
			b.WriteByte('\n')
		}
	}
	fmt.Fprintf(&b, "\nSEARCH QUERY: %s", strconv.Quote(strings.TrimSpace(query)))
	return b.String()
}

func collectionTitle(k catalog.Kind) string {
	switch k {
	case catalog.KindActivity:
		return "ACTIVITIES"
	case catalog.KindVenue:
		return "VENUES"
	default:
		return "DESTINATIONS"
	}
}

func contextLine(item catalog.Item) string {
	parts := []string{kindLabel(item.Kind) + ": " + item.Name}
	for _, s := range []string{item.Tagline, item.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	labelled := []struct{ label, value string }{
		{"Type", item.ActivityType},
		{"Duration", item.Duration},
		{"Group", item.GroupSize},
		{locationLabel(item.Kind), item.Location},
		{"Features", strings.Join(item.Facets, ", ")},
		{"Slug", item.Slug},
	}
	for _, l := range labelled {
		if l.value != "" {
			parts = append(parts, l.label+": "+l.value)
		}
	}
	return strings.Join(parts, " - ")
}

func kindLabel(k catalog.Kind) string {
	switch k {
	case catalog.KindActivity:
		return "Activity"
	case catalog.KindVenue:
		return "Venue"
	default:
		return "Destination"
	}
}

func locationLabel(k catalog.Kind) string {
	if k == catalog.KindDestination {
		return "Region"
	}
	return "Location"
}

// Fallback builds the deterministic answer. It counts matches per collection
// with a plain containment test (full phrase or any keyword) that is
// independent of the relevance scorer.
func Fallback(query string, snap catalog.Snapshot) string {
	phrase := Phrase(query)
	words := Keywords(phrase)
	display := strings.TrimSpace(query)

	activities := fallbackMatches(snap.Activities, phrase, words)
	venues := fallbackMatches(snap.Venues, phrase, words)
	destinations := fallbackMatches(snap.Destinations, phrase, words)

	total := len(activities) + len(venues) + len(destinations)
	if total == 0 {
		return fmt.Sprintf("I couldn't find exact matches for %q, but don't worry! "+
			"Our team building experts can help you find the perfect activities. "+
			"We offer virtual activities, outdoor adventures and creative workshops. "+
			"Contact us to discuss your specific needs!", display)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Great! I found %d options for %q. ", total, display)
	if len(activities) > 0 {
		top := activities[0]
		fmt.Fprintf(&b, "We have %d activities including %q which is perfect for %s. ",
			len(activities), top.Name, orDefault(top.GroupSize, "teams"))
	}
	if len(venues) > 0 {
		top := venues[0]
		fmt.Fprintf(&b, "Plus %d venues like %q in %s. ",
			len(venues), top.Name, orDefault(top.Location, "premium locations"))
	}
	if len(destinations) > 0 {
		fmt.Fprintf(&b, "We also cover %d destinations including %s. ", len(destinations), destinations[0].Name)
	}
	b.WriteString("Explore the options below or contact our team for personalized recommendations!")
	return b.String()
}

func fallbackMatches(items []catalog.Item, phrase string, words []string) []catalog.Item {
	var out []catalog.Item
	for _, item := range items {
		text := strings.ToLower(strings.Join([]string{
			item.Name, item.Tagline, item.Description, item.ActivityType, item.Location,
		}, " "))
		if phrase != "" && strings.Contains(text, phrase) {
			out = append(out, item)
			continue
		}
		for _, w := range words {
			if strings.Contains(text, w) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
