package chi

import (
	"encoding/json"
	"time"

	"github.com/trebound/catalog-search/internal/domain/search/result"
	domusage "github.com/trebound/catalog-search/internal/domain/usage"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest    = "bad_request"
	codeInvalidQuery  = "invalid_query"
	codeUnauthorized  = "unauthorized"
	codeInternalError = "internal_error"
)

type searchRequest struct {
	Query json.RawMessage `json:"query"`
}

// query returns the query string; ok is false when it is missing or not a string.
func (r searchRequest) query() (string, bool) {
	if len(r.Query) == 0 {
		return "", false
	}
	var q string
	if err := json.Unmarshal(r.Query, &q); err != nil {
		return "", false
	}
	return q, true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

type itemResponse struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	Tagline        string   `json:"tagline,omitempty"`
	Description    string   `json:"description,omitempty"`
	Location       string   `json:"location,omitempty"`
	Facets         []string `json:"facets,omitempty"`
	ActivityType   string   `json:"activityType,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	GroupSize      string   `json:"groupSize,omitempty"`
	Image          string   `json:"image,omitempty"`
	RelevanceScore int      `json:"relevanceScore"`
	MatchedVia     string   `json:"matchedVia"`
}

type searchResponse struct {
	Answer               string         `json:"answer"`
	Activities           []itemResponse `json:"activities"`
	Venues               []itemResponse `json:"venues"`
	Destinations         []itemResponse `json:"destinations"`
	Suggestions          []string       `json:"suggestions"`
	UsedGenerativeAnswer bool           `json:"usedGenerativeAnswer"`
	Confidence           float64        `json:"confidence"`
	TotalResults         int            `json:"totalResults"`
	ElapsedMs            int64          `json:"elapsedMs"`
}

func searchResultToDTO(r *result.SearchResult) searchResponse {
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return searchResponse{
		Answer:               r.Answer,
		Activities:           itemsToDTO(r.Activities),
		Venues:               itemsToDTO(r.Venues),
		Destinations:         itemsToDTO(r.Destinations),
		Suggestions:          suggestions,
		UsedGenerativeAnswer: r.UsedGenerativeAnswer,
		Confidence:           r.Confidence,
		TotalResults:         r.TotalResults,
		ElapsedMs:            r.Elapsed.Milliseconds(),
	}
}

func itemsToDTO(items []result.ScoredItem) []itemResponse {
	out := make([]itemResponse, len(items))
	for i := range items {
		it := &items[i]
		out[i] = itemResponse{
			ID:             it.ID,
			Kind:           string(it.Kind),
			Name:           it.Name,
			Slug:           it.Slug,
			Tagline:        it.Tagline,
			Description:    it.Description,
			Location:       it.Location,
			Facets:         it.Facets,
			ActivityType:   it.ActivityType,
			Duration:       it.Duration,
			GroupSize:      it.GroupSize,
			Image:          it.Image,
			RelevanceScore: it.Score,
			MatchedVia:     it.MatchedVia.String(),
		}
	}
	return out
}

type usageResponse struct {
	Period        string      `json:"period"`
	PeriodStartAt time.Time   `json:"periodStartAt"`
	PeriodEndAt   time.Time   `json:"periodEndAt"`
	Tokens        int64       `json:"tokens"`
	Budget        budgetState `json:"budget"`
}

type budgetState struct {
	TokensLimit     int64     `json:"tokensLimit"`
	TokensRemaining int64     `json:"tokensRemaining"`
	IsExhausted     bool      `json:"isExhausted"`
	ResetsAt        time.Time `json:"resetsAt"`
}

func usageToDTO(r domusage.Report) usageResponse {
	return usageResponse{
		Period:        string(r.Period),
		PeriodStartAt: r.Start,
		PeriodEndAt:   r.End,
		Tokens:        r.Tokens,
		Budget: budgetState{
			TokensLimit:     r.Limit,
			TokensRemaining: r.Remaining,
			IsExhausted:     r.Exhausted(),
			ResetsAt:        r.End,
		},
	}
}
