package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalPolicy holds the phrase lists and limits of the answer policy.
type RetrievalPolicy struct {
	// Greetings short-circuit to the greeting reply on equality or prefix.
	Greetings []string

	// DomainHints are substrings at least one of which must occur.
	DomainHints []string

	// FocusTerms mark hits about the V16 itself.
	FocusTerms []string

	// TopK is the number of nearest chunks fetched.
	TopK int

	// Keep is the number of hits used as context.
	Keep int

	// MaxContextChars truncates each cleaned hit, in runes.
	MaxContextChars int
}

// DefaultRetrievalPolicy returns the built-in lists and limits.
func DefaultRetrievalPolicy() RetrievalPolicy {
	return RetrievalPolicy{
		Greetings: []string{
			"hi", "hello", "hey",
			"how are you", "how r u",
			"what's up", "whats up",
			"thanks", "thank you",
		},
		DomainHints: []string{
			"cadillac", "v16", "v-16", "v 16", "fleetwood", "fisher",
			"coachbuilder", "body style", "body styles", "style", "chassis", "engine",
			"town car", "phaeton", "touring", "limousine", "sedan", "coupe", "landaulet",
		},
		FocusTerms:      []string{"v16", "v-16", "sixteen"},
		TopK:            5,
		Keep:            2,
		MaxContextChars: 500,
	}
}

// RetrievalService runs the gates, the vector search and the re-ranking,
// and assembles the context block for generation.
type RetrievalService struct {
	policy   RetrievalPolicy
	index    driven.VectorIndex
	embedder driven.EmbeddingService
}

// NewRetrievalService creates a retrieval service.
// A nil index puts the service in degraded mode: gated replies still
// work, everything else reports the knowledge base as not loaded.
func NewRetrievalService(
	policy RetrievalPolicy,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
) *RetrievalService {
	return &RetrievalService{
		policy:   policy,
		index:    index,
		embedder: embedder,
	}
}

// Decide applies the answer policy to a query.
func (s *RetrievalService) Decide(ctx context.Context, query string) (domain.Decision, error) {
	q := strings.TrimSpace(query)
	decision := domain.Decision{Query: q}

	logger.Section("Retrieval")
	logger.Debug("Query: %q", q)

	if s.IsGreeting(q) {
		logger.Debug("Greeting gate matched")
		return final(decision, domain.AnswerGreeting), nil
	}
	if !s.IsDomainQuestion(q) {
		logger.Debug("Domain gate rejected query")
		return final(decision, domain.AnswerOutOfDomain), nil
	}
	if s.index == nil {
		logger.Warn("Knowledge base not loaded, answering in degraded mode")
		return final(decision, domain.AnswerIndexUnavailable), nil
	}
	if s.embedder == nil {
		return decision, domain.ErrEmbeddingUnavailable
	}

	vector, err := s.embedder.Embed(ctx, q)
	if err != nil {
		return decision, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, s.policy.TopK)
	if errors.Is(err, domain.ErrIndexUnavailable) {
		logger.Warn("Knowledge base not loaded, answering in degraded mode")
		return final(decision, domain.AnswerIndexUnavailable), nil
	}
	if err != nil {
		return decision, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Raw hits: %d", len(hits))

	selected := s.Rerank(hits)
	if len(selected) == 0 {
		return final(decision, domain.AnswerInsufficient), nil
	}

	decision.Hits = selected
	decision.Context = s.BuildContext(selected)
	logger.Debug("Selected %d hits, context %d runes", len(selected), len([]rune(decision.Context)))
	return decision, nil
}

// IsGreeting reports whether the query equals or starts with a greeting.
func (s *RetrievalService) IsGreeting(query string) bool {
	ql := strings.ToLower(strings.TrimSpace(query))
	for _, g := range s.policy.Greetings {
		if ql == g || strings.HasPrefix(ql, g) {
			return true
		}
	}
	return false
}

// IsDomainQuestion reports whether the query contains a domain hint.
func (s *RetrievalService) IsDomainQuestion(query string) bool {
	ql := strings.ToLower(strings.TrimSpace(query))
	if ql == "" {
		return false
	}
	return containsAny(ql, s.policy.DomainHints)
}

// Rerank keeps the hits mentioning a focus term when there are any,
// otherwise all hits, and returns the first Keep of them in similarity
// order.
func (s *RetrievalService) Rerank(hits []domain.RetrievalHit) []domain.RetrievalHit {
	var focused []domain.RetrievalHit
	for _, h := range hits {
		if containsAny(strings.ToLower(h.Chunk.Content), s.policy.FocusTerms) {
			focused = append(focused, h)
		}
	}

	pool := hits
	if len(focused) > 0 {
		pool = focused
	}
	if len(pool) > s.policy.Keep {
		pool = pool[:s.policy.Keep]
	}
	return pool
}

// BuildContext renders the selected hits as tagged, cleaned blocks
// separated by a blank line.
func (s *RetrievalService) BuildContext(hits []domain.RetrievalHit) string {
	blocks := make([]string, 0, len(hits))
	for _, h := range hits {
		text := truncateRunes(CleanText(h.Chunk.Content), s.policy.MaxContextChars)
		blocks = append(blocks, fmt.Sprintf("[Source: %s]: %s", h.Chunk.SourceID, text))
	}
	return strings.Join(blocks, "\n\n")
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanText strips markup, decodes HTML entities and collapses runs of
// whitespace into single spaces.
func CleanText(t string) string {
	t = tagPattern.ReplaceAllString(t, " ")
	t = html.UnescapeString(t)
	return strings.Join(strings.Fields(t), " ")
}

func final(d domain.Decision, reply string) domain.Decision {
	d.Reply = reply
	d.Final = true
	return d
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
