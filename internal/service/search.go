package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/cache"
	"github.com/muratoffalex/gachicord/internal/config"
	"github.com/muratoffalex/gachicord/internal/logger"
)

const (
	searchSystemPrompt = "You are a web search assistant. Answer precisely and concisely using up-to-date search results."
	searchMaxResults   = 5
)

var ErrUnknownSearchProvider = errors.New("unknown search provider")

type Source struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

type SearchResult struct {
	Provider string   `json:"provider"`
	Answer   string   `json:"answer,omitempty"`
	Sources  []Source `json:"sources,omitempty"`
}

func (r *SearchResult) Empty() bool {
	return r.Answer == "" && len(r.Sources) == 0
}

type Asker interface {
	Ask(ctx context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error)
}

type TextSearcher interface {
	Text(ctx context.Context, keywords, region, timeLimit string, maxResults int) ([]TextResult, error)
}

// SearchService answers web queries with the configured provider and caches
// answers for an hour.
type SearchService struct {
	provider   string
	perplexity Asker
	ddg        TextSearcher
	cache      cache.Cache
	logger     logger.Logger
}

func NewSearchService(provider string, perplexity Asker, ddg TextSearcher, c cache.Cache, log logger.Logger) *SearchService {
	return &SearchService{
		provider:   provider,
		perplexity: perplexity,
		ddg:        ddg,
		cache:      c,
		logger:     log.WithField("service", "search"),
	}
}

func (s *SearchService) Provider() string {
	return s.provider
}

func (s *SearchService) DisplayName() string {
	switch s.provider {
	case config.SearchProviderPerplexity:
		return "Perplexity"
	case config.SearchProviderDuckDuckGo:
		return "DuckDuckGo"
	}
	return s.provider
}

func (s *SearchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyKeywords
	}

	key := cache.SearchKey(s.provider, strings.ToLower(query))
	if data, ok := s.cache.Get(key); ok {
		var cached SearchResult
		if err := json.Unmarshal(data, &cached); err == nil {
			s.logger.WithField("query", query).Debug("Search cache hit")
			return &cached, nil
		}
	}

	var result *SearchResult
	var err error
	switch s.provider {
	case config.SearchProviderPerplexity:
		result, err = s.searchPerplexity(ctx, query)
	case config.SearchProviderDuckDuckGo:
		result, err = s.searchDuckDuckGo(ctx, query)
	default:
		return nil, ErrUnknownSearchProvider
	}
	if err != nil {
		return nil, err
	}

	if !result.Empty() {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(key, data, cache.SearchTTL); err != nil {
				s.logger.WithError(err).Warn("Failed to cache search result")
			}
		}
	}
	return result, nil
}

func (s *SearchService) searchPerplexity(ctx context.Context, query string) (*SearchResult, error) {
	if s.perplexity == nil {
		return nil, ai.ErrProviderNotConfigured
	}

	resp, err := s.perplexity.Ask(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: searchSystemPrompt},
			{Role: ai.RoleUser, Content: query},
		},
	})
	if err != nil {
		return nil, err
	}

	answer, _ := ai.StripReasoning(resp.Choices[0].Message.Content)
	result := &SearchResult{
		Provider: s.provider,
		Answer:   strings.TrimSpace(answer),
	}
	for _, citation := range resp.Citations {
		result.Sources = append(result.Sources, Source{URL: citation})
	}
	return result, nil
}

func (s *SearchService) searchDuckDuckGo(ctx context.Context, query string) (*SearchResult, error) {
	if s.ddg == nil {
		return nil, ai.ErrProviderNotConfigured
	}

	results, err := s.ddg.Text(ctx, query, "wt-wt", "", searchMaxResults)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Provider: s.provider}
	for _, r := range results {
		result.Sources = append(result.Sources, Source{
			Title:   r.Title,
			URL:     r.Href,
			Snippet: r.Body,
		})
	}
	return result, nil
}
