package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyResponse          = errors.New("empty response")
	ErrNoImage                = errors.New("no image was returned from the API")
	ErrProviderNotConfigured  = errors.New("provider is not configured")
	ErrProviderNotFound       = errors.New("provider not found")
	ErrMissingGenerationID    = errors.New("no generation ID was returned from the API")
	ErrUnexpectedVideoPayload = errors.New("unexpected video result payload")
)

type ChatCompleter interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
}

// Image is an input image handed to a provider.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

func (i *Image) filename() string {
	if i.Filename == "" {
		return "image.png"
	}
	return i.Filename
}

func (i *Image) contentType() string {
	if i.ContentType == "" {
		return "image/png"
	}
	return i.ContentType
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	N           int       `json:"n,omitempty"`
	Stream      bool      `json:"stream"`
	MaxTokens   *int      `json:"max_tokens,omitzero"`
	Temperature *float64  `json:"temperature,omitzero"`
}

type ModelUsage struct {
	CompletionTokens int64 `json:"completion_tokens"`
	PromptTokens     int64 `json:"prompt_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type MessageResponse struct {
	Content          string `json:"content"`
	Reasoning        string `json:"reasoning,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type CompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message MessageResponse `json:"message"`
	} `json:"choices"`
	Citations []string       `json:"citations,omitempty"`
	Usage     ModelUsage     `json:"usage,omitzero"`
	Error     *ProviderError `json:"error,omitzero"`
}

type ProviderError struct {
	Message string `json:"message"`
	Code    any    `json:"code"`
	Type    string `json:"type"`
}

// imagesResponse is the OpenAI images API shape, also used by Recraft.
type imagesResponse struct {
	Data []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// AIError represents an enriched error from an AI provider
type AIError struct {
	// OriginalErr is the original error (if any)
	OriginalErr error `json:"-"`
	// ProviderName is the provider name (e.g. "stability", "recraft")
	ProviderName string `json:"provider_name"`
	// ModelName is the model name where the error occurred
	ModelName string `json:"model_name"`
	// HTTPStatusCode is the HTTP response status code (if applicable)
	HTTPStatusCode int `json:"http_status_code"`
	// ErrorCode is the provider's error code (e.g. "insufficient_quota", "content_moderation")
	ErrorCode string `json:"error_code"`
	// Message is a human-readable error message
	Message string `json:"message"`
}

// Error implements the error interface
func (e *AIError) Error() string {
	msg := e.Message
	if msg == "" && e.OriginalErr != nil {
		msg = e.OriginalErr.Error()
	}
	switch {
	case e.ProviderName != "" && e.ModelName != "":
		msg = fmt.Sprintf("[%s:%s] %s", e.ProviderName, e.ModelName, msg)
	case e.ProviderName != "":
		msg = fmt.Sprintf("[%s] %s", e.ProviderName, msg)
	}
	if e.ErrorCode != "" {
		msg = fmt.Sprintf("%s (code: %s)", msg, e.ErrorCode)
	}
	if e.HTTPStatusCode != 0 {
		msg = fmt.Sprintf("%d %s", e.HTTPStatusCode, msg)
	}
	return msg
}

// Unwrap for compatibility with errors.Is and errors.As
func (e *AIError) Unwrap() error {
	return e.OriginalErr
}

// ErrorType returns the error type based on HTTP status code and error code
func (e *AIError) ErrorType() ErrorType {
	switch {
	case e.HTTPStatusCode == 0 && e.OriginalErr != nil:
		return ErrorTypeNetwork
	case e.HTTPStatusCode == 429:
		return ErrorTypeRateLimit
	case e.HTTPStatusCode >= 500:
		return ErrorTypeServer
	case (e.HTTPStatusCode == 400 || e.HTTPStatusCode == 403) && isPolicyViolation(e):
		return ErrorTypeContentPolicy
	case e.HTTPStatusCode >= 400 && e.HTTPStatusCode < 500:
		return ErrorTypeClient
	default:
		return ErrorTypeUnknown
	}
}

func isPolicyViolation(e *AIError) bool {
	text := strings.ToLower(e.Message + " " + e.ErrorCode)
	return strings.Contains(text, "policy") || strings.Contains(text, "moderation")
}

// ErrorType for errors classification
type ErrorType string

const (
	ErrorTypeNetwork       ErrorType = "network"        // Network error, timeout
	ErrorTypeRateLimit     ErrorType = "rate_limit"     // 429, provider limits
	ErrorTypeServer        ErrorType = "server"         // 5xx, provider-side error
	ErrorTypeClient        ErrorType = "client"         // 4xx (except 429), invalid request, API key
	ErrorTypeContentPolicy ErrorType = "content_policy" // 400/403, content policy or moderation
	ErrorTypeUnknown       ErrorType = "unknown"        // Unknown error
)

// ErrorTypeOf classifies err, returning ErrorTypeUnknown for non-provider errors.
func ErrorTypeOf(err error) ErrorType {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr.ErrorType()
	}
	return ErrorTypeUnknown
}
