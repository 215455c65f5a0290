package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/muratoffalex/gachicord/internal/logger"
)

// OpenAICompatibleClient talks to any /chat/completions endpoint
// (DeepSeek, Perplexity, OpenAI).
type OpenAICompatibleClient struct {
	name         string
	chatURL      string
	logger       logger.Logger
	defaultModel string
	httpClient   *baseHTTPClient
}

func NewOpenAICompatibleClient(
	name string,
	baseURL string,
	apiKey string,
	defaultModel string,
	log logger.Logger,
	httpClient *http.Client,
) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		name:         name,
		chatURL:      "chat/completions",
		httpClient:   NewBaseHTTPClient(httpClient, name, baseURL, apiKey, log),
		defaultModel: defaultModel,
		logger:       log.WithField("provider", name),
	}
}

func (c *OpenAICompatibleClient) Name() string {
	return c.name
}

func (c *OpenAICompatibleClient) GetDefaultModel() string {
	return c.defaultModel
}

func (c *OpenAICompatibleClient) Configured() bool {
	return c.httpClient.configured()
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, request CompletionRequest) (string, error) {
	response, err := c.Ask(ctx, request)
	if err != nil {
		return "", err
	}
	content, _ := StripReasoning(response.Choices[0].Message.Content)
	return content, nil
}

// Ask sends a non-streaming completion request and returns the decoded response.
func (c *OpenAICompatibleClient) Ask(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	if !c.Configured() {
		return nil, &AIError{
			OriginalErr:  ErrProviderNotConfigured,
			ProviderName: c.Name(),
		}
	}
	if request.Model == "" {
		request.Model = c.defaultModel
	}
	if request.N == 0 {
		request.N = 1
	}

	body, aiErr := c.httpClient.doJSON(ctx, http.MethodPost, c.chatURL, request, nil)
	if aiErr != nil {
		aiErr.ModelName = request.Model
		return nil, aiErr
	}

	var result CompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			ModelName:    request.Model,
			Message:      "failed to unmarshal response",
		}
	}

	// some gateways report errors inside a 200 OK
	if result.Error != nil {
		return nil, &AIError{
			ProviderName: c.Name(),
			ModelName:    request.Model,
			ErrorCode:    codeString(result.Error.Code),
			Message:      result.Error.Message,
		}
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return nil, &AIError{
			OriginalErr:  ErrEmptyResponse,
			ProviderName: c.Name(),
			ModelName:    request.Model,
		}
	}

	c.logger.WithFields(logger.Fields{
		"model":             request.Model,
		"prompt_tokens":     result.Usage.PromptTokens,
		"completion_tokens": result.Usage.CompletionTokens,
	}).Debug("Completion received")

	return &result, nil
}
