package ai

import (
	"context"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"github.com/muratoffalex/gachicord/internal/logger"
)

// GeminiClient generates images with Imagen through the Gemini API.
type GeminiClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func NewGeminiClient(apiKey, model string, log logger.Logger, httpClient *http.Client) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		logger:     log.WithField("provider", ProviderGemini),
	}
}

func (c *GeminiClient) Name() string {
	return ProviderGemini
}

func (c *GeminiClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		c.client, c.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     c.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: c.httpClient,
		})
	})
	return c.client, c.clientErr
}

// Generate renders prompt with Imagen and returns the first image.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, &AIError{OriginalErr: ErrProviderNotConfigured, ProviderName: c.Name()}
	}

	client, err := c.genaiClient(ctx)
	if err != nil {
		return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), ModelName: c.model, Message: "failed to create client"}
	}

	response, err := client.Models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), ModelName: c.model}
	}

	for _, generated := range response.GeneratedImages {
		if generated == nil {
			continue
		}
		if generated.RAIFilteredReason != "" {
			c.logger.WithField("reason", generated.RAIFilteredReason).Warn("Image filtered by provider")
		}
		if generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			return generated.Image.ImageBytes, nil
		}
	}

	return nil, &AIError{OriginalErr: ErrNoImage, ProviderName: c.Name(), ModelName: c.model}
}
