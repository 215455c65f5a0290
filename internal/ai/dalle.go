package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/muratoffalex/gachicord/internal/logger"
)

const (
	dalleImageSize    = "1024x1024"
	dalleImageQuality = "standard"
)

type DalleClient struct {
	model      string
	httpClient *baseHTTPClient
	logger     logger.Logger
}

func NewDalleClient(baseURL, apiKey, model string, log logger.Logger, httpClient *http.Client) *DalleClient {
	return &DalleClient{
		model:      model,
		httpClient: NewBaseHTTPClient(httpClient, ProviderDalle, baseURL, apiKey, log),
		logger:     log.WithField("provider", ProviderDalle),
	}
}

func (c *DalleClient) Name() string {
	return ProviderDalle
}

// Generate renders prompt with DALL-E and returns PNG bytes.
func (c *DalleClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if !c.httpClient.configured() {
		return nil, &AIError{OriginalErr: ErrProviderNotConfigured, ProviderName: c.Name()}
	}

	request := map[string]any{
		"model":           c.model,
		"prompt":          prompt,
		"n":               1,
		"size":            dalleImageSize,
		"quality":         dalleImageQuality,
		"response_format": "b64_json",
	}
	body, aiErr := c.httpClient.doJSON(ctx, http.MethodPost, "images/generations", request, nil)
	if aiErr != nil {
		aiErr.ModelName = c.model
		return nil, aiErr
	}

	var result imagesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), ModelName: c.model, Message: "failed to unmarshal response"}
	}
	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, &AIError{OriginalErr: ErrNoImage, ProviderName: c.Name(), ModelName: c.model}
	}
	if revised := result.Data[0].RevisedPrompt; revised != "" {
		c.logger.WithField("revised_prompt", revised).Debug("Prompt revised by provider")
	}

	data, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), ModelName: c.model, Message: "failed to decode image"}
	}
	return data, nil
}
