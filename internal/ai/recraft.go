package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/muratoffalex/gachicord/internal/logger"
)

const (
	recraftImageSize        = "1024x1024"
	recraftImageStrength = 0.2
)

type RecraftClient struct {
	httpClient *baseHTTPClient
	logger     logger.Logger
}

func NewRecraftClient(baseURL, apiKey string, log logger.Logger, httpClient *http.Client) *RecraftClient {
	return &RecraftClient{
		httpClient: NewBaseHTTPClient(httpClient, ProviderRecraft, baseURL, apiKey, log),
		logger:     log.WithField("provider", ProviderRecraft),
	}
}

func (c *RecraftClient) Name() string {
	return ProviderRecraft
}

// Generate renders prompt in one of RecraftStyles.
func (c *RecraftClient) Generate(ctx context.Context, prompt, style string) ([]byte, error) {
	if !c.httpClient.configured() {
		return nil, &AIError{OriginalErr: ErrProviderNotConfigured, ProviderName: c.Name()}
	}
	if style == "" {
		style = DefaultRecraftStyle
	}

	request := map[string]any{
		"prompt":          prompt,
		"style":           style,
		"size":            recraftImageSize,
		"n":               1,
		"response_format": "b64_json",
	}
	body, aiErr := c.httpClient.doJSON(ctx, http.MethodPost, "images/generations", request, map[string]string{
		"Accept": "application/json",
	})
	if aiErr != nil {
		return nil, aiErr
	}
	return c.decodeImage(ctx, body)
}

// ImageToImage reworks image according to prompt.
func (c *RecraftClient) ImageToImage(ctx context.Context, image *Image, prompt string) ([]byte, error) {
	if !c.httpClient.configured() {
		return nil, &AIError{OriginalErr: ErrProviderNotConfigured, ProviderName: c.Name()}
	}

	form := newMultipartForm().
		AddImage("image", image).
		AddField("prompt", prompt).
		AddField("strength", strconv.FormatFloat(recraftImageStrength, 'f', -1, 64))

	body, aiErr := c.httpClient.doMultipart(ctx, "images/imageToImage", form, map[string]string{
		"Accept": "application/json",
	})
	if aiErr != nil {
		return nil, aiErr
	}
	return c.decodeImage(ctx, body)
}

// decodeImage prefers the hosted URL Recraft usually returns and falls back to inline base64.
func (c *RecraftClient) decodeImage(ctx context.Context, body []byte) ([]byte, error) {
	var result imagesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), Message: "failed to unmarshal response"}
	}
	if len(result.Data) == 0 {
		return nil, &AIError{OriginalErr: ErrNoImage, ProviderName: c.Name()}
	}

	image := result.Data[0]
	if image.URL != "" {
		c.logger.WithField("url", image.URL).Debug("Downloading generated image")
		data, aiErr := c.httpClient.download(ctx, image.URL)
		if aiErr != nil {
			return nil, aiErr
		}
		return data, nil
	}

	if image.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(image.B64JSON)
		if err != nil {
			return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), Message: "failed to decode image"}
		}
		return data, nil
	}

	return nil, &AIError{OriginalErr: ErrNoImage, ProviderName: c.Name()}
}
