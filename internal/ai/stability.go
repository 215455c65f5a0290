package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/muratoffalex/gachicord/internal/logger"
)

const (
	stabilityTextToImageEndpoint = "v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"
	stabilitySearchEndpoint      = "v2beta/stable-image/edit/search-and-replace"
	stabilityVideoEndpoint       = "v2beta/image-to-video"
	stabilityVideoResultEndpoint = "v2beta/image-to-video/result/"
)

type StabilityClient struct {
	httpClient *baseHTTPClient
	logger     logger.Logger
}

func NewStabilityClient(baseURL, apiKey string, log logger.Logger, httpClient *http.Client) *StabilityClient {
	return &StabilityClient{
		httpClient: NewBaseHTTPClient(httpClient, ProviderStability, baseURL, apiKey, log),
		logger:     log.WithField("provider", ProviderStability),
	}
}

func (c *StabilityClient) Name() string {
	return ProviderStability
}

func (c *StabilityClient) notConfigured() error {
	if c.httpClient.configured() {
		return nil
	}
	return &AIError{OriginalErr: ErrProviderNotConfigured, ProviderName: c.Name()}
}

type stabilityImageResponse struct {
	// v2beta
	Image        string `json:"image"`
	FinishReason string `json:"finish_reason"`
	// v1
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

func (r stabilityImageResponse) imageBase64() string {
	if r.Image != "" {
		return r.Image
	}
	for _, artifact := range r.Artifacts {
		if artifact.Base64 != "" {
			return artifact.Base64
		}
	}
	return ""
}

// TextToImage renders prompt with SDXL.
func (c *StabilityClient) TextToImage(ctx context.Context, prompt string) ([]byte, error) {
	if err := c.notConfigured(); err != nil {
		return nil, err
	}

	request := map[string]any{
		"text_prompts": []map[string]any{
			{"text": prompt, "weight": 1},
		},
		"cfg_scale": 7,
		"steps":     30,
		"samples":   1,
	}
	body, aiErr := c.httpClient.doJSON(ctx, http.MethodPost, stabilityTextToImageEndpoint, request, map[string]string{
		"Accept": "application/json",
	})
	if aiErr != nil {
		return nil, aiErr
	}
	return c.decodeImage(body)
}

// SearchAndReplace replaces searchPrompt in image with what prompt describes.
func (c *StabilityClient) SearchAndReplace(ctx context.Context, image *Image, searchPrompt, prompt string) ([]byte, error) {
	if err := c.notConfigured(); err != nil {
		return nil, err
	}

	form := newMultipartForm().
		AddImage("image", image).
		AddField("search_prompt", searchPrompt).
		AddField("prompt", prompt).
		AddField("cfg_scale", "7").
		AddField("steps", "30").
		AddField("seed", "0").
		AddField("output_format", "png")

	body, aiErr := c.httpClient.doMultipart(ctx, stabilitySearchEndpoint, form, map[string]string{
		"Accept": "application/json",
	})
	if aiErr != nil {
		return nil, aiErr
	}
	return c.decodeImage(body)
}

func (c *StabilityClient) decodeImage(body []byte) ([]byte, error) {
	var result stabilityImageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), Message: "failed to unmarshal response"}
	}

	encoded := result.imageBase64()
	if encoded == "" {
		c.logger.WithField("finish_reason", result.FinishReason).Error("No image in response")
		return nil, &AIError{OriginalErr: ErrNoImage, ProviderName: c.Name()}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &AIError{OriginalErr: err, ProviderName: c.Name(), Message: "failed to decode image"}
	}
	return data, nil
}

// StartVideo submits image for image-to-video generation and returns the generation id.
func (c *StabilityClient) StartVideo(ctx context.Context, image *Image) (string, error) {
	if err := c.notConfigured(); err != nil {
		return "", err
	}

	form := newMultipartForm().
		AddImage("image", image).
		AddField("motion_bucket_id", "127").
		AddField("cfg_scale", "2.5").
		AddField("seed", "0").
		AddField("steps", "25")

	body, aiErr := c.httpClient.doMultipart(ctx, stabilityVideoEndpoint, form, nil)
	if aiErr != nil {
		return "", aiErr
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &AIError{OriginalErr: err, ProviderName: c.Name(), Message: "failed to unmarshal response"}
	}
	if result.ID == "" {
		return "", &AIError{OriginalErr: ErrMissingGenerationID, ProviderName: c.Name()}
	}
	return result.ID, nil
}

// VideoResult checks a generation once. done is false while the video is still rendering.
func (c *StabilityClient) VideoResult(ctx context.Context, generationID string) (video []byte, done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, stabilityVideoResultEndpoint+generationID, nil)
	if err != nil {
		return nil, false, c.httpClient.newError(err, "create request error")
	}
	req.Header.Set("Accept", "video/*")

	status, body, aiErr := c.httpClient.doRequest(req)
	if aiErr != nil {
		return nil, false, aiErr
	}

	switch status {
	case http.StatusAccepted:
		return nil, false, nil
	case http.StatusOK:
		if len(body) == 0 {
			return nil, false, &AIError{OriginalErr: ErrUnexpectedVideoPayload, ProviderName: c.Name(), HTTPStatusCode: status}
		}
		return body, true, nil
	default:
		return nil, false, &AIError{
			OriginalErr:    ErrUnexpectedVideoPayload,
			ProviderName:   c.Name(),
			HTTPStatusCode: status,
			Message:        string(body),
		}
	}
}
