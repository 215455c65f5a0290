package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/muratoffalex/gachicord/internal/logger"
)

type baseHTTPClient struct {
	provider string
	baseURL  string
	apiKey   string
	client   *http.Client
	logger   logger.Logger
}

func NewBaseHTTPClient(client *http.Client, provider, baseURL, apiKey string, log logger.Logger) *baseHTTPClient {
	return &baseHTTPClient{
		provider: provider,
		client:   client,
		baseURL:  baseURL,
		apiKey:   apiKey,
		logger:   log,
	}
}

func (c *baseHTTPClient) configured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

func (c *baseHTTPClient) logRequest(req *http.Request, body []byte) {
	var bodyData any
	if len(body) > 0 && strings.HasPrefix(req.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &bodyData); err == nil {
			if m, ok := bodyData.(map[string]any); ok {
				truncateLargeFields(m)
			}
		}
	} else if len(body) > 0 {
		bodyData = fmt.Sprintf("<%d bytes of %s>", len(body), req.Header.Get("Content-Type"))
	}

	logData := map[string]any{
		"url":    req.URL.String(),
		"method": req.Method,
		"body":   bodyData,
	}

	jsonData, err := json.Marshal(logData)
	if err != nil {
		c.logger.WithError(err).WithField("data", logData).Error("Fail marshal json for request")
	}
	c.logger.WithField("request", string(jsonData)).Debug("HTTP request")
}

func truncateLargeFields(data map[string]any) {
	for k, v := range data {
		switch val := v.(type) {
		case string:
			if (k == "content" || k == "text" || k == "prompt") && len(val) > 1000 {
				data[k] = val[:1000] + "...[truncated]"
			}
		case map[string]any:
			truncateLargeFields(val)
		case []any:
			for _, item := range val {
				if m, ok := item.(map[string]any); ok {
					truncateLargeFields(m)
				}
			}
		}
	}
}

func (c *baseHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.baseURL != "" && !strings.HasPrefix(req.URL.String(), "http") {
		req.URL, _ = url.Parse(fmt.Sprintf(
			"%s/%s",
			strings.TrimSuffix(c.baseURL, "/"),
			strings.TrimPrefix(req.URL.String(), "/"),
		))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	c.logRequest(req, body)

	return c.client.Do(req)
}

// doJSON sends body as JSON and returns the raw response body of a 2xx response.
func (c *baseHTTPClient) doJSON(
	ctx context.Context,
	method string,
	endpoint string,
	body any,
	headers map[string]string,
) ([]byte, *AIError) {
	var reader io.Reader
	if body != nil {
		requestBody, err := json.Marshal(body)
		if err != nil {
			return nil, c.newError(err, "marshal error")
		}
		reader = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, c.newError(err, "create request error")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	_, responseBody, aiErr := c.doRequest(req)
	return responseBody, aiErr
}

// doMultipart sends form as multipart/form-data.
func (c *baseHTTPClient) doMultipart(
	ctx context.Context,
	endpoint string,
	form *multipartForm,
	headers map[string]string,
) ([]byte, *AIError) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, c.newError(err, "encode form error")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.newError(err, "create request error")
	}
	req.Header.Set("Content-Type", contentType)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	_, responseBody, aiErr := c.doRequest(req)
	return responseBody, aiErr
}

// doRequest executes req and reads the whole body. Non-2xx responses are
// converted into an AIError carrying the provider's message when present.
func (c *baseHTTPClient) doRequest(req *http.Request) (int, []byte, *AIError) {
	resp, err := c.Do(req)
	if err != nil {
		return 0, nil, c.newError(err, "network request failed")
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, c.newError(err, "failed to read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		aiError := &AIError{
			ProviderName:   c.provider,
			HTTPStatusCode: resp.StatusCode,
			Message:        fmt.Sprintf("HTTP request failed with status code: %d", resp.StatusCode),
		}
		if message, code := parseProviderError(responseBody); message != "" {
			aiError.Message = message
			aiError.ErrorCode = code
		}
		return resp.StatusCode, responseBody, aiError
	}

	return resp.StatusCode, responseBody, nil
}

// download fetches an absolute URL without provider credentials.
func (c *baseHTTPClient) download(ctx context.Context, rawURL string) ([]byte, *AIError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, c.newError(err, "create request error")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.newError(err, "failed to download the generated image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AIError{
			ProviderName:   c.provider,
			HTTPStatusCode: resp.StatusCode,
			Message:        "failed to download the generated image from the provided URL",
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.newError(err, "failed to read downloaded image")
	}
	return data, nil
}

func (c *baseHTTPClient) newError(err error, message string) *AIError {
	return &AIError{
		OriginalErr:  err,
		ProviderName: c.provider,
		Message:      message,
	}
}

// parseProviderError understands both the OpenAI error envelope
// ({"error":{"message":...}}) and the flat one used by Stability and Recraft.
func parseProviderError(body []byte) (message, code string) {
	if len(body) == 0 {
		return "", ""
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Name    string          `json:"name"`
		Code    any             `json:"code"`
		Errors  []string        `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body)), ""
	}

	if len(payload.Error) > 0 {
		var nested ProviderError
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message, codeString(nested.Code)
		}
		var flat string
		if err := json.Unmarshal(payload.Error, &flat); err == nil && flat != "" {
			return flat, codeString(payload.Code)
		}
	}

	message = payload.Message
	if message == "" && len(payload.Errors) > 0 {
		message = strings.Join(payload.Errors, "; ")
	}
	code = codeString(payload.Code)
	if code == "" {
		code = payload.Name
	}
	return message, code
}

func codeString(code any) string {
	if code == nil {
		return ""
	}
	return fmt.Sprint(code)
}
