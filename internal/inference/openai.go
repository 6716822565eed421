package inference

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"articlebench/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const placeholderAPIKey = "ollama"

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// Ollama's /v1 included.
type OpenAIClient struct {
	client  openai.Client
	timeout time.Duration
}

func NewOpenAIClient(host string, apiKey string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if apiKey == "" {
		apiKey = placeholderAPIKey
	}

	return &OpenAIClient{
		client: openai.NewClient(
			option.WithBaseURL(BaseURL(host)+"/v1/"),
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(&http.Client{Timeout: timeout}),
			option.WithMaxRetries(0),
		),
		timeout: timeout,
	}
}

// rawErrorResponse captures the status line and body of a non-2xx response
// before the SDK turns it into a structured error.
type rawErrorResponse struct {
	status string
	body   []byte
}

func (r *rawErrorResponse) capture(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	resp, err := next(req)
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	r.status = resp.Status
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return resp, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, model string, prompt string) domain.InferenceResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw rawErrorResponse
	start := time.Now()

	resp, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		},
		option.WithMiddleware(raw.capture),
	)
	elapsed := time.Since(start)

	if err != nil {
		if raw.status != "" {
			return failure(domain.ErrorKindHTTP, elapsed, "%s", statusMessage(raw.status, raw.body))
		}

		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return failure(domain.ErrorKindHTTP, elapsed, "%s", apiErr.Error())
		}

		return transportFailure(err, c.timeout, elapsed)
	}

	if len(resp.Choices) == 0 {
		return failure(domain.ErrorKindEmpty, elapsed, "response has no choices")
	}

	text := CleanText(resp.Choices[0].Message.Content)
	if text == "" {
		return failure(domain.ErrorKindEmpty, elapsed, "response text is missing")
	}

	return domain.InferenceResult{
		Success:      true,
		Text:         text,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		Elapsed:      elapsed,
	}
}
