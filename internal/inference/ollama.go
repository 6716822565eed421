package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"articlebench/internal/domain"
)

const controlTimeout = 5 * time.Second

// ModelManager lists and unloads models on an inference server.
type ModelManager interface {
	Ping(ctx context.Context) error
	Models(ctx context.Context) ([]string, error)
	LoadedModels(ctx context.Context) ([]string, error)
	Unload(ctx context.Context, model string) error
}

// OllamaClient uses the native Ollama HTTP API.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        *slog.Logger
}

func NewOllamaClient(host string, timeout time.Duration, log *slog.Logger) *OllamaClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OllamaClient{
		baseURL:    BaseURL(host),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		log:        log,
	}
}

type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Stream    bool   `json:"stream"`
	KeepAlive *int   `json:"keep_alive,omitempty"`
}

// generateResponse accepts the native Ollama field names as well as the
// plain text/input_tokens/output_tokens shape served by simple proxies.
type generateResponse struct {
	Response        string `json:"response"`
	Text            string `json:"text"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	InputTokens     int    `json:"input_tokens"`
	OutputTokens    int    `json:"output_tokens"`
}

func (r generateResponse) text() string {
	if r.Response != "" {
		return r.Response
	}

	return r.Text
}

func (r generateResponse) inputTokens() int {
	if r.PromptEvalCount != 0 {
		return r.PromptEvalCount
	}

	return r.InputTokens
}

func (r generateResponse) outputTokens() int {
	if r.EvalCount != 0 {
		return r.EvalCount
	}

	return r.OutputTokens
}

func (c *OllamaClient) Generate(ctx context.Context, model string, prompt string) domain.InferenceResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return failure(domain.ErrorKindDecode, 0, "marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return failure(domain.ErrorKindTransport, 0, "create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportFailure(err, c.timeout, time.Since(start))
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"model", model,
				"operation", "Generate")
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return transportFailure(fmt.Errorf("read body: %w", err), c.timeout, elapsed)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(domain.ErrorKindHTTP, elapsed, "%s", statusMessage(resp.Status, payload))
	}

	var decoded generateResponse
	if err = json.Unmarshal(payload, &decoded); err != nil {
		return failure(domain.ErrorKindDecode, elapsed, "decode response: %v", err)
	}

	text := CleanText(decoded.text())
	if text == "" {
		return failure(domain.ErrorKindEmpty, elapsed, "response text is missing")
	}

	return domain.InferenceResult{
		Success:      true,
		Text:         text,
		InputTokens:  decoded.inputTokens(),
		OutputTokens: decoded.outputTokens(),
		Elapsed:      elapsed,
	}
}

func (c *OllamaClient) Ping(ctx context.Context) error {
	if _, err := c.Models(ctx); err != nil {
		return fmt.Errorf("connect to %s: %w", c.baseURL, err)
	}

	return nil
}

func (c *OllamaClient) Models(ctx context.Context) ([]string, error) {
	return c.listModels(ctx, "/api/tags")
}

func (c *OllamaClient) LoadedModels(ctx context.Context) ([]string, error) {
	return c.listModels(ctx, "/api/ps")
}

// Unload asks the server to evict model from memory and verifies it is gone.
func (c *OllamaClient) Unload(ctx context.Context, model string) error {
	keepAlive := 0
	body, err := json.Marshal(generateRequest{Model: model, Prompt: "", KeepAlive: &keepAlive})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	if _, err = c.control(ctx, http.MethodPost, "/api/generate", body); err != nil {
		return fmt.Errorf("unload %s: %w", model, err)
	}

	loaded, err := c.LoadedModels(ctx)
	if err != nil {
		return fmt.Errorf("verify unload: %w", err)
	}

	if slices.Contains(loaded, model) {
		return fmt.Errorf("unload %s: model is still loaded", model)
	}

	return nil
}

// UnloadAll unloads every loaded model and returns how many were unloaded.
func UnloadAll(ctx context.Context, m ModelManager, log *slog.Logger) (int, error) {
	loaded, err := m.LoadedModels(ctx)
	if err != nil {
		return 0, fmt.Errorf("list loaded models: %w", err)
	}

	unloaded := 0
	var errs []error
	for _, model := range loaded {
		if err = m.Unload(ctx, model); err != nil {
			errs = append(errs, err)
			continue
		}

		unloaded++
		log.DebugContext(ctx, "Model is unloaded",
			"model", model)
	}

	return unloaded, errors.Join(errs...)
}

func (c *OllamaClient) listModels(ctx context.Context, path string) ([]string, error) {
	payload, err := c.control(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err = json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		names = append(names, m.Name)
	}

	return names, nil
}

func (c *OllamaClient) control(ctx context.Context, method string, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, controlTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"path", path)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(statusMessage(resp.Status, payload))
	}

	return payload, nil
}

// statusMessage renders "<status line>: <body>" keeping the body verbatim.
func statusMessage(status string, body []byte) string {
	trimmed := strings.TrimRight(string(body), "\r\n")
	if trimmed == "" {
		return status
	}

	return status + ": " + trimmed
}
