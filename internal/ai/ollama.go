package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"netauto/internal/logger"
)

const (
	DefaultBaseURL     = "http://localhost:11434"
	DefaultModel       = "llama3.2:1b"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTimeout     = 60 * time.Second

	versionCheckTimeout = 5 * time.Second
	healthCheckPrompt   = "Hello, please respond with 'OK' to confirm you're working."
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OllamaConfig struct {
	BaseURL     string
	Model       string
	// Temperature falls back to DefaultTemperature when nil. Zero is a
	// valid setting.
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// Result is the outcome of a generation call. Failures are reported through
// Success and Error, never as a Go error.
type Result struct {
	Success          bool      `json:"success"`
	Response         string    `json:"response,omitempty"`
	Error            string    `json:"error,omitempty"`
	Model            string    `json:"model,omitempty"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalDuration    int64     `json:"total_duration"`
	Timestamp        time.Time `json:"timestamp"`
}

type ModelInfo struct {
	Name       string    `json:"name"`
	Model      string    `json:"model,omitempty"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
}

type HealthStatus struct {
	Status          string    `json:"status"`
	Model           string    `json:"model,omitempty"`
	BaseURL         string    `json:"base_url,omitempty"`
	Version         string    `json:"version,omitempty"`
	TestResponse    string    `json:"test_response,omitempty"`
	Error           string    `json:"error,omitempty"`
	Details         string    `json:"details,omitempty"`
	AvailableModels []string  `json:"available_models,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

type OllamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	log         logger.Logger
}

func NewOllamaClient(cfg OllamaConfig, log logger.Logger) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &OllamaClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log,
	}
}

func (c *OllamaClient) Model() string   { return c.model }
func (c *OllamaClient) BaseURL() string { return c.baseURL }

type generationOptions struct {
	model       string
	system      string
	temperature float64
	maxTokens   int
}

type Option func(*generationOptions)

func WithModel(model string) Option {
	return func(o *generationOptions) {
		if strings.TrimSpace(model) != "" {
			o.model = strings.TrimSpace(model)
		}
	}
}

func WithSystemPrompt(system string) Option {
	return func(o *generationOptions) { o.system = system }
}

func WithTemperature(t float64) Option {
	return func(o *generationOptions) { o.temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(o *generationOptions) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

func (c *OllamaClient) resolve(opts []Option) generationOptions {
	o := generationOptions{
		model:       c.model,
		temperature: c.temperature,
		maxTokens:   c.maxTokens,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type requestOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options requestOptions `json:"options"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  requestOptions `json:"options"`
}

// completionStats is shared by the generate and chat response bodies.
type completionStats struct {
	PromptEvalCount int   `json:"prompt_eval_count"`
	EvalCount       int   `json:"eval_count"`
	TotalDuration   int64 `json:"total_duration"`
}

type generateResponse struct {
	completionStats
	Response string `json:"response"`
}

type chatResponse struct {
	completionStats
	Message ChatMessage `json:"message"`
}

// Generate sends a single prompt to /api/generate.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts ...Option) Result {
	o := c.resolve(opts)
	reqBody := generateRequest{
		Model:   o.model,
		Prompt:  prompt,
		System:  o.system,
		Stream:  false,
		Options: requestOptions{Temperature: o.temperature, NumPredict: o.maxTokens},
	}

	var parsed generateResponse
	if err := c.postJSON(ctx, "/api/generate", reqBody, &parsed); err != nil {
		c.log.Error("llm", "ollama generation failed", map[string]interface{}{"error": err, "model": o.model})
		return failure(err)
	}
	return success(o.model, parsed.Response, parsed.completionStats)
}

// Chat sends an ordered message list to /api/chat.
func (c *OllamaClient) Chat(ctx context.Context, messages []ChatMessage, opts ...Option) Result {
	o := c.resolve(opts)
	if o.system != "" {
		messages = append([]ChatMessage{{Role: "system", Content: o.system}}, messages...)
	}
	reqBody := chatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   false,
		Options:  requestOptions{Temperature: o.temperature, NumPredict: o.maxTokens},
	}

	var parsed chatResponse
	if err := c.postJSON(ctx, "/api/chat", reqBody, &parsed); err != nil {
		c.log.Error("llm", "ollama chat failed", map[string]interface{}{"error": err, "model": o.model})
		return failure(err)
	}
	return success(o.model, parsed.Message.Content, parsed.completionStats)
}

// ListModels returns the models reported by /api/tags.
func (c *OllamaClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var parsed struct {
		Models []ModelInfo `json:"models"`
	}
	if err := c.getJSON(ctx, "/api/tags", &parsed); err != nil {
		return nil, fmt.Errorf("list models failed: %w", err)
	}
	if parsed.Models == nil {
		parsed.Models = []ModelInfo{}
	}
	return parsed.Models, nil
}

// IsModelAvailable checks the model list for name, or for the configured model
// when name is empty. Any listing failure counts as unavailable.
func (c *OllamaClient) IsModelAvailable(ctx context.Context, name string) bool {
	if strings.TrimSpace(name) == "" {
		name = c.model
	}
	models, err := c.ListModels(ctx)
	if err != nil {
		c.log.Warn("llm", "model availability check failed", map[string]interface{}{"error": err})
		return false
	}
	for _, m := range models {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (c *OllamaClient) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
	defer cancel()

	var parsed struct {
		Version string `json:"version"`
	}
	if err := c.getJSON(ctx, "/api/version", &parsed); err != nil {
		return "", fmt.Errorf("ollama version check failed: %w", err)
	}
	return parsed.Version, nil
}

// HealthCheck verifies connectivity, model availability and a live generation.
func (c *OllamaClient) HealthCheck(ctx context.Context) HealthStatus {
	now := time.Now().UTC()

	version, err := c.Version(ctx)
	if err != nil {
		return HealthStatus{
			Status:    "unhealthy",
			Error:     "Cannot connect to Ollama service",
			Details:   err.Error(),
			Timestamp: now,
		}
	}

	models, err := c.ListModels(ctx)
	if err != nil {
		return HealthStatus{Status: "error", Error: err.Error(), Timestamp: now}
	}
	names := make([]string, 0, len(models))
	available := false
	for _, m := range models {
		names = append(names, m.Name)
		if m.Name == c.model {
			available = true
		}
	}
	if !available {
		return HealthStatus{
			Status:          "unhealthy",
			Error:           fmt.Sprintf("Model '%s' not available", c.model),
			AvailableModels: names,
			Timestamp:       now,
		}
	}

	check := c.Generate(ctx, healthCheckPrompt, WithTemperature(0.1), WithMaxTokens(10))
	if !check.Success {
		return HealthStatus{
			Status:    "unhealthy",
			Error:     "Test generation failed",
			Details:   check.Error,
			Timestamp: now,
		}
	}

	return HealthStatus{
		Status:       "healthy",
		Model:        c.model,
		BaseURL:      c.baseURL,
		Version:      version,
		TestResponse: truncateRunes(check.Response, 50),
		Timestamp:    now,
	}
}

func (c *OllamaClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *OllamaClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	return c.do(req, out)
}

func (c *OllamaClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response json failed: %w", err)
	}
	return nil
}

func success(model, response string, stats completionStats) Result {
	return Result{
		Success:          true,
		Response:         response,
		Model:            model,
		PromptTokens:     stats.PromptEvalCount,
		CompletionTokens: stats.EvalCount,
		TotalDuration:    stats.TotalDuration,
		Timestamp:        time.Now().UTC(),
	}
}

func failure(err error) Result {
	return Result{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
