package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyEmbeddingInput = errors.New("embedding input is empty")

// EmbeddingConfig holds settings shared by the embedding providers.
// Dimensions, when positive, is enforced on every returned vector.
type EmbeddingConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// OllamaEmbedder calls Ollama's /api/embeddings and L2-normalises the result.
type OllamaEmbedder struct {
	client     *OllamaClient
	model      string
	dimensions int
}

func NewOllamaEmbedder(cfg EmbeddingConfig) *OllamaEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "all-minilm"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OllamaEmbedder{
		client: &OllamaClient{
			httpClient: &http.Client{Timeout: cfg.Timeout},
			baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		},
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (e *OllamaEmbedder) ModelName() string { return e.model }

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyEmbeddingInput
	}

	reqBody := struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}{Model: e.model, Prompt: text}

	var parsed struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := e.client.postJSON(ctx, "/api/embeddings", reqBody, &parsed); err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	vec := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		vec[i] = float32(v)
	}
	if err := checkDimensions(vec, e.dimensions); err != nil {
		return nil, err
	}
	return Normalize(vec), nil
}

// OpenAIEmbedder talks to any OpenAI-compatible embeddings endpoint, including
// Ollama's /v1 surface.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

func NewOpenAIEmbedder(cfg EmbeddingConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (e *OpenAIEmbedder) ModelName() string { return e.model }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyEmbeddingInput
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	vec := resp.Data[0].Embedding
	if err := checkDimensions(vec, e.dimensions); err != nil {
		return nil, err
	}
	return vec, nil
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}

func checkDimensions(vec []float32, want int) error {
	if want > 0 && len(vec) != want {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), want)
	}
	return nil
}
