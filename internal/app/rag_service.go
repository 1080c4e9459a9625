package app

import (
	"context"
	"strings"

	"netauto/internal/ai"
	"netauto/internal/logger"
	"netauto/internal/vectorstore"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultRAGTopK      = 3
	contextCharBudget   = 500
	maxContextUsed      = 3

	ragSystemPrompt        = "You are a helpful network automation AI assistant."
	ragContextSystemPrompt = "You are a helpful network automation AI assistant. Use the following context to answer questions:\n\nContext:\n"
)

// DocumentSearcher is the read side of the vector store.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, k int, filter map[string]interface{}) []vectorstore.SearchResult
}

// ChatCompleter is the LLM side of the RAG flow.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.Option) ai.Result
}

type RAGOptions struct {
	DefaultK          int
	ContextCharBudget int
	Temperature       *float64
	MaxTokens         int
}

type RAGService struct {
	searcher DocumentSearcher
	llm      ChatCompleter
	opts     RAGOptions
	log      logger.Logger
}

type AnswerInput struct {
	Query  string
	K      int
	Filter map[string]interface{}
	Model  string
}

type AnswerResult struct {
	Success          bool                       `json:"success"`
	Query            string                     `json:"query"`
	Response         string                     `json:"response"`
	Error            string                     `json:"error,omitempty"`
	ContextDocuments int                        `json:"context_documents"`
	ContextUsed      []vectorstore.SearchResult `json:"context_used"`
	Model            string                     `json:"model"`
}

func NewRAGService(searcher DocumentSearcher, llm ChatCompleter, opts RAGOptions, log logger.Logger) *RAGService {
	if opts.DefaultK <= 0 {
		opts.DefaultK = defaultRAGTopK
	}
	if opts.ContextCharBudget <= 0 {
		opts.ContextCharBudget = contextCharBudget
	}
	if opts.Temperature == nil {
		t := ai.DefaultTemperature
		opts.Temperature = &t
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RAGService{searcher: searcher, llm: llm, opts: opts, log: log}
}

// Answer retrieves context for the query and forwards the augmented prompt to
// the LLM. LLM failures are reported in the result; the error return is
// reserved for invalid input.
func (s *RAGService) Answer(ctx context.Context, input AnswerInput) (*AnswerResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	k := input.K
	if k <= 0 {
		k = s.opts.DefaultK
	}

	results := s.searcher.Search(ctx, query, k, input.Filter)
	messages := s.BuildMessages(query, results)

	opts := []ai.Option{ai.WithTemperature(*s.opts.Temperature), ai.WithMaxTokens(s.opts.MaxTokens)}
	if input.Model != "" {
		opts = append(opts, ai.WithModel(input.Model))
	}
	res := s.llm.Chat(ctx, messages, opts...)
	if !res.Success {
		s.log.Warn("rag", "llm call failed", map[string]interface{}{
			"query": query,
			"error": res.Error,
		})
	}

	used := results
	if len(used) > maxContextUsed {
		used = used[:maxContextUsed]
	}
	return &AnswerResult{
		Success:          res.Success,
		Query:            query,
		Response:         res.Response,
		Error:            res.Error,
		ContextDocuments: len(results),
		ContextUsed:      used,
		Model:            res.Model,
	}, nil
}

// BuildMessages assembles the system and user messages. Without results the
// query is sent un-augmented.
func (s *RAGService) BuildMessages(query string, results []vectorstore.SearchResult) []ai.ChatMessage {
	if len(results) == 0 {
		return []ai.ChatMessage{
			{Role: "system", Content: ragSystemPrompt},
			{Role: "user", Content: query},
		}
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, "Document: "+truncate(r.Content, s.opts.ContextCharBudget)+"...")
	}
	return []ai.ChatMessage{
		{Role: "system", Content: ragContextSystemPrompt + strings.Join(parts, "\n\n")},
		{Role: "user", Content: query},
	}
}

// chunkText splits text into overlapping chunks by rune count.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i += size - overlap
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
