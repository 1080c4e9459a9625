package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"netauto/internal/logger"
)

const (
	defaultSearchK = 5
	defaultTimeout = 30 * time.Second
	logModule      = "vectorstore"
)

var (
	ErrDuplicateID  = errors.New("document id already exists")
	ErrDimension    = errors.New("embedding dimension mismatch")
	ErrEmptyContent = errors.New("document content is empty")
)

// Document is a stored text with its metadata.
type Document struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Item is one entry of an AddBatch call.
type Item struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

type SearchResult struct {
	ID         string                 `json:"id"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
	Distance   float64                `json:"distance"`
	Similarity float64                `json:"similarity"`
}

type Stats struct {
	DocumentCount    int    `json:"document_count"`
	CollectionName   string `json:"collection_name"`
	EmbeddingModel   string `json:"embedding_model"`
	PersistDirectory string `json:"persist_directory"`
	Backend          string `json:"backend"`
	Error            string `json:"error,omitempty"`
}

type Health struct {
	Status          string    `json:"status"`
	CollectionStats Stats     `json:"collection_stats"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Record is what a Backend persists.
type Record struct {
	ID        string
	Content   string
	Metadata  map[string]interface{}
	Embedding []float32
}

type Match struct {
	Record
	Distance float64
}

// Backend is a vector collection. Query returns matches ordered by ascending
// cosine distance; Get returns nil, nil when the id is unknown.
type Backend interface {
	Name() string
	Add(ctx context.Context, records []Record) error
	Query(ctx context.Context, embedding []float32, k int, where map[string]interface{}) ([]Match, error)
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, ids ...string) error
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

type Options struct {
	Collection       string
	PersistDirectory string
	Timeout          time.Duration
}

// Store embeds text and keeps it in a Backend. Every operation reports failure
// through its return value and the log; nothing is retried.
type Store struct {
	backend  Backend
	embedder Embedder
	opts     Options
	log      logger.Logger
	now      func() time.Time
}

func New(backend Backend, embedder Embedder, opts Options, log logger.Logger) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		backend:  backend,
		embedder: embedder,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

func (s *Store) Backend() Backend { return s.backend }

// Add embeds content and stores it under id with an added_at stamp.
func (s *Store) Add(ctx context.Context, id, content string, metadata map[string]interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	rec, err := s.record(ctx, Item{ID: id, Content: content, Metadata: metadata})
	if err != nil {
		s.log.Error(logModule, "failed to embed document", map[string]interface{}{"error": err, "id": id})
		return false
	}
	if err := s.backend.Add(ctx, []Record{rec}); err != nil {
		s.log.Error(logModule, "failed to add document", map[string]interface{}{"error": err, "id": id})
		return false
	}
	s.log.Info(logModule, "document added", map[string]interface{}{"id": id})
	return true
}

// AddBatch embeds every item before a single backend insert, so an embedding
// failure leaves the collection untouched.
func (s *Store) AddBatch(ctx context.Context, items []Item) bool {
	if len(items) == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout*time.Duration(len(items)))
	defer cancel()

	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := s.record(ctx, item)
		if err != nil {
			s.log.Error(logModule, "failed to embed batch item", map[string]interface{}{"error": err, "id": item.ID, "batch_size": len(items)})
			return false
		}
		records = append(records, rec)
	}
	if err := s.backend.Add(ctx, records); err != nil {
		s.log.Error(logModule, "failed to add batch", map[string]interface{}{"error": err, "batch_size": len(items)})
		return false
	}
	s.log.Info(logModule, "batch added", map[string]interface{}{"count": len(records)})
	return true
}

// Search returns up to k documents nearest to query, optionally limited to
// documents whose metadata matches every key of filter exactly.
func (s *Store) Search(ctx context.Context, query string, k int, filter map[string]interface{}) []SearchResult {
	if k <= 0 {
		k = defaultSearchK
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Error(logModule, "failed to embed query", map[string]interface{}{"error": err})
		return []SearchResult{}
	}
	matches, err := s.backend.Query(ctx, emb, k, filter)
	if err != nil {
		s.log.Error(logModule, "search failed", map[string]interface{}{"error": err, "k": k})
		return []SearchResult{}
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			ID:         m.ID,
			Content:    m.Content,
			Metadata:   m.Metadata,
			Distance:   m.Distance,
			Similarity: 1 - m.Distance,
		})
	}
	return results
}

func (s *Store) Get(ctx context.Context, id string) (*Document, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	rec, err := s.backend.Get(ctx, id)
	if err != nil {
		s.log.Error(logModule, "failed to get document", map[string]interface{}{"error": err, "id": id})
		return nil, false
	}
	if rec == nil {
		return nil, false
	}
	return &Document{ID: rec.ID, Content: rec.Content, Metadata: rec.Metadata}, true
}

func (s *Store) Delete(ctx context.Context, id string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.backend.Delete(ctx, id); err != nil {
		s.log.Error(logModule, "failed to delete document", map[string]interface{}{"error": err, "id": id})
		return false
	}
	s.log.Info(logModule, "document deleted", map[string]interface{}{"id": id})
	return true
}

// Update replaces a document by deleting and re-adding it. The two steps are
// not atomic: if the add fails the old document is already gone.
func (s *Store) Update(ctx context.Context, id, content string, metadata map[string]interface{}) bool {
	if !s.Delete(ctx, id) {
		return false
	}
	return s.Add(ctx, id, content, metadata)
}

func (s *Store) Stats(ctx context.Context) Stats {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	st := Stats{
		CollectionName:   s.opts.Collection,
		EmbeddingModel:   s.embedder.ModelName(),
		PersistDirectory: s.opts.PersistDirectory,
		Backend:          s.backend.Name(),
	}
	n, err := s.backend.Count(ctx)
	if err != nil {
		s.log.Error(logModule, "failed to count documents", map[string]interface{}{"error": err})
		st.Error = err.Error()
		return st
	}
	st.DocumentCount = n
	return st
}

func (s *Store) HealthCheck(ctx context.Context) Health {
	st := s.Stats(ctx)
	h := Health{CollectionStats: st, Timestamp: s.now().UTC()}
	if st.Error != "" {
		h.Status = "unhealthy"
		h.Error = st.Error
		return h
	}
	h.Status = "healthy"
	return h
}

// Reset drops every document in the collection.
func (s *Store) Reset(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.backend.Reset(ctx); err != nil {
		s.log.Error(logModule, "failed to reset collection", map[string]interface{}{"error": err})
		return false
	}
	s.log.Warn(logModule, "collection reset", map[string]interface{}{"collection": s.opts.Collection})
	return true
}

func (s *Store) record(ctx context.Context, item Item) (Record, error) {
	if item.ID == "" {
		return Record{}, fmt.Errorf("document id is required")
	}
	if item.Content == "" {
		return Record{}, ErrEmptyContent
	}
	emb, err := s.embedder.Embed(ctx, item.Content)
	if err != nil {
		return Record{}, err
	}
	md := make(map[string]interface{}, len(item.Metadata)+1)
	for k, v := range item.Metadata {
		md[k] = v
	}
	md["added_at"] = s.now().UTC().Format(time.RFC3339)
	return Record{ID: item.ID, Content: item.Content, Metadata: md, Embedding: emb}, nil
}
