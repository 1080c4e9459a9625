package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"netauto/internal/extract"
	"netauto/internal/logger"
	"netauto/internal/model"
	"netauto/internal/repository"
	"netauto/internal/scraper"
	"netauto/internal/vectorstore"
)

const (
	defaultDocumentType = "network_document"
	defaultSearchK      = 5
	extractedTextLimit  = 1000
)

var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrVectorStore        = errors.New("vector store operation failed")
	ErrScraperDisabled    = errors.New("web scraping is not configured")
)

// DocumentStore is the part of vectorstore.Store the document flow needs.
type DocumentStore interface {
	DocumentSearcher
	Add(ctx context.Context, id, content string, metadata map[string]interface{}) bool
	AddBatch(ctx context.Context, items []vectorstore.Item) bool
	Get(ctx context.Context, id string) (*vectorstore.Document, bool)
	Delete(ctx context.Context, id string) bool
	Update(ctx context.Context, id, content string, metadata map[string]interface{}) bool
}

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*scraper.Page, error)
}

type DocumentOptions struct {
	UploadDir         string
	MaxFileSize       int64
	AllowedExtensions []string
	ChunkSize         int
	ChunkOverlap      int
}

type DocumentService struct {
	store   DocumentStore
	repo    *repository.DocumentRepository
	fetcher PageFetcher
	opts    DocumentOptions
	allowed map[string]struct{}
	log     logger.Logger
	now     func() time.Time
}

type AddDocumentInput struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

type SearchInput struct {
	Query  string
	K      int
	Filter map[string]interface{}
}

type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type ScrapeResult struct {
	DocumentID string `json:"document_id"`
	URL        string `json:"url"`
	Characters int    `json:"characters"`
	Message    string `json:"message"`
}

// NewDocumentService builds the ingestion flow. fetcher may be nil, which
// disables Scrape.
func NewDocumentService(store DocumentStore, repo *repository.DocumentRepository, fetcher PageFetcher, opts DocumentOptions, log logger.Logger) *DocumentService {
	if opts.UploadDir == "" {
		opts.UploadDir = "data/documents"
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 16 << 20
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = extract.SupportedExtensions()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = defaultChunkOverlap
	}
	if log == nil {
		log = logger.NewNop()
	}
	allowed := make(map[string]struct{}, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &DocumentService{
		store:   store,
		repo:    repo,
		fetcher: fetcher,
		opts:    opts,
		allowed: allowed,
		log:     log,
		now:     time.Now,
	}
}

// AddDocument stores raw text directly in the vector store.
func (s *DocumentService) AddDocument(ctx context.Context, input AddDocumentInput) (string, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return "", ErrInvalidInput
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	metadata := copyMetadata(input.Metadata)
	if _, ok := metadata["type"]; !ok {
		metadata["type"] = defaultDocumentType
	}
	if !s.store.Add(ctx, id, content, metadata) {
		return "", ErrVectorStore
	}
	return id, nil
}

func (s *DocumentService) Search(ctx context.Context, input SearchInput) ([]vectorstore.SearchResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	k := input.K
	if k <= 0 {
		k = defaultSearchK
	}
	return s.store.Search(ctx, query, k, input.Filter), nil
}

// Upload saves the file, extracts its text, chunks it into the vector store
// and records the outcome. The record is returned even when processing fails.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*model.DocumentRecord, error) {
	original := filepath.Base(strings.TrimSpace(input.Filename))
	if original == "" || original == "." || original == string(filepath.Separator) {
		return nil, ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(original))
	if _, ok := s.allowed[ext]; !ok || !extract.IsSupported(original) {
		return nil, fmt.Errorf("%w: %q", ErrFileTypeNotAllowed, ext)
	}
	if input.Size > s.opts.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.Reader, s.opts.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload failed: %w", err)
	}
	if int64(len(data)) > s.opts.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	docUUID := uuid.NewString()
	stored := docUUID + "_" + original
	path := filepath.Join(s.opts.UploadDir, stored)
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("save upload failed: %w", err)
	}

	record := &model.DocumentRecord{
		Filename:         stored,
		OriginalFilename: original,
		FileType:         strings.TrimPrefix(ext, "."),
		FileSize:         int64(len(data)),
		FilePath:         path,
		Status:           model.DocumentStatusProcessing,
		ContentType:      input.ContentType,
	}
	record.SetVectorIDs(nil)
	if err := s.repo.Create(record); err != nil {
		return nil, err
	}

	if err := s.process(ctx, record, docUUID, data); err != nil {
		record.Status = model.DocumentStatusError
		record.ProcessingError = err.Error()
		if saveErr := s.repo.Save(record); saveErr != nil {
			s.log.Error("documents", "save failed document failed", map[string]interface{}{"document_id": record.ID, "error": saveErr})
		}
		s.log.Warn("documents", "document processing failed", map[string]interface{}{
			"filename": original,
			"error":    err,
		})
		return record, err
	}
	if err := s.repo.Save(record); err != nil {
		return record, err
	}
	s.log.Info("documents", "document processed", map[string]interface{}{
		"filename": original,
		"chunks":   record.ChunkCount,
	})
	return record, nil
}

func (s *DocumentService) process(ctx context.Context, record *model.DocumentRecord, docUUID string, data []byte) error {
	res, err := extract.Extract(record.OriginalFilename, bytes.NewReader(data))
	if err != nil {
		return err
	}
	chunks := chunkText(res.Text, s.opts.ChunkSize, s.opts.ChunkOverlap)

	processedAt := s.now().UTC()
	items := make([]vectorstore.Item, 0, len(chunks))
	ids := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		id := fmt.Sprintf("%s_chunk_%d", docUUID, i)
		md := map[string]interface{}{
			"source":       "upload",
			"type":         defaultDocumentType,
			"filename":     record.OriginalFilename,
			"file_type":    res.FileType,
			"document_id":  int64(record.ID),
			"chunk_index":  i,
			"chunk_count":  len(chunks),
			"processed_at": processedAt.Format(time.RFC3339),
		}
		if res.Pages > 0 {
			md["pages"] = res.Pages
		}
		items = append(items, vectorstore.Item{ID: id, Content: chunk, Metadata: md})
		ids = append(ids, id)
	}
	if !s.store.AddBatch(ctx, items) {
		return ErrVectorStore
	}

	record.Status = model.DocumentStatusProcessed
	record.ExtractedText = truncate(res.Text, extractedTextLimit)
	record.ChunkCount = len(chunks)
	record.SetVectorIDs(ids)
	record.ProcessedAt = &processedAt
	return nil
}

// Scrape fetches a web page and stores its text as one document.
func (s *DocumentService) Scrape(ctx context.Context, rawURL string) (*ScrapeResult, error) {
	if s.fetcher == nil {
		return nil, ErrScraperDisabled
	}
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	if !s.store.Add(ctx, id, page.Text, map[string]interface{}{"source": "web", "url": page.URL}) {
		return nil, ErrVectorStore
	}
	chars := len([]rune(page.Text))
	s.log.Info("documents", "web page ingested", map[string]interface{}{"url": page.URL, "id": id, "characters": chars})
	return &ScrapeResult{
		DocumentID: id,
		URL:        page.URL,
		Characters: chars,
		Message:    fmt.Sprintf("Ingested %d chars from %s", chars, page.URL),
	}, nil
}

func (s *DocumentService) List(status string, limit int) ([]model.DocumentRecord, error) {
	return s.repo.List(status, limit)
}

func (s *DocumentService) GetVector(ctx context.Context, id string) (*vectorstore.Document, error) {
	doc, ok := s.store.Get(ctx, id)
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) UpdateVector(ctx context.Context, id, content string, metadata map[string]interface{}) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(content) == "" {
		return ErrInvalidInput
	}
	if _, ok := s.store.Get(ctx, id); !ok {
		return ErrDocumentNotFound
	}
	if !s.store.Update(ctx, id, content, copyMetadata(metadata)) {
		return ErrVectorStore
	}
	return nil
}

// Delete removes an uploaded document with its chunks and stored file.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrDocumentNotFound
	}
	for _, vid := range record.VectorIDList() {
		if !s.store.Delete(ctx, vid) {
			s.log.Warn("documents", "delete vector failed", map[string]interface{}{"document_id": id, "vector_id": vid})
		}
	}
	if record.FilePath != "" {
		if err := os.Remove(record.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("documents", "remove stored file failed", map[string]interface{}{"path": record.FilePath, "error": err})
		}
	}
	return s.repo.Delete(id)
}

func (s *DocumentService) Count() (int64, error) {
	return s.repo.Count()
}

func copyMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
