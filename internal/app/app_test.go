package app

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"netauto/internal/ai"
	"netauto/internal/model"
	"netauto/internal/platform/sqlite"
	"netauto/internal/vectorstore"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.ChatSession{}, &model.ChatMessage{},
		&model.Device{}, &model.DocumentRecord{}, &model.AuditResult{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

// wordEmbedder puts texts that share words close together.
type wordEmbedder struct{}

func (wordEmbedder) ModelName() string { return "test-words" }

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

func newTestStore(t *testing.T) *vectorstore.Store {
	t.Helper()
	backend, err := vectorstore.NewMemoryBackend("")
	require.NoError(t, err)
	return vectorstore.New(backend, wordEmbedder{}, vectorstore.Options{Collection: "network_docs"}, nil)
}

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Chat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.Option) ai.Result {
	args := m.Called(ctx, messages)
	return args.Get(0).(ai.Result)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, k int, filter map[string]interface{}) []vectorstore.SearchResult {
	args := m.Called(ctx, query, k, filter)
	results, _ := args.Get(0).([]vectorstore.SearchResult)
	return results
}

// echoLLM answers every chat with a fixed reply and remembers the prompt.
type echoLLM struct {
	reply string
	fail  string
	last  []ai.ChatMessage
}

func (e *echoLLM) Chat(_ context.Context, messages []ai.ChatMessage, _ ...ai.Option) ai.Result {
	e.last = messages
	if e.fail != "" {
		return ai.Result{Success: false, Error: e.fail}
	}
	return ai.Result{Success: true, Response: e.reply, Model: "llama3.2:1b"}
}
