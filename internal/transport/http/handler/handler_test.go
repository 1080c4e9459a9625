package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"netauto/internal/ai"
	"netauto/internal/app"
	"netauto/internal/bootstrap"
	"netauto/internal/config"
	"netauto/internal/logger"
	"netauto/internal/model"
	"netauto/internal/platform/sqlite"
	"netauto/internal/plugin"
	"netauto/internal/repository"
	"netauto/internal/transport/http/middleware"
	"netauto/internal/transport/http/response"
	"netauto/internal/validator"
	"netauto/internal/vectorstore"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type hashEmbedder struct{}

func (hashEmbedder) ModelName() string {
	return "test-words"
}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 32)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%32]++
	}
	return vec, nil
}

// fakeOllama serves both the chat and the assistant surfaces.
type fakeOllama struct {
	fail string
}

func (f *fakeOllama) result() ai.Result {
	if f.fail != "" {
		return ai.Result{Success: false, Error: f.fail}
	}
	return ai.Result{Success: true, Response: "configure it like this", Model: "llama3.2:1b"}
}

func (f *fakeOllama) Chat(context.Context, []ai.ChatMessage, ...ai.Option) ai.Result {
	return f.result()
}

func (f *fakeOllama) AnalyzeConfig(context.Context, string) ai.Result {
	return f.result()
}

func (f *fakeOllama) GenerateCommands(context.Context, string, string) ai.Result {
	return f.result()
}

func (f *fakeOllama) Troubleshoot(context.Context, string, string) ai.Result {
	return f.result()
}

func (f *fakeOllama) ListModels(context.Context) ([]ai.ModelInfo, error) {
	return nil, nil
}

func (f *fakeOllama) Model() string {
	return "llama3.2:1b"
}

func (f *fakeOllama) HealthCheck(context.Context) ai.HealthStatus {
	if f.fail != "" {
		return ai.HealthStatus{Status: "unhealthy", Error: f.fail}
	}
	return ai.HealthStatus{Status: "healthy"}
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	store  *vectorstore.Store
	llm    *fakeOllama
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	backend, err := vectorstore.NewMemoryBackend("")
	require.NoError(t, err)
	store := vectorstore.New(backend, hashEmbedder{}, vectorstore.Options{Collection: "network_docs"}, nil)
	llm := &fakeOllama{}

	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	messages := repository.NewMessageRepository(db)
	devices := repository.NewDeviceRepository(db)
	documents := repository.NewDocumentRepository(db)
	audits := repository.NewAuditRepository(db)

	authService := app.NewAuthService(users, "test-secret", time.Hour)
	chatService := app.NewChatService(sessions, messages, app.NewSyncMessageWriter(messages), nil, llm, store, app.ChatOptions{}, nil)
	ragService := app.NewRAGService(store, llm, app.RAGOptions{}, nil)
	docService := app.NewDocumentService(store, documents, nil, app.DocumentOptions{UploadDir: t.TempDir(), MaxFileSize: 1 << 20}, nil)
	deviceService := app.NewDeviceService(devices, nil)
	networkService := app.NewNetworkService(devices, audits, validator.New(true), nil)
	statsService := app.NewStatsService(devices, documents, messages, audits, backend)
	registry := plugin.NewRegistry()
	require.NoError(t, registry.Register(plugin.NewCommandLibrary()))

	authHandler := NewAuthHandler(authService)
	chatHandler := NewChatHandler(chatService)
	ragHandler := NewRAGHandler(ragService)
	documentHandler := NewDocumentHandler(docService, store)
	deviceHandler := NewDeviceHandler(deviceService)
	networkHandler := NewNetworkHandler(networkService)
	aiHandler := NewAIHandler(app.NewAssistantService(llm))
	statsHandler := NewStatsHandler(statsService)
	pluginHandler := NewPluginHandler(registry)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/auth/me", middleware.AuthJWT("test-secret"), authHandler.Me)
	v1.GET("/devices", deviceHandler.List)
	v1.POST("/devices", deviceHandler.Create)
	v1.GET("/devices/:id", deviceHandler.Get)
	v1.PUT("/devices/:id", deviceHandler.Update)
	v1.DELETE("/devices/:id", deviceHandler.Delete)
	v1.POST("/chat/message", chatHandler.SendMessage)
	v1.GET("/chat/history/:session_id", chatHandler.GetHistory)
	v1.POST("/network/audit", networkHandler.Audit)
	v1.POST("/network/validate", networkHandler.Validate)
	v1.GET("/network/topology", networkHandler.Topology)
	v1.GET("/network/device-types", networkHandler.DeviceTypes)
	v1.GET("/ollama/health", aiHandler.OllamaHealth)
	v1.POST("/ai/analyze-config", aiHandler.AnalyzeConfig)
	v1.GET("/vectorstore/health", documentHandler.VectorHealth)
	v1.POST("/vectorstore/reset", documentHandler.VectorReset)
	v1.POST("/documents/add", documentHandler.Add)
	v1.POST("/documents/search", documentHandler.Search)
	v1.POST("/documents/upload", documentHandler.Upload)
	v1.POST("/documents/scrape", documentHandler.Scrape)
	v1.GET("/documents/vectors/:id", documentHandler.GetVector)
	v1.DELETE("/documents/:id", documentHandler.Delete)
	v1.POST("/rag/query", ragHandler.Query)
	v1.GET("/stats", statsHandler.Dashboard)
	v1.GET("/plugins", pluginHandler.List)
	registry.Mount(v1)

	return &testServer{router: r, db: db, store: store, llm: llm}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{"username": "netops", "email": "netops@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, env.Data)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	w, env = s.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{"username": "netops", "email": "x@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeUsernameExists, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "netops", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeInvalidCredentials, env.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.RoleAdmin, decode(t, env.Data)["role"])

	w, env = s.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeUnauthorized, env.Code)
}

func TestDeviceEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/devices", gin.H{"name": "R15", "host": "172.16.39.115", "device_type": "cisco_ios", "password": "cisco"})
	require.Equal(t, http.StatusCreated, w.Code)
	device := decode(t, env.Data)
	assert.Equal(t, "R15", device["name"])
	assert.NotContains(t, device, "password")

	w, env = s.do(t, http.MethodPost, "/api/v1/devices", gin.H{"name": "R15", "host": "172.16.39.115", "device_type": "cisco_ios"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.CodeDeviceExists, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/devices", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeBadRequest, env.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/devices/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/devices/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeDeviceNotFound, env.Code)

	w, env = s.do(t, http.MethodPut, "/api/v1/devices/1", gin.H{"status": "online"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, env.Data)["status"])

	w, env = s.do(t, http.MethodGet, "/api/v1/devices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, env.Data)["count"])

	w, _ = s.do(t, http.MethodDelete, "/api/v1/devices/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDocumentEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/documents/add", gin.H{"id": "bgp-guide", "content": "router bgp 2222 neighbor 10.0.0.2 remote-as 2222"})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, env.Data)
	assert.Equal(t, "bgp-guide", data["document_id"])
	assert.Equal(t, "Document added successfully", data["message"])

	w, env = s.do(t, http.MethodPost, "/api/v1/documents/add", gin.H{"id": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/documents/search", gin.H{"query": "bgp neighbor", "n_results": 3})
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, env.Data)
	assert.EqualValues(t, 1, data["count"])
	assert.Equal(t, "bgp neighbor", data["query"])

	w, env = s.do(t, http.MethodPost, "/api/v1/documents/search", gin.H{"query": "bgp", "n_results": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/documents/vectors/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeDocumentNotFound, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/documents/scrape", gin.H{"url": "https://example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, response.CodeUnavailable, env.Code)
}

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadEndpoint(t *testing.T) {
	s := newTestServer(t)

	w, env := s.serve(t, multipartUpload(t, "ospf.md", "# OSPF\n\nrouter ospf 1\n network 10.0.0.0 0.0.0.255 area 0\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, env.Data)
	assert.Equal(t, "Document processed successfully", data["message"])
	assert.Equal(t, "ospf.md", data["filename"])
	doc := data["document"].(map[string]interface{})
	assert.Equal(t, model.DocumentStatusProcessed, doc["status"])
	assert.EqualValues(t, 1, doc["chunk_count"])

	w, env = s.serve(t, multipartUpload(t, "tool.exe", "MZ"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeFileTypeNotAllowed, env.Code)

	w, env = s.serve(t, multipartUpload(t, "blank.txt", "   "))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.DocumentStatusError, decode(t, env.Data)["status"])

	w, env = s.do(t, http.MethodPost, "/api/v1/documents/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no file provided", env.Message)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/documents/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(t, http.MethodDelete, "/api/v1/documents/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRAGQueryEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.True(t, s.store.Add(context.Background(), "vlan", "vlan 10 name users", map[string]interface{}{"source": "manual"}))

	w, env := s.do(t, http.MethodPost, "/api/v1/rag/query", gin.H{"query": "how do I add a vlan"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, env.Data)
	assert.Equal(t, true, data["success"])
	assert.EqualValues(t, 1, data["context_documents"])

	w, env = s.do(t, http.MethodPost, "/api/v1/rag/query", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.llm.fail = "connection refused"
	w, env = s.do(t, http.MethodPost, "/api/v1/rag/query", gin.H{"query": "vlan"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.CodeLLMFailed, env.Code)
	assert.Equal(t, false, decode(t, env.Data)["success"])
}

func TestChatEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/chat/message", gin.H{"message": "show bgp peers", "session_id": "lab-1"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, env.Data)
	assert.Equal(t, "lab-1", data["session_id"])
	assert.Equal(t, "configure it like this", data["response"])

	w, env = s.do(t, http.MethodGet, "/api/v1/chat/history/lab-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, env.Data)["count"])

	w, env = s.do(t, http.MethodGet, "/api/v1/chat/history/unknown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, env.Data)["count"])

	w, env = s.do(t, http.MethodPost, "/api/v1/chat/message", gin.H{"session_id": "lab-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNetworkEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/network/validate", gin.H{"device_type": "juniper_junos", "config_text": "set system host-name R15\n"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, validator.StatusSuccess, decode(t, env.Data)["status"])

	w, env = s.do(t, http.MethodPost, "/api/v1/network/validate", gin.H{"device_type": "cisco_ios"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/network/audit", gin.H{"device_names": []string{"R15"}, "audit_types": []string{"traceroute"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeBadRequest, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/network/audit", gin.H{"device_names": []string{"R15"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "started", decode(t, env.Data)["status"])

	w, env = s.do(t, http.MethodGet, "/api/v1/network/device-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, env.Data), "audit_types")

	w, _ = s.do(t, http.MethodGet, "/api/v1/network/topology", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAIAndVectorEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/ai/analyze-config", gin.H{"config_text": "hostname R15"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Unknown", decode(t, env.Data)["device_name"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/vectorstore/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/vectorstore/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.llm.fail = "ollama down"
	w, env = s.do(t, http.MethodGet, "/api/v1/ollama/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, response.CodeUnavailable, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/ai/analyze-config", gin.H{"config_text": "hostname R15"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.CodeLLMFailed, env.Code)
}

func TestStatsAndPlugins(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, env.Data), "total_devices")

	w, env = s.do(t, http.MethodGet, "/api/v1/plugins", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, env.Data)["count"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/library/commands?vendor=cisco", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	cfg := &config.Config{App: config.AppConfig{Name: "netauto", Env: "test", Version: "1.0.0"}}
	a := &bootstrap.App{Config: cfg, Logger: logger.NewNop(), DB: s.db, VectorStore: s.store, StartedAt: time.Now()}
	h := NewHealthHandler(a)

	r := gin.New()
	r.GET("/healthz", h.Check)
	r.GET("/api/v1/health", h.Basic)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		App          string                            `json:"app"`
		Dependencies map[string]map[string]interface{} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "netauto", body.App)
	assert.Equal(t, true, body.Dependencies["database"]["ok"])
	assert.Equal(t, true, body.Dependencies["redis"]["disabled"])
	assert.Equal(t, true, body.Dependencies["rabbitmq"]["disabled"])
	assert.Equal(t, true, body.Dependencies["vectorstore"]["ok"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data := decode(t, env.Data)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "connected", data["database"])
}
