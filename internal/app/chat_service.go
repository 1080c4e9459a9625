package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"netauto/internal/ai"
	"netauto/internal/logger"
	"netauto/internal/model"
	"netauto/internal/repository"
)

const (
	chatSystemPrompt = "You are a helpful network automation AI assistant. Help users with network configuration, troubleshooting, and automation tasks. Be concise but informative."
	chatFallback     = "I'm sorry, I'm having trouble processing your request right now. Error: "

	chatAgentName = "NetworkAgent"
	chatAgentRole = "Network Assistant"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
	ErrMessageEnqueue  = errors.New("message enqueue failed")
)

// MessageSink persists chat messages, either through the queue or directly.
type MessageSink interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// SyncMessageWriter is the sink used when no broker is configured.
type SyncMessageWriter struct {
	repo *repository.MessageRepository
}

func NewSyncMessageWriter(repo *repository.MessageRepository) *SyncMessageWriter {
	return &SyncMessageWriter{repo: repo}
}

func (w *SyncMessageWriter) Publish(ctx context.Context, msg model.ChatMessage) error {
	return w.Write(ctx, &msg)
}

// Write inserts msg and fills in its id.
func (w *SyncMessageWriter) Write(_ context.Context, msg *model.ChatMessage) error {
	msg.ID = 0
	return w.repo.Create(msg)
}

// messageWriter is implemented by sinks that persist before returning.
type messageWriter interface {
	Write(ctx context.Context, msg *model.ChatMessage) error
}

type ChatOptions struct {
	MaxContext  int
	Temperature *float64
	MaxTokens   int
	ContextK    int
}

type ChatService struct {
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	sink         MessageSink
	historyCache HistoryCache
	llm          ChatCompleter
	searcher     DocumentSearcher
	opts         ChatOptions
	log          logger.Logger
	now          func() time.Time
}

type SendMessageInput struct {
	UserID     uint
	SessionID  string
	Content    string
	UseContext bool
}

type SendMessageResult struct {
	SessionID     string  `json:"session_id"`
	Response      string  `json:"response"`
	MessageID     uint    `json:"message_id"`
	Success       bool    `json:"success"`
	ExecutionTime float64 `json:"execution_time"`
}

// NewChatService wires the chat flow. historyCache and searcher may be nil.
func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	sink MessageSink,
	historyCache HistoryCache,
	llm ChatCompleter,
	searcher DocumentSearcher,
	opts ChatOptions,
	log logger.Logger,
) *ChatService {
	if opts.MaxContext <= 0 {
		opts.MaxContext = 10
	}
	if opts.Temperature == nil {
		t := ai.DefaultTemperature
		opts.Temperature = &t
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	if opts.ContextK <= 0 {
		opts.ContextK = defaultRAGTopK
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		sink:         sink,
		historyCache: historyCache,
		llm:          llm,
		searcher:     searcher,
		opts:         opts,
		log:          log,
		now:          time.Now,
	}
}

// SendMessage stores the user message, asks the LLM and stores the reply. A
// failed LLM call still produces an assistant message carrying the error.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session := &model.ChatSession{ID: sessionID, UserID: input.UserID, Title: sessionTitle(content)}
	if err := s.sessionRepo.Ensure(session); err != nil {
		return nil, err
	}
	if session.UserID != 0 && input.UserID != 0 && session.UserID != input.UserID {
		return nil, ErrSessionNotFound
	}

	recent, err := s.messageRepo.ListRecentBySessionID(sessionID, s.opts.MaxContext)
	if err != nil {
		return nil, err
	}

	start := s.now()
	userMessage := model.ChatMessage{
		SessionID:   sessionID,
		MessageType: model.MessageTypeUser,
		Content:     content,
		CreatedAt:   start,
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	if err := s.persist(ctx, &userMessage); err != nil {
		s.log.Error("chat", "persist user message failed", map[string]interface{}{"session_id": sessionID, "error": err})
		return nil, ErrMessageEnqueue
	}

	var contextIDs []string
	system := chatSystemPrompt
	if input.UseContext && s.searcher != nil {
		results := s.searcher.Search(ctx, content, s.opts.ContextK, nil)
		if len(results) > 0 {
			parts := make([]string, 0, len(results))
			for _, r := range results {
				parts = append(parts, "Document: "+truncate(r.Content, contextCharBudget)+"...")
				contextIDs = append(contextIDs, r.ID)
			}
			system += "\n\nRelevant documentation:\n" + strings.Join(parts, "\n\n")
		}
	}

	res := s.llm.Chat(ctx, buildChatMessages(system, recent, content),
		ai.WithTemperature(*s.opts.Temperature),
		ai.WithMaxTokens(s.opts.MaxTokens),
	)
	reply := strings.TrimSpace(res.Response)
	if !res.Success {
		s.log.Warn("chat", "llm call failed", map[string]interface{}{"session_id": sessionID, "error": res.Error})
		reply = chatFallback + res.Error
	}
	elapsed := s.now().Sub(start).Seconds()

	assistantMessage := model.ChatMessage{
		SessionID:     sessionID,
		MessageType:   model.MessageTypeAssistant,
		Content:       reply,
		AgentName:     chatAgentName,
		AgentRole:     chatAgentRole,
		ExecutionTime: elapsed,
		CreatedAt:     s.now(),
	}
	if len(contextIDs) > 0 {
		raw, _ := json.Marshal(contextIDs)
		assistantMessage.ContextUsed = datatypes.JSON(raw)
	}
	if err := s.persist(ctx, &assistantMessage); err != nil {
		s.log.Error("chat", "persist assistant message failed", map[string]interface{}{"session_id": sessionID, "error": err})
		return nil, ErrMessageEnqueue
	}

	return &SendMessageResult{
		SessionID:     sessionID,
		Response:      reply,
		MessageID:     assistantMessage.ID,
		Success:       res.Success,
		ExecutionTime: elapsed,
	}, nil
}

// GetHistory returns the session's messages oldest first. Unknown sessions
// have an empty history.
func (s *ChatService) GetHistory(ctx context.Context, userID uint, sessionID string, limit int) ([]model.ChatMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return []model.ChatMessage{}, nil
	}
	if session.UserID != 0 && userID != 0 && session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	if limit <= 0 || limit > repository.MaxHistoryLimit {
		limit = repository.DefaultHistoryLimit
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	// The cached copy always holds the widest window so any later limit can
	// be served from it.
	messages, err := s.messageRepo.ListBySessionID(sessionID, repository.MaxHistoryLimit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return trimMessages(messages, limit), nil
}

func (s *ChatService) ListSessions(userID uint) ([]model.ChatSession, error) {
	return s.sessionRepo.ListByUserID(userID)
}

// persist fills in msg.ID when the sink writes synchronously; queued messages
// keep a zero id until the worker stores them.
func (s *ChatService) persist(ctx context.Context, msg *model.ChatMessage) error {
	if w, ok := s.sink.(messageWriter); ok {
		return w.Write(ctx, msg)
	}
	return s.sink.Publish(ctx, *msg)
}

func buildChatMessages(system string, recent []model.ChatMessage, current string) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(recent)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: system})
	for _, item := range recent {
		role := item.MessageType
		if role == "" {
			role = model.MessageTypeUser
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: item.Content})
	}
	return append(messages, ai.ChatMessage{Role: "user", Content: current})
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

func sessionTitle(content string) string {
	title := truncate(strings.Join(strings.Fields(content), " "), 50)
	if title == "" {
		return "New Chat"
	}
	return title
}
