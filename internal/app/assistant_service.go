package app

import (
	"context"
	"strings"

	"netauto/internal/ai"
)

const (
	defaultDeviceName = "Unknown"
	defaultDeviceType = "cisco_ios"
)

// LLMAssistant is the Ollama surface used by the assistant endpoints.
type LLMAssistant interface {
	AnalyzeConfig(ctx context.Context, configText string) ai.Result
	GenerateCommands(ctx context.Context, task, deviceType string) ai.Result
	Troubleshoot(ctx context.Context, issue, deviceLogs string) ai.Result
	HealthCheck(ctx context.Context) ai.HealthStatus
	ListModels(ctx context.Context) ([]ai.ModelInfo, error)
	Model() string
}

type AssistantService struct {
	llm LLMAssistant
}

type AnalyzeResult struct {
	Success    bool   `json:"success"`
	Analysis   string `json:"analysis,omitempty"`
	Model      string `json:"model,omitempty"`
	TokensUsed int    `json:"tokens_used"`
	DeviceName string `json:"device_name"`
	Error      string `json:"error,omitempty"`
}

type CommandsResult struct {
	Success         bool   `json:"success"`
	Commands        string `json:"commands,omitempty"`
	Model           string `json:"model,omitempty"`
	TaskDescription string `json:"task_description"`
	DeviceType      string `json:"device_type"`
	TokensUsed      int    `json:"tokens_used"`
	Error           string `json:"error,omitempty"`
}

type TroubleshootResult struct {
	Success          bool   `json:"success"`
	Guidance         string `json:"guidance,omitempty"`
	Model            string `json:"model,omitempty"`
	IssueDescription string `json:"issue_description"`
	TokensUsed       int    `json:"tokens_used"`
	Error            string `json:"error,omitempty"`
}

type ModelsResult struct {
	Models       []ai.ModelInfo `json:"models"`
	CurrentModel string         `json:"current_model"`
	Count        int            `json:"count"`
}

func NewAssistantService(llm LLMAssistant) *AssistantService {
	return &AssistantService{llm: llm}
}

func (s *AssistantService) AnalyzeConfig(ctx context.Context, configText, deviceName string) (*AnalyzeResult, error) {
	if strings.TrimSpace(configText) == "" {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(deviceName) == "" {
		deviceName = defaultDeviceName
	}
	res := s.llm.AnalyzeConfig(ctx, configText)
	return &AnalyzeResult{
		Success:    res.Success,
		Analysis:   res.Response,
		Model:      res.Model,
		TokensUsed: res.CompletionTokens,
		DeviceName: deviceName,
		Error:      res.Error,
	}, nil
}

func (s *AssistantService) GenerateCommands(ctx context.Context, task, deviceType string) (*CommandsResult, error) {
	if strings.TrimSpace(task) == "" {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(deviceType) == "" {
		deviceType = defaultDeviceType
	}
	res := s.llm.GenerateCommands(ctx, task, deviceType)
	return &CommandsResult{
		Success:         res.Success,
		Commands:        res.Response,
		Model:           res.Model,
		TaskDescription: task,
		DeviceType:      deviceType,
		TokensUsed:      res.CompletionTokens,
		Error:           res.Error,
	}, nil
}

func (s *AssistantService) Troubleshoot(ctx context.Context, issue, deviceLogs string) (*TroubleshootResult, error) {
	if strings.TrimSpace(issue) == "" {
		return nil, ErrInvalidInput
	}
	res := s.llm.Troubleshoot(ctx, issue, deviceLogs)
	return &TroubleshootResult{
		Success:          res.Success,
		Guidance:         res.Response,
		Model:            res.Model,
		IssueDescription: issue,
		TokensUsed:       res.CompletionTokens,
		Error:            res.Error,
	}, nil
}

func (s *AssistantService) Health(ctx context.Context) ai.HealthStatus {
	return s.llm.HealthCheck(ctx)
}

func (s *AssistantService) Models(ctx context.Context) (*ModelsResult, error) {
	models, err := s.llm.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []ai.ModelInfo{}
	}
	return &ModelsResult{Models: models, CurrentModel: s.llm.Model(), Count: len(models)}, nil
}
