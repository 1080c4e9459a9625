package ai

import (
	"context"
	"fmt"
)

const (
	analyzeConfigSystemPrompt = `You are a network engineer AI assistant specializing in Cisco network configurations. Analyze the provided configuration and identify:
1. Device type and role
2. Interface configurations
3. Routing protocols (OSPF, BGP, etc.)
4. Potential issues or misconfigurations
5. Security settings
6. Recommendations for improvement

Provide a structured analysis in JSON format.`

	generateCommandsSystemPrompt = `You are a network automation expert. Generate %s commands for network tasks. Always provide:
1. The exact commands to execute
2. Any prerequisites or warnings
3. Expected outcomes
4. Rollback commands if applicable

Be precise and safe - only generate commands you are confident about.`

	troubleshootSystemPrompt = `You are a senior network troubleshooting expert. Analyze network issues and provide:
1. Possible root causes
2. Diagnostic steps to verify the issue
3. Resolution steps
4. Prevention measures

Be methodical and provide step-by-step guidance.`
)

// AnalyzeConfig asks the model for a structured review of a device config.
func (c *OllamaClient) AnalyzeConfig(ctx context.Context, configText string) Result {
	prompt := fmt.Sprintf("Please analyze this network configuration:\n\n%s\n\nProvide a detailed analysis including any issues found and recommendations.", configText)
	return c.Generate(ctx, prompt,
		WithSystemPrompt(analyzeConfigSystemPrompt),
		WithTemperature(0.3),
		WithMaxTokens(1500),
	)
}

func (c *OllamaClient) GenerateCommands(ctx context.Context, task, deviceType string) Result {
	if deviceType == "" {
		deviceType = "cisco_ios"
	}
	prompt := fmt.Sprintf("Generate %s commands for this task: %s\n\nPlease provide a structured format with explanations.", deviceType, task)
	return c.Generate(ctx, prompt,
		WithSystemPrompt(fmt.Sprintf(generateCommandsSystemPrompt, deviceType)),
		WithTemperature(0.2),
		WithMaxTokens(800),
	)
}

func (c *OllamaClient) Troubleshoot(ctx context.Context, issue, deviceLogs string) Result {
	prompt := fmt.Sprintf("Network Issue: %s\n\nDevice Logs (if available):\n%s\n\nPlease provide troubleshooting guidance.", issue, deviceLogs)
	return c.Generate(ctx, prompt,
		WithSystemPrompt(troubleshootSystemPrompt),
		WithTemperature(0.4),
		WithMaxTokens(1200),
	)
}
