package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type OpenAIClient struct {
	llm   *openai.LLM
	model string
}

func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &OpenAIClient{llm: llm, model: model}, nil
}

func (c *OpenAIClient) Name() string {
	return ProviderOpenAI
}

func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	messageHistory := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		messageHistory = append(messageHistory, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, msg := range req.Messages {
		role := llms.ChatMessageTypeAI
		if msg.Role == RoleUser {
			role = llms.ChatMessageTypeHuman
		}
		messageHistory = append(messageHistory, llms.TextParts(role, msg.Content))
	}

	opts := []llms.CallOption{}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Schema != nil {
		tools := []llms.Tool{
			{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        req.Schema.Name,
					Description: req.Schema.Description,
					Parameters:  req.Schema.Parameters,
				},
			},
		}
		opts = append(opts, llms.WithTools(tools), llms.WithToolChoice("required"))
	}

	resp, err := c.llm.GenerateContent(ctx, messageHistory, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in generation response")
	}

	if req.Schema != nil {
		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			return "", fmt.Errorf("no tool calls in generation response")
		}
		toolCall := choice.ToolCalls[0]
		if toolCall.FunctionCall.Name != req.Schema.Name {
			return "", fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
		}
		return toolCall.FunctionCall.Arguments, nil
	}

	content := resp.Choices[0].Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty content in generation response")
	}
	return content, nil
}
