// Package aianthropic adapts the Anthropic Messages API to the llm.LLM
// interface. System messages are lifted out of the conversation and sent
// through the dedicated system field the API expects.
package aianthropic

import (
	"context"
	"os"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	apiKey string
}

// NewAnthropicProvider builds a provider around the given API key, falling
// back to ANTHROPIC_API_KEY when the key is empty.
func NewAnthropicProvider(apiKey string, opts ...option.RequestOption) *AnthropicProvider {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &AnthropicProvider{
		client: anthropic.NewClient(reqOpts...),
		apiKey: apiKey,
	}
}

// Chat implements llm.LLM.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if p.apiKey == "" {
		return llm.Response{}, anthropicErrors.New(ErrMissingAPIKey)
	}
	if len(messages) == 0 {
		return llm.Response{}, anthropicErrors.New(ErrEmptyMessages)
	}

	options := llm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Model == "" {
		options.Model = defaultModel
	}

	system, turns, err := splitMessages(messages)
	if err != nil {
		return llm.Response{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.Model),
		MaxTokens: maxTokens(options),
		Messages:  turns,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != 0 {
		params.Temperature = anthropic.Float(float64(options.Temperature))
	}
	if options.TopP != 0 {
		params.TopP = anthropic.Float(float64(options.TopP))
	}
	if len(options.Stop) > 0 {
		params.StopSequences = options.Stop
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Response{}, ParseAnthropicError(err).
			WithDetail("model", options.Model).
			WithDetail("num_messages", len(messages))
	}

	return toResponse(msg), nil
}

// maxTokens resolves the token cap. The Messages API requires one, so an
// unset cap falls back to defaultMaxTokens.
func maxTokens(options *llm.ChatOptions) int64 {
	switch {
	case options.MaxCompletionTokens > 0:
		return int64(options.MaxCompletionTokens)
	case options.MaxTokens > 0:
		return int64(options.MaxTokens)
	default:
		return defaultMaxTokens
	}
}

// splitMessages separates system prompts from user and assistant turns.
func splitMessages(messages []llm.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam, error) {
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case llm.RoleUser:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case llm.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return nil, nil, anthropicErrors.New(ErrUnsupportedRole).WithDetail("role", msg.Role)
		}
	}

	return system, turns, nil
}

func toResponse(msg *anthropic.Message) llm.Response {
	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return llm.Response{
		Message: llm.Message{Role: llm.RoleAssistant, Content: content},
		Usage: llm.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
}
