// Package aiopenai adapts the OpenAI Chat Completions API to the llm.LLM
// interface.
package aiopenai

import (
	"context"
	"os"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const defaultModel = "gpt-4o"

// OpenAIProvider calls the OpenAI Chat Completions API.
type OpenAIProvider struct {
	client openai.Client
	apiKey string
}

// NewOpenAIProvider builds a provider around the given API key, falling back
// to OPENAI_API_KEY when the key is empty.
func NewOpenAIProvider(apiKey string, opts ...option.RequestOption) *OpenAIProvider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAIProvider{
		client: openai.NewClient(reqOpts...),
		apiKey: apiKey,
	}
}

// Chat implements llm.LLM.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if p.apiKey == "" {
		return llm.Response{}, openaiErrors.New(ErrMissingAPIKey)
	}
	if len(messages) == 0 {
		return llm.Response{}, openaiErrors.New(ErrEmptyMessages)
	}

	options := llm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Model == "" {
		options.Model = defaultModel
	}

	turns, err := convertMessages(messages)
	if err != nil {
		return llm.Response{}, err
	}

	params := openai.ChatCompletionNewParams{
		Messages: turns,
		Model:    options.Model,
	}
	if options.Temperature != 0 {
		params.Temperature = openai.Float(float64(options.Temperature))
	}
	if options.TopP != 0 {
		params.TopP = openai.Float(float64(options.TopP))
	}
	if options.MaxCompletionTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(options.MaxCompletionTokens))
	} else if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if len(options.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: options.Stop}
	}
	if options.ResponseFormat != nil {
		params.ResponseFormat = responseFormat(options.ResponseFormat)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, ParseOpenAIError(err).
			WithDetail("model", options.Model).
			WithDetail("num_messages", len(messages))
	}

	return toResponse(completion)
}

func convertMessages(messages []llm.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	turns := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			turns = append(turns, openai.SystemMessage(msg.Content))
		case llm.RoleUser:
			turns = append(turns, openai.UserMessage(msg.Content))
		case llm.RoleAssistant:
			turns = append(turns, openai.AssistantMessage(msg.Content))
		default:
			return nil, openaiErrors.New(ErrUnsupportedRole).
				WithDetail("role", msg.Role).
				WithDetail("message_index", i)
		}
	}
	return turns, nil
}

func responseFormat(format *llm.ResponseFormat) openai.ChatCompletionNewParamsResponseFormatUnion {
	if format.Type == llm.ResponseFormatTypeJSONObject {
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfText: &shared.ResponseFormatTextParam{},
	}
}

func toResponse(completion *openai.ChatCompletion) (llm.Response, error) {
	if len(completion.Choices) == 0 {
		return llm.Response{}, openaiErrors.New(ErrEmptyCompletion)
	}

	choice := completion.Choices[0]

	return llm.Response{
		Message: llm.Message{
			Role:    string(choice.Message.Role),
			Content: choice.Message.Content,
		},
		Usage: llm.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}
