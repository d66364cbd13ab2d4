// Package aiazure adapts Azure OpenAI deployments to the llm.LLM interface.
// Requests go through the OpenAI SDK with Azure endpoint routing, and the
// model option carries the deployment name rather than a model id.
package aiazure

import (
	"context"
	"os"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const defaultAPIVersion = "2024-06-01"

// ProviderOption configures the Azure OpenAI provider.
type ProviderOption func(*AzureOpenAIProvider)

// WithAPIVersion overrides the Azure OpenAI API version.
func WithAPIVersion(version string) ProviderOption {
	return func(p *AzureOpenAIProvider) {
		p.apiVersion = version
	}
}

// WithAzureADCredential switches authentication from API key to Azure AD.
func WithAzureADCredential(cred azcore.TokenCredential) ProviderOption {
	return func(p *AzureOpenAIProvider) {
		p.tokenCredential = cred
	}
}

// AzureOpenAIProvider calls Chat Completions on an Azure OpenAI resource.
type AzureOpenAIProvider struct {
	client          openai.Client
	endpoint        string
	apiKey          string
	apiVersion      string
	tokenCredential azcore.TokenCredential
}

// NewAzureOpenAIProvider builds a provider for the given resource endpoint.
// An empty API key falls back to AZURE_OPENAI_API_KEY unless an Azure AD
// credential is configured.
func NewAzureOpenAIProvider(endpoint, apiKey string, opts ...ProviderOption) *AzureOpenAIProvider {
	p := &AzureOpenAIProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		apiVersion: defaultAPIVersion,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}

	clientOpts := []option.RequestOption{azure.WithEndpoint(p.endpoint, p.apiVersion)}
	if p.tokenCredential != nil {
		clientOpts = append(clientOpts, azure.WithTokenCredential(p.tokenCredential))
	} else {
		clientOpts = append(clientOpts, azure.WithAPIKey(p.apiKey))
	}

	p.client = openai.NewClient(clientOpts...)
	return p
}

// Chat implements llm.LLM. The deployment name is required and arrives via
// llm.WithModel.
func (p *AzureOpenAIProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if p.endpoint == "" {
		return llm.Response{}, azureErrors.New(ErrMissingEndpoint)
	}
	if len(messages) == 0 {
		return llm.Response{}, azureErrors.New(ErrEmptyMessages)
	}

	options := llm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Model == "" {
		return llm.Response{}, azureErrors.New(ErrMissingDeployment)
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
	if options.ResponseFormat != nil && options.ResponseFormat.Type == llm.ResponseFormatTypeJSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, ParseAzureError(err).
			WithDetail("deployment", options.Model).
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
			return nil, azureErrors.New(ErrUnsupportedRole).
				WithDetail("role", msg.Role).
				WithDetail("message_index", i)
		}
	}
	return turns, nil
}

func toResponse(completion *openai.ChatCompletion) (llm.Response, error) {
	if len(completion.Choices) == 0 {
		return llm.Response{}, azureErrors.New(ErrEmptyCompletion)
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
