// Package aibedrock adapts the AWS Bedrock Converse API to the llm.LLM
// interface. Credentials and region come from the supplied aws.Config.
package aibedrock

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/Abraxas-365/fateweaver/pkg/ptrx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const defaultModel = "anthropic.claude-sonnet-4-20250514-v1:0"

// ProviderOption configures the Bedrock provider.
type ProviderOption func(*BedrockProvider)

// WithDefaultModel overrides the model used when a request sets none.
func WithDefaultModel(model string) ProviderOption {
	return func(p *BedrockProvider) {
		p.defaultModel = model
	}
}

// BedrockProvider calls Bedrock models through the Converse API.
type BedrockProvider struct {
	client       *bedrockruntime.Client
	defaultModel string
}

// NewBedrockProvider builds a provider around the given AWS config.
func NewBedrockProvider(cfg aws.Config, opts ...ProviderOption) *BedrockProvider {
	p := &BedrockProvider{
		client:       bedrockruntime.NewFromConfig(cfg),
		defaultModel: defaultModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Chat implements llm.LLM.
func (p *BedrockProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if len(messages) == 0 {
		return llm.Response{}, bedrockErrors.New(ErrEmptyMessages)
	}

	options := llm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Model == "" {
		options.Model = p.defaultModel
	}

	system, turns, err := splitMessages(messages)
	if err != nil {
		return llm.Response{}, err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(options.Model),
		Messages: turns,
	}
	if len(system) > 0 {
		input.System = system
	}
	if config := inferenceConfig(options); config != nil {
		input.InferenceConfig = config
	}

	output, err := p.client.Converse(ctx, input)
	if err != nil {
		return llm.Response{}, ParseBedrockError(err).
			WithDetail("model", options.Model).
			WithDetail("num_messages", len(messages))
	}

	return toResponse(output)
}

// splitMessages separates system prompts, which Converse takes as top-level
// system blocks, from the user and assistant turns.
func splitMessages(messages []llm.Message) ([]types.SystemContentBlock, []types.Message, error) {
	var system []types.SystemContentBlock
	var turns []types.Message

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, &types.SystemContentBlockMemberText{Value: msg.Content})
		case llm.RoleUser:
			turns = append(turns, converseMessage(types.ConversationRoleUser, msg.Content))
		case llm.RoleAssistant:
			turns = append(turns, converseMessage(types.ConversationRoleAssistant, msg.Content))
		default:
			return nil, nil, bedrockErrors.New(ErrUnsupportedRole).WithDetail("role", msg.Role)
		}
	}

	return system, turns, nil
}

func converseMessage(role types.ConversationRole, text string) types.Message {
	return types.Message{
		Role:    role,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
	}
}

// inferenceConfig translates set options into a Converse inference block,
// returning nil when no knobs are set so the model defaults apply.
func inferenceConfig(options *llm.ChatOptions) *types.InferenceConfiguration {
	config := &types.InferenceConfiguration{}
	set := false

	if options.MaxCompletionTokens > 0 {
		config.MaxTokens = ptrx.Ptr(int32(options.MaxCompletionTokens))
		set = true
	} else if options.MaxTokens > 0 {
		config.MaxTokens = ptrx.Ptr(int32(options.MaxTokens))
		set = true
	}
	if options.Temperature != 0 {
		config.Temperature = ptrx.Ptr(options.Temperature)
		set = true
	}
	if options.TopP != 0 {
		config.TopP = ptrx.Ptr(options.TopP)
		set = true
	}
	if len(options.Stop) > 0 {
		config.StopSequences = options.Stop
		set = true
	}

	if !set {
		return nil
	}
	return config
}

func toResponse(output *bedrockruntime.ConverseOutput) (llm.Response, error) {
	msgOut, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return llm.Response{}, bedrockErrors.New(ErrUnexpectedOutput).
			WithDetail("output_type", fmt.Sprintf("%T", output.Output))
	}

	var content string
	for _, block := range msgOut.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			content += text.Value
		}
	}

	var usage llm.Usage
	if output.Usage != nil {
		usage = llm.Usage{
			PromptTokens:     int(ptrx.Value(output.Usage.InputTokens)),
			CompletionTokens: int(ptrx.Value(output.Usage.OutputTokens)),
			TotalTokens:      int(ptrx.Value(output.Usage.TotalTokens)),
		}
	}

	return llm.Response{
		Message: llm.Message{Role: llm.RoleAssistant, Content: content},
		Usage:   usage,
	}, nil
}
