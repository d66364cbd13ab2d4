// Package aigemini adapts the Google Gemini API to the llm.LLM interface.
// The provider talks to the public Gemini API by default and can be switched
// to Vertex AI with WithVertexAI.
package aigemini

import (
	"context"
	"os"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// ProviderOption configures the Gemini provider.
type ProviderOption func(*GeminiProvider)

// WithVertexAI routes requests through Vertex AI instead of the Gemini API.
func WithVertexAI(project, location string) ProviderOption {
	return func(p *GeminiProvider) {
		p.project = project
		p.location = location
		p.useVertexAI = true
	}
}

// GeminiProvider calls Gemini models through the genai SDK.
type GeminiProvider struct {
	client      *genai.Client
	apiKey      string
	project     string
	location    string
	useVertexAI bool
}

// NewGeminiProvider builds a provider around the given API key, falling back
// to GEMINI_API_KEY when the key is empty. Vertex AI mode authenticates via
// application default credentials and ignores the key.
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...ProviderOption) (*GeminiProvider, error) {
	p := &GeminiProvider{apiKey: apiKey}
	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("GEMINI_API_KEY")
	}

	config := &genai.ClientConfig{}
	if p.useVertexAI {
		config.Backend = genai.BackendVertexAI
		config.Project = p.project
		config.Location = p.location
	} else {
		config.APIKey = p.apiKey
		config.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, geminiErrors.NewWithCause(ErrClientInit, err)
	}

	p.client = client
	return p, nil
}

// Chat implements llm.LLM.
func (p *GeminiProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if len(messages) == 0 {
		return llm.Response{}, geminiErrors.New(ErrEmptyMessages)
	}

	options := llm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Model == "" {
		options.Model = defaultModel
	}

	system, contents := splitMessages(messages)

	result, err := p.client.Models.GenerateContent(ctx, options.Model, contents, generateConfig(options, system))
	if err != nil {
		return llm.Response{}, ParseGeminiError(err).
			WithDetail("model", options.Model).
			WithDetail("num_messages", len(messages))
	}

	return toResponse(result)
}

// splitMessages separates system prompts, which Gemini takes as a system
// instruction, from the conversation turns. Assistant turns map to the
// "model" role. Unknown roles are skipped.
func splitMessages(messages []llm.Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.NewPartFromText(msg.Content))
		case llm.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		}
	}

	return system, contents
}

func generateConfig(options *llm.ChatOptions, system *genai.Content) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if system != nil {
		config.SystemInstruction = system
	}
	if options.Temperature != 0 {
		config.Temperature = genai.Ptr(options.Temperature)
	}
	if options.TopP != 0 {
		config.TopP = genai.Ptr(options.TopP)
	}
	if options.MaxCompletionTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxCompletionTokens)
	} else if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if len(options.Stop) > 0 {
		config.StopSequences = options.Stop
	}
	if options.ResponseFormat != nil && options.ResponseFormat.Type == llm.ResponseFormatTypeJSONObject {
		config.ResponseMIMEType = "application/json"
	}

	return config
}

func toResponse(result *genai.GenerateContentResponse) (llm.Response, error) {
	if result == nil || len(result.Candidates) == 0 {
		return llm.Response{}, geminiErrors.New(ErrEmptyCandidates)
	}

	// A candidate without content happens on safety blocks. Surface it as an
	// empty assistant message rather than an error.
	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return llm.Response{Message: llm.Message{Role: llm.RoleAssistant}}, nil
	}

	var content string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			content += part.Text
		}
	}

	var usage llm.Usage
	if result.UsageMetadata != nil {
		usage = llm.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return llm.Response{
		Message: llm.Message{Role: llm.RoleAssistant, Content: content},
		Usage:   usage,
	}, nil
}
