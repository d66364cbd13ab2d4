package llm

import "context"

// LLM is the interface implemented by chat model providers
type LLM interface {
	// Chat sends a conversation to the model and returns the assistant reply
	Chat(ctx context.Context, messages []Message, opts ...Option) (Response, error)
}

// Response represents a completed chat request
type Response struct {
	Message Message `json:"message"`
	Usage   Usage   `json:"usage"`
}

// ChatOptions contains per-request settings for a chat call
type ChatOptions struct {
	Model               string
	MaxTokens           int
	MaxCompletionTokens int
	Temperature         float32
	TopP                float32
	Stop                []string
	ResponseFormat      *ResponseFormat
}

// Option modifies ChatOptions before the request is sent
type Option func(*ChatOptions)

// DefaultOptions returns empty chat options. Providers fill in their own
// default model and token limits for fields left unset.
func DefaultOptions() *ChatOptions {
	return &ChatOptions{}
}

// WithModel sets the model to use
func WithModel(model string) Option {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

// WithMaxTokens sets the maximum number of tokens to generate
func WithMaxTokens(maxTokens int) Option {
	return func(o *ChatOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithMaxCompletionTokens sets the completion token cap used by newer APIs
func WithMaxCompletionTokens(maxTokens int) Option {
	return func(o *ChatOptions) {
		o.MaxCompletionTokens = maxTokens
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float32) Option {
	return func(o *ChatOptions) {
		o.Temperature = temperature
	}
}

// WithTopP sets the nucleus sampling parameter
func WithTopP(topP float32) Option {
	return func(o *ChatOptions) {
		o.TopP = topP
	}
}

// WithStop sets the stop sequences
func WithStop(stop ...string) Option {
	return func(o *ChatOptions) {
		o.Stop = stop
	}
}
