package config

import "time"

// LLMConfig selects the narrator's completion provider.
// Provider is one of "anthropic", "openai", "azure", "gemini", "bedrock".
type LLMConfig struct {
	Provider string

	// Model overrides the provider's default model when set.
	Model string

	// MaxTokens caps the narration length per call.
	MaxTokens int

	// Timeout bounds one provider call wall-clock.
	Timeout time.Duration
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:  getEnv("LLM_PROVIDER", "anthropic"),
		Model:     getEnv("LLM_MODEL", ""),
		MaxTokens: getEnvInt("LLM_MAX_TOKENS", 4096),
		Timeout:   getEnvDuration("LLM_TIMEOUT", 60*time.Second),
	}
}
