// Package narrator turns player input into story narration plus a sparse
// state delta by driving an LLM provider under a strict JSON contract.
package narrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/Abraxas-365/fateweaver/pkg/ai/llm/memoryx"
	"github.com/Abraxas-365/fateweaver/pkg/campaign"
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
)

// Turn is one parsed narrator reply: the story text and the state changes
// it caused. Delta is kept as decoded JSON; anything that is not a
// non-null object merges as a no-op.
type Turn struct {
	Narration string `json:"narration"`
	Delta     any    `json:"delta"`
}

// Narrator owns the conversation with the model provider.
type Narrator struct {
	client    llm.LLM
	memory    memoryx.Memory
	estimator memoryx.TokenEstimator
	chatOpts  []llm.Option
}

type Option func(*Narrator)

// WithModel pins the provider model used for narration.
func WithModel(model string) Option {
	return func(n *Narrator) {
		if model != "" {
			n.chatOpts = append(n.chatOpts, llm.WithModel(model))
		}
	}
}

// WithMaxTokens caps the narration reply length.
func WithMaxTokens(maxTokens int) Option {
	return func(n *Narrator) {
		if maxTokens > 0 {
			n.chatOpts = append(n.chatOpts, llm.WithMaxTokens(maxTokens))
		}
	}
}

// WithTemperature sets the sampling temperature for narration.
func WithTemperature(temperature float32) Option {
	return func(n *Narrator) {
		if temperature > 0 {
			n.chatOpts = append(n.chatOpts, llm.WithTemperature(temperature))
		}
	}
}

// WithMemory attaches cross-turn recall of prior exchanges.
func WithMemory(memory memoryx.Memory) Option {
	return func(n *Narrator) {
		n.memory = memory
	}
}

func NewNarrator(client llm.LLM, opts ...Option) *Narrator {
	n := &Narrator{
		client:    client,
		estimator: &memoryx.CharBasedEstimator{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Narrate sends the full campaign state and the player's input to the
// provider and returns the parsed reply with its token usage. The state
// is read, never mutated.
func (n *Narrator) Narrate(ctx context.Context, state campaign.State, input string) (*Turn, llm.Usage, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, llm.Usage{}, errx.Wrap(err, "failed to serialize campaign state for the prompt", errx.TypeInternal)
	}

	messages := []llm.Message{
		llm.NewSystemMessage(SystemPrompt),
		llm.NewSystemMessage(fmt.Sprintf(statePromptTemplate, stateJSON)),
	}

	if n.memory != nil {
		recalled, err := n.memory.Messages()
		if err != nil {
			logx.WithError(err).Warn("narrator memory unavailable, continuing without recall")
		} else {
			for _, msg := range recalled {
				if msg.Role != llm.RoleSystem {
					messages = append(messages, msg)
				}
			}
		}
	}

	messages = append(messages, llm.NewUserMessage(input))

	logx.WithFields(logx.Fields{
		"messages":         len(messages),
		"estimated_tokens": n.estimator.EstimateTokens(messages),
	}).Debug("sending narration request")

	opts := append([]llm.Option{llm.WithJSONResponseFormat()}, n.chatOpts...)
	resp, err := n.client.Chat(ctx, messages, opts...)
	if err != nil {
		return nil, llm.Usage{}, ErrProviderFailed(err)
	}

	turn, err := parseTurn(resp.Message.Content)
	if err != nil {
		return nil, llm.Usage{}, err
	}

	if n.memory != nil {
		n.memory.Add(llm.NewUserMessage(input))
		n.memory.Add(llm.NewAssistantMessage(turn.Narration))
	}

	return turn, resp.Usage, nil
}
