package memoryx

import (
	"sync"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
)

// DefaultMaxExchanges is the number of user/assistant exchanges a
// WindowMemory keeps when no explicit bound is configured.
const DefaultMaxExchanges = 10

// WindowMemory is an in-memory Memory that keeps the system prompt plus a
// bounded window of the most recent messages. When the window overflows,
// the oldest non-system messages are dropped in pairs so the conversation
// always starts with a user message.
type WindowMemory struct {
	mu           sync.RWMutex
	messages     []llm.Message
	maxExchanges int
}

// WindowOption configures a WindowMemory.
type WindowOption func(*WindowMemory)

// WithMaxExchanges sets how many user/assistant exchanges to keep.
func WithMaxExchanges(n int) WindowOption {
	return func(w *WindowMemory) {
		if n > 0 {
			w.maxExchanges = n
		}
	}
}

// NewWindowMemory creates a bounded conversation memory, optionally seeded
// with a system prompt.
func NewWindowMemory(systemPrompt string, opts ...WindowOption) *WindowMemory {
	w := &WindowMemory{
		maxExchanges: DefaultMaxExchanges,
	}

	if systemPrompt != "" {
		w.messages = []llm.Message{llm.NewSystemMessage(systemPrompt)}
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Messages returns a copy of the stored conversation.
func (w *WindowMemory) Messages() ([]llm.Message, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]llm.Message, len(w.messages))
	copy(out, w.messages)
	return out, nil
}

// Add appends a message and trims the window if it overflows.
func (w *WindowMemory) Add(message llm.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.messages = append(w.messages, message)
	w.trim()
	return nil
}

// Clear resets the conversation, preserving the system prompt if present.
func (w *WindowMemory) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.messages) > 0 && w.messages[0].Role == llm.RoleSystem {
		w.messages = w.messages[:1]
	} else {
		w.messages = nil
	}
	return nil
}

// trim drops the oldest conversation messages, two at a time, until the
// window holds at most maxExchanges exchanges. Caller must hold the lock.
func (w *WindowMemory) trim() {
	start := 0
	if len(w.messages) > 0 && w.messages[0].Role == llm.RoleSystem {
		start = 1
	}

	limit := w.maxExchanges * 2
	for len(w.messages)-start > limit {
		w.messages = append(w.messages[:start], w.messages[start+2:]...)
	}
}
