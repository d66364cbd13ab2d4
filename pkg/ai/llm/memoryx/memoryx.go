// Package memoryx provides conversation memory for LLM chat sessions.
//
// A Memory accumulates the messages of a running conversation and hands
// them back in order, ready to send to a provider. Implementations decide
// what to keep: WindowMemory keeps the system prompt plus a bounded window
// of recent exchanges, dropping the oldest ones as new messages arrive.
package memoryx

import "github.com/Abraxas-365/fateweaver/pkg/ai/llm"

// Memory stores conversation messages between chat calls.
type Memory interface {
	// Messages returns the stored conversation in order.
	Messages() ([]llm.Message, error)

	// Add appends a message to the conversation.
	Add(message llm.Message) error

	// Clear resets the conversation. Implementations preserve the system
	// prompt if one was set.
	Clear() error
}
