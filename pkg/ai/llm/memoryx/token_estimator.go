package memoryx

import "github.com/Abraxas-365/fateweaver/pkg/ai/llm"

// TokenEstimator sizes a prompt before it is sent. The narrator logs the
// estimate alongside each request; it is not meant for billing.
type TokenEstimator interface {
	EstimateTokens(messages []llm.Message) int
}

// CharBasedEstimator divides character count by a fixed ratio. Four
// characters per token is a workable default for English prose. Swap in a
// real tokenizer where the numbers have to be exact.
type CharBasedEstimator struct {
	// CharsPerToken overrides the ratio. Zero means 4.
	CharsPerToken int
}

// EstimateTokens sums the per-message content estimate plus a few tokens of
// role and separator framing.
func (e *CharBasedEstimator) EstimateTokens(messages []llm.Message) int {
	ratio := e.CharsPerToken
	if ratio <= 0 {
		ratio = 4
	}

	total := 0
	for _, m := range messages {
		total += 4 + len(m.Content)/ratio
	}
	return total
}
