package narrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/Abraxas-365/fateweaver/pkg/ai/llm/memoryx"
	"github.com/Abraxas-365/fateweaver/pkg/campaign"
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/narrator"
)

// mockLLM is a fake provider returning a canned reply and recording what
// it was sent.
type mockLLM struct {
	response string
	err      error
	usage    llm.Usage
	calls    int
	messages [][]llm.Message
	lastOpts *llm.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	m.calls++
	m.messages = append(m.messages, messages)

	options := llm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	m.lastOpts = options

	if m.err != nil {
		return llm.Response{}, m.err
	}
	return llm.Response{Message: llm.NewAssistantMessage(m.response), Usage: m.usage}, nil
}

func testState() campaign.State {
	return campaign.State{
		"party":   map[string]any{"Rowan": map[string]any{"hp": 20}},
		"economy": map[string]any{"party_gold": 50},
	}
}

// --- Narrate tests ---

func TestNarrate_ParsesCleanReply(t *testing.T) {
	mock := &mockLLM{
		response: `{"narration": "The door creaks open.", "delta": {"economy": {"party_gold": 60}}}`,
		usage:    llm.Usage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140},
	}
	n := narrator.NewNarrator(mock)

	turn, usage, err := n.Narrate(context.Background(), testState(), "open the door")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Narration != "The door creaks open." {
		t.Fatalf("unexpected narration: %q", turn.Narration)
	}
	delta, ok := turn.Delta.(map[string]any)
	if !ok {
		t.Fatalf("expected object delta, got %T", turn.Delta)
	}
	if delta["economy"].(map[string]any)["party_gold"] != float64(60) {
		t.Fatalf("unexpected delta: %v", delta)
	}
	if usage.TotalTokens != 140 {
		t.Fatalf("expected usage passed through, got %+v", usage)
	}
}

func TestNarrate_StripsCodeFences(t *testing.T) {
	mock := &mockLLM{
		response: "```json\n{\"narration\": \"A gull lands on the rail.\", \"delta\": {}}\n```",
	}
	n := narrator.NewNarrator(mock)

	turn, _, err := n.Narrate(context.Background(), testState(), "wait")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Narration != "A gull lands on the rail." {
		t.Fatalf("unexpected narration: %q", turn.Narration)
	}
}

func TestNarrate_ExtractsObjectFromProse(t *testing.T) {
	mock := &mockLLM{
		response: `Sure, here is the turn: {"narration": "Rain starts.", "delta": {}} Hope that helps!`,
	}
	n := narrator.NewNarrator(mock)

	turn, _, err := n.Narrate(context.Background(), testState(), "look up")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Narration != "Rain starts." {
		t.Fatalf("unexpected narration: %q", turn.Narration)
	}
}

func TestNarrate_ProviderFailure(t *testing.T) {
	mock := &mockLLM{err: errors.New("connection refused")}
	n := narrator.NewNarrator(mock)

	_, _, err := n.Narrate(context.Background(), testState(), "open the door")
	if err == nil {
		t.Fatal("expected provider failure")
	}

	var e *errx.Error
	if !errx.As(err, &e) || e.Code != "NARRATOR.PROVIDER_FAILED" {
		t.Fatalf("expected NARRATOR.PROVIDER_FAILED, got %v", err)
	}
}

func TestNarrate_MalformedReply(t *testing.T) {
	mock := &mockLLM{response: "The door creaks open. (no JSON here)"}
	n := narrator.NewNarrator(mock)

	_, _, err := n.Narrate(context.Background(), testState(), "open the door")
	if err == nil {
		t.Fatal("expected malformed-output failure")
	}

	var e *errx.Error
	if !errx.As(err, &e) || e.Code != "NARRATOR.MALFORMED_OUTPUT" {
		t.Fatalf("expected NARRATOR.MALFORMED_OUTPUT, got %v", err)
	}
	if _, ok := e.Details["raw_output"]; !ok {
		t.Fatal("malformed-output error must carry the raw reply")
	}
}

func TestNarrate_EmptyNarrationIsMalformed(t *testing.T) {
	mock := &mockLLM{response: `{"narration": "", "delta": {}}`}
	n := narrator.NewNarrator(mock)

	_, _, err := n.Narrate(context.Background(), testState(), "wait")
	if err == nil {
		t.Fatal("expected malformed-output failure for empty narration")
	}
}

func TestNarrate_MissingDeltaIsNil(t *testing.T) {
	mock := &mockLLM{response: `{"narration": "Nothing happens."}`}
	n := narrator.NewNarrator(mock)

	turn, _, err := n.Narrate(context.Background(), testState(), "wait")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Delta != nil {
		t.Fatalf("expected nil delta, got %v", turn.Delta)
	}
}

func TestNarrate_SendsStateAndInput(t *testing.T) {
	mock := &mockLLM{response: `{"narration": "ok", "delta": {}}`}
	n := narrator.NewNarrator(mock)

	_, _, err := n.Narrate(context.Background(), testState(), "open the door")
	if err != nil {
		t.Fatal(err)
	}

	msgs := mock.messages[0]
	if msgs[0].Role != llm.RoleSystem || !strings.Contains(msgs[0].Content, "game master") {
		t.Fatal("first message must be the system prompt")
	}
	if !strings.Contains(msgs[1].Content, "party_gold") {
		t.Fatal("state message must carry the campaign document")
	}
	last := msgs[len(msgs)-1]
	if last.Role != llm.RoleUser || last.Content != "open the door" {
		t.Fatalf("last message must be the player input, got %+v", last)
	}
}

func TestNarrate_RequestsJSONReplies(t *testing.T) {
	mock := &mockLLM{response: `{"narration": "ok", "delta": {}}`}
	n := narrator.NewNarrator(mock, narrator.WithModel("gpt-4o"), narrator.WithMaxTokens(900))

	_, _, err := n.Narrate(context.Background(), testState(), "wait")
	if err != nil {
		t.Fatal(err)
	}

	if mock.lastOpts.ResponseFormat == nil || mock.lastOpts.ResponseFormat.Type != llm.ResponseFormatTypeJSONObject {
		t.Fatal("narrator must request a JSON object response format")
	}
	if mock.lastOpts.Model != "gpt-4o" {
		t.Fatalf("expected model override, got %q", mock.lastOpts.Model)
	}
	if mock.lastOpts.MaxTokens != 900 {
		t.Fatalf("expected max tokens override, got %d", mock.lastOpts.MaxTokens)
	}
}

func TestNarrate_MemoryCarriesPriorExchanges(t *testing.T) {
	mock := &mockLLM{response: `{"narration": "You see the docks.", "delta": {}}`}
	n := narrator.NewNarrator(mock, narrator.WithMemory(memoryx.NewWindowMemory("")))

	if _, _, err := n.Narrate(context.Background(), testState(), "look around"); err != nil {
		t.Fatal(err)
	}

	mock.response = `{"narration": "The harbormaster waves.", "delta": {}}`
	if _, _, err := n.Narrate(context.Background(), testState(), "walk to the pier"); err != nil {
		t.Fatal(err)
	}

	// system + state + first exchange + new input
	second := mock.messages[1]
	if len(second) != 5 {
		t.Fatalf("expected 5 messages on the second call, got %d", len(second))
	}
	if second[2].Content != "look around" || second[3].Content != "You see the docks." {
		t.Fatalf("expected prior exchange recalled, got %+v", second)
	}
}

func TestNarrate_FailedTurnLeavesMemoryUntouched(t *testing.T) {
	mem := memoryx.NewWindowMemory("")
	mock := &mockLLM{response: "garbage"}
	n := narrator.NewNarrator(mock, narrator.WithMemory(mem))

	n.Narrate(context.Background(), testState(), "open the door")

	msgs, _ := mem.Messages()
	if len(msgs) != 0 {
		t.Fatalf("failed turns must not be remembered, got %d messages", len(msgs))
	}
}
