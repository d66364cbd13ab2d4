package campaign_test

import (
	"reflect"
	"testing"

	"github.com/Abraxas-365/fateweaver/pkg/campaign"
)

// --- Merge tests ---

func TestMerge_EmptyDeltaIsIdentity(t *testing.T) {
	state := campaign.State{
		"party":   map[string]any{"Rowan": map[string]any{"hp": 20}},
		"economy": map[string]any{"party_gold": 50},
	}
	before := state.Clone()

	got := campaign.Merge(state, campaign.Delta{})
	if !reflect.DeepEqual(got, before) {
		t.Fatalf("empty delta changed the state: %+v", got)
	}
}

func TestMerge_NonMappingDeltaIsIdentity(t *testing.T) {
	for _, delta := range []any{nil, "a story beat", 42, true, []any{"not", "a", "mapping"}} {
		state := campaign.State{"economy": map[string]any{"party_gold": 50}}
		before := state.Clone()

		got := campaign.Merge(state, delta)
		if !reflect.DeepEqual(got, before) {
			t.Fatalf("delta %v changed the state: %+v", delta, got)
		}
	}
}

func TestMerge_OverwritesOnlyNamedKeys(t *testing.T) {
	state := campaign.State{"a": map[string]any{"x": 1, "y": 2}}

	campaign.Merge(state, campaign.Delta{"a": map[string]any{"x": 9}})

	a, ok := state["a"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested mapping, got %T", state["a"])
	}
	if a["x"] != 9 {
		t.Fatalf("expected x to be overwritten to 9, got %v", a["x"])
	}
	if a["y"] != 2 {
		t.Fatalf("expected sibling y untouched, got %v", a["y"])
	}
}

func TestMerge_SequencesReplaceWholesale(t *testing.T) {
	state := campaign.State{"log": []any{"a", "b"}}

	campaign.Merge(state, campaign.Delta{"log": []any{"c"}})

	log, ok := state["log"].([]any)
	if !ok {
		t.Fatalf("expected sequence, got %T", state["log"])
	}
	if len(log) != 1 || log[0] != "c" {
		t.Fatalf("expected log replaced with [c], got %v", log)
	}
}

func TestMerge_NullClearsButKeepsKey(t *testing.T) {
	state := campaign.State{"economy": map[string]any{"party_gold": 100}}

	campaign.Merge(state, campaign.Delta{"economy": map[string]any{"party_gold": nil}})

	economy, ok := state["economy"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested mapping, got %T", state["economy"])
	}
	gold, present := economy["party_gold"]
	if !present {
		t.Fatal("party_gold must remain present after a null clear")
	}
	if gold != nil {
		t.Fatalf("expected party_gold cleared to null, got %v", gold)
	}
}

func TestMerge_CoercesNonMappingTarget(t *testing.T) {
	state := campaign.State{"a": 5}

	campaign.Merge(state, campaign.Delta{"a": map[string]any{"b": 1}})

	a, ok := state["a"].(map[string]any)
	if !ok {
		t.Fatalf("expected scalar target coerced to mapping, got %T", state["a"])
	}
	if a["b"] != 1 {
		t.Fatalf("expected b=1 after coercion, got %v", a["b"])
	}
}

func TestMerge_CreatesMissingBranches(t *testing.T) {
	state := campaign.State{}

	campaign.Merge(state, campaign.Delta{
		"factions": map[string]any{
			"ember_syndicate": map[string]any{"disposition": "hostile"},
		},
	})

	factions, ok := state["factions"].(map[string]any)
	if !ok {
		t.Fatalf("expected factions branch created, got %T", state["factions"])
	}
	syndicate, ok := factions["ember_syndicate"].(map[string]any)
	if !ok || syndicate["disposition"] != "hostile" {
		t.Fatalf("expected nested branch created, got %v", factions)
	}
}

func TestMerge_LeavesSiblingRegionsUntouched(t *testing.T) {
	state := campaign.State{
		"party": map[string]any{
			"Rowan": map[string]any{"class": "Fighter", "hp": 20, "ac": 15},
		},
		"economy": map[string]any{"party_gold": 50},
	}

	campaign.Merge(state, campaign.Delta{"economy": map[string]any{"party_gold": 60}})

	rowan := state["party"].(map[string]any)["Rowan"].(map[string]any)
	if rowan["class"] != "Fighter" || rowan["hp"] != 20 || rowan["ac"] != 15 {
		t.Fatalf("party region must be untouched, got %v", rowan)
	}
	if state["economy"].(map[string]any)["party_gold"] != 60 {
		t.Fatalf("expected party_gold updated to 60, got %v", state["economy"])
	}
}

func TestMerge_MutatesAndReturnsTarget(t *testing.T) {
	state := campaign.State{"scene": "tavern"}

	got := campaign.Merge(state, campaign.Delta{"scene": "docks"})

	if state["scene"] != "docks" {
		t.Fatal("expected target mutated in place")
	}
	if !reflect.DeepEqual(got, state) {
		t.Fatal("expected the mutated target returned")
	}
}

func TestMerge_DecodedJSONDelta(t *testing.T) {
	// Deltas arriving from the wire decode as plain map[string]any.
	state := campaign.State{"economy": map[string]any{"party_gold": float64(50)}}
	delta := map[string]any{"economy": map[string]any{"party_gold": float64(60)}}

	campaign.Merge(state, delta)

	if state["economy"].(map[string]any)["party_gold"] != float64(60) {
		t.Fatalf("expected gold 60, got %v", state["economy"])
	}
}

// --- Clone tests ---

func TestClone_IsIndependent(t *testing.T) {
	state := campaign.State{
		"party": map[string]any{"Rowan": map[string]any{"hp": 20}},
		"log":   []any{"arrived at the docks"},
	}

	clone := state.Clone()
	clone["party"].(map[string]any)["Rowan"].(map[string]any)["hp"] = 1
	clone["log"].([]any)[0] = "mutated"

	rowan := state["party"].(map[string]any)["Rowan"].(map[string]any)
	if rowan["hp"] != 20 {
		t.Fatal("mutating the clone leaked into the original party region")
	}
	if state["log"].([]any)[0] != "arrived at the docks" {
		t.Fatal("mutating the clone leaked into the original log")
	}
}

func TestClone_Nil(t *testing.T) {
	var state campaign.State
	if state.Clone() != nil {
		t.Fatal("expected nil clone of nil state")
	}
}

// --- Summary tests ---

func TestSummary_ExposesPartyAndEconomyOnly(t *testing.T) {
	state := campaign.State{
		"party":    map[string]any{"Rowan": map[string]any{"hp": 20}},
		"economy":  map[string]any{"party_gold": 60},
		"factions": map[string]any{"ember_syndicate": map[string]any{"disposition": "hostile"}},
		"log":      []any{"arrived at the docks"},
	}

	summary := state.Summary()

	if len(summary) != 2 {
		t.Fatalf("expected exactly party and economy, got %v", summary)
	}
	if _, ok := summary["party"]; !ok {
		t.Fatal("summary missing party region")
	}
	if _, ok := summary["economy"]; !ok {
		t.Fatal("summary missing economy region")
	}
}

func TestSummary_IsACopy(t *testing.T) {
	state := campaign.State{"economy": map[string]any{"party_gold": 60}}

	summary := state.Summary()
	summary["economy"].(map[string]any)["party_gold"] = 0

	if state["economy"].(map[string]any)["party_gold"] != 60 {
		t.Fatal("mutating the summary leaked into the state")
	}
}

func TestSummary_MissingRegions(t *testing.T) {
	summary := campaign.State{"log": []any{}}.Summary()
	if len(summary) != 0 {
		t.Fatalf("expected empty summary when regions are absent, got %v", summary)
	}
}

// --- StarterState tests ---

func TestStarterState_HasKnownRegions(t *testing.T) {
	state := campaign.StarterState()

	for _, region := range []string{"party", "economy", "factions", "log"} {
		if _, ok := state[region]; !ok {
			t.Fatalf("starter state missing %s region", region)
		}
	}
	if state["economy"].(map[string]any)["party_gold"] != 0 {
		t.Fatal("starter state must begin with zero gold")
	}
}
