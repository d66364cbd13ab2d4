// Package campaign holds the authoritative world state of a running
// tabletop session and the deep-merge rules that reconcile model-authored
// deltas into it.
package campaign

// State is the full campaign document: an arbitrarily nested mapping of
// string keys to JSON-equivalent values. Known top-level regions are
// "party", "economy", "factions" and "log", but none is required to exist
// until first written.
type State map[string]any

// Delta is a sparse partial view of State containing only changed paths,
// authored by the narrator model once per turn.
type Delta map[string]any

// StarterState returns the document a brand-new campaign begins with.
func StarterState() State {
	return State{
		"party": map[string]any{},
		"economy": map[string]any{
			"party_gold": 0,
			"debts":      map[string]any{},
		},
		"factions": map[string]any{},
		"log":      []any{},
	}
}

// Merge applies delta onto target in place and returns target as the new
// canonical state. The walk is recursive and key-by-key over the delta's
// own keys only; target keys absent from the delta are untouched. A delta
// that is not a non-null mapping leaves target unchanged. Merge never
// fails: unrecognized shapes degrade through the coercion rules below.
func Merge(target State, delta any) State {
	d, ok := asMap(delta)
	if !ok {
		return target
	}

	mergeMaps(map[string]any(target), d)
	return target
}

func mergeMaps(target, delta map[string]any) {
	for key, value := range delta {
		// Sequences replace wholesale, never element by element.
		if seq, ok := value.([]any); ok {
			target[key] = seq
			continue
		}

		// Non-null nested mappings merge recursively. A target field
		// that is missing or not itself a mapping is coerced to an
		// empty one first.
		if nested, ok := asMap(value); ok && nested != nil {
			existing, ok := asMap(target[key])
			if !ok {
				existing = make(map[string]any)
			}
			mergeMaps(existing, nested)
			target[key] = existing
			continue
		}

		// Primitives overwrite. An explicit null clears the field while
		// keeping the key present.
		target[key] = value
	}
}

// asMap unwraps the mapping shapes a value can arrive in: raw decoded
// JSON, a State, or a Delta.
func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case State:
		return map[string]any(m), true
	case Delta:
		return map[string]any(m), true
	}
	return nil, false
}

// Clone returns a deep copy of the state. Mutating the copy never
// touches the original document.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	return State(cloneMap(map[string]any(s)))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	if m, ok := asMap(value); ok {
		return cloneMap(m)
	}
	if seq, ok := value.([]any); ok {
		out := make([]any, len(seq))
		for i, item := range seq {
			out[i] = cloneValue(item)
		}
		return out
	}
	return value
}

// Summary returns the party and economy regions of the state, the portion
// of the document exposed to players after each turn.
func (s State) Summary() map[string]any {
	out := make(map[string]any, 2)
	if v, ok := s["party"]; ok {
		out["party"] = cloneValue(v)
	}
	if v, ok := s["economy"]; ok {
		out["economy"] = cloneValue(v)
	}
	return out
}
