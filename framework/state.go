// Package framework hosts the orchestration primitives shared by every agent
// in the remediation pipeline: the state carrier, the linear stage engine, the
// tool registry, the language-model contract, and the audit/telemetry sinks.
package framework

import "encoding/json"

// State is the single carrier threaded through the pipeline. It is created
// once per run, mutated exactly once per stage in the fixed stage order, and
// discarded after FinalOutput is read. Ownership is exclusive: exactly one
// stage holds the pointer at any instant, and a stage must write only its own
// field. Nothing enforces that at the type level; the discipline is kept by
// the workflow assembly in the agents package.
type State struct {
	Input         any            `json:"input"`
	LayoutIssues  map[string]any `json:"layout_issues"`
	ContentIssues map[string]any `json:"content_issues"`
	Fixes         map[string]any `json:"fixes"`
	Optimizations map[string]any `json:"optimizations"`
	Approval      map[string]any `json:"approval"`
	FinalOutput   map[string]any `json:"final_output"`
}

// NewState builds an empty state around the run's raw input.
func NewState(input any) *State {
	return &State{Input: input}
}

// InputMap returns the input as a string-keyed map when it is one, or an
// empty map otherwise. Stages that read structured input fields use this so a
// freeform input never panics a run.
func (s *State) InputMap() map[string]any {
	if m, ok := s.Input.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Clone deep-copies the state through a JSON round trip. Every payload placed
// in the state is JSON-serializable by the agent contract, so the round trip
// is lossless for run snapshots.
func (s *State) Clone() (*State, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	clone := &State{}
	if err := json.Unmarshal(data, clone); err != nil {
		return nil, err
	}
	return clone, nil
}
