package framework

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Stage is the unit of work executed inside a pipeline. Stages receive the
// shared state, write their own designated field, and hand the state forward.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

// StageFunc adapts a plain function into a Stage.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, state *State) error
}

// NewStage wraps fn as a named Stage.
func NewStage(name string, fn func(ctx context.Context, state *State) error) StageFunc {
	return StageFunc{name: name, fn: fn}
}

// Name implements Stage.
func (s StageFunc) Name() string { return s.name }

// Run implements Stage.
func (s StageFunc) Run(ctx context.Context, state *State) error {
	return s.fn(ctx, state)
}

// Pipeline executes a fixed, linear chain of stages. Unlike a general graph
// engine there are no edges, conditions, or cycles: the total order is the
// slice order, which makes the one-pass execution contract structurally
// obvious. Each stage blocks the run until it returns; no timeout or
// cancellation is imposed beyond the caller's context.
type Pipeline struct {
	stages    []Stage
	telemetry Telemetry
}

// NewPipeline builds a pipeline over the given stages.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// SetTelemetry wires a telemetry sink for execution traces.
func (p *Pipeline) SetTelemetry(t Telemetry) {
	p.telemetry = t
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names = append(names, stage.Name())
	}
	return names
}

// Validate checks the chain is well-formed: at least one stage, no duplicate
// or empty names.
func (p *Pipeline) Validate() error {
	if len(p.stages) == 0 {
		return errors.New("pipeline has no stages")
	}
	seen := make(map[string]struct{}, len(p.stages))
	for _, stage := range p.stages {
		name := stage.Name()
		if name == "" {
			return errors.New("pipeline stage has empty name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate stage %s", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Execute runs every stage in order against the shared state and returns the
// same state for convenience. The run identifier correlates telemetry events
// across stage boundaries.
func (p *Pipeline) Execute(ctx context.Context, runID string, state *State) (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if state == nil {
		state = NewState(nil)
	}

	p.emit(Event{Type: EventPipelineStart, RunID: runID, Timestamp: time.Now().UTC()})
	var execErr error
	defer func() {
		status := "success"
		if execErr != nil {
			status = "error"
		}
		p.emit(Event{
			Type:      EventPipelineFinish,
			RunID:     runID,
			Timestamp: time.Now().UTC(),
			Metadata:  map[string]any{"status": status},
		})
	}()

	for _, stage := range p.stages {
		select {
		case <-ctx.Done():
			execErr = ctx.Err()
			return nil, execErr
		default:
		}
		p.emit(Event{
			Type:      EventStageStart,
			Stage:     stage.Name(),
			RunID:     runID,
			Timestamp: time.Now().UTC(),
		})
		if err := stage.Run(ctx, state); err != nil {
			execErr = fmt.Errorf("stage %s failed: %w", stage.Name(), err)
			p.emit(Event{
				Type:      EventStageError,
				Stage:     stage.Name(),
				RunID:     runID,
				Timestamp: time.Now().UTC(),
				Message:   execErr.Error(),
			})
			return nil, execErr
		}
		p.emit(Event{
			Type:      EventStageFinish,
			Stage:     stage.Name(),
			RunID:     runID,
			Timestamp: time.Now().UTC(),
		})
	}
	return state, nil
}

func (p *Pipeline) emit(event Event) {
	if p.telemetry == nil {
		return
	}
	p.telemetry.Emit(event)
}
