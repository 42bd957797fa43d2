package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/lexcodex/pagemend/framework"
)

// Stage names, in the fixed execution order of the pipeline.
const (
	StageValidateLayout  = "validate_layout"
	StageHealContent     = "heal_content"
	StageGenerateFixes   = "generate_fixes"
	StageOptimizeCode    = "optimize_code"
	StageGetApproval     = "get_approval"
	StageProcessApproval = "process_approval"
)

// Terminal output of every run. The pipeline never auto-applies fixes;
// human sign-off always happens downstream.
const (
	FinalStatusPending = "pending"
	FinalMessage       = "Changes require user approval"
)

// BugFixer composes the five agents into the six-stage remediation pipeline.
// Execution is fully synchronous and single-threaded: each stage blocks until
// its agent returns, and the state has exactly one owner at any instant.
type BugFixer struct {
	layout    *LayoutValidatorAgent
	content   *ContentHealerAgent
	generator *FixGeneratorAgent
	optimizer *CodeOptimizerAgent
	approval  *UserApprovalAgent
	telemetry framework.Telemetry
}

// NewBugFixer wires every agent with the injected language model. Only the
// fix generator and the approval agent consult the model; the detectors and
// the optimizer are deterministic.
func NewBugFixer(model framework.LanguageModel, options *framework.LLMOptions) *BugFixer {
	return &BugFixer{
		layout:    NewLayoutValidatorAgent(),
		content:   NewContentHealerAgent(),
		generator: NewFixGeneratorAgent(model, options),
		optimizer: NewCodeOptimizerAgent(),
		approval:  NewUserApprovalAgent(model, options),
	}
}

// SetTelemetry wires a telemetry sink for pipeline traces.
func (b *BugFixer) SetTelemetry(t framework.Telemetry) { b.telemetry = t }

// Pipeline assembles the fixed linear chain. Every stage writes exactly one
// state field and reads only fields written by earlier stages.
func (b *BugFixer) Pipeline() *framework.Pipeline {
	pipeline := framework.NewPipeline(
		framework.NewStage(StageValidateLayout, func(ctx context.Context, state *framework.State) error {
			state.LayoutIssues = b.layout.Run(ctx, state.InputMap())
			return nil
		}),
		framework.NewStage(StageHealContent, func(ctx context.Context, state *framework.State) error {
			state.ContentIssues = b.content.Run(ctx, state.InputMap())
			return nil
		}),
		framework.NewStage(StageGenerateFixes, func(ctx context.Context, state *framework.State) error {
			state.Fixes = b.generator.Run(ctx, map[string]any{
				"issues": map[string]any{
					"layout":  state.LayoutIssues,
					"content": state.ContentIssues,
				},
			})
			return nil
		}),
		framework.NewStage(StageOptimizeCode, func(ctx context.Context, state *framework.State) error {
			input := map[string]any{"fixes": state.Fixes}
			for key, value := range state.InputMap() {
				input[key] = value
			}
			state.Optimizations = b.optimizer.Run(ctx, input)
			return nil
		}),
		framework.NewStage(StageGetApproval, func(ctx context.Context, state *framework.State) error {
			state.Approval = b.approval.Run(ctx, map[string]any{
				"changes":             changesFromState(state),
				"manual_fix_required": state.Fixes["manual_fix_required"],
			})
			return nil
		}),
		framework.NewStage(StageProcessApproval, func(ctx context.Context, state *framework.State) error {
			// Terminal stage: upstream content is ignored on purpose.
			state.FinalOutput = map[string]any{
				"status":  FinalStatusPending,
				"message": FinalMessage,
			}
			return nil
		}),
	)
	pipeline.SetTelemetry(b.telemetry)
	return pipeline
}

// Run executes one full pass over the input and returns the final output
// together with the complete state for callers that need stage payloads.
func (b *BugFixer) Run(ctx context.Context, input any) (map[string]any, *framework.State, error) {
	state := framework.NewState(input)
	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	if _, err := b.Pipeline().Execute(ctx, runID, state); err != nil {
		// No stage in this pipeline returns an error; this path only fires
		// on context cancellation or a malformed chain.
		return nil, state, err
	}
	return state.FinalOutput, state, nil
}

// RunBugFixer is the package entry point: one pipeline pass, final output
// only.
func RunBugFixer(ctx context.Context, input any, model framework.LanguageModel) (map[string]any, error) {
	final, _, err := NewBugFixer(model, nil).Run(ctx, input)
	return final, err
}

// changesFromState collects the change lists the approval agent groups by
// category. Layout and content both draw from the generated fixes; the fix
// records carry their own type tags, so the split is presentational.
func changesFromState(state *framework.State) map[string]any {
	fixList, _ := state.Fixes["fixes"].([]any)
	optimizationList, _ := state.Optimizations["optimizations"].([]any)
	return map[string]any{
		"layout":        fixList,
		"content":       fixList,
		"optimizations": optimizationList,
	}
}
