package task

import (
	"context"
	"fmt"

	"github.com/jouleflux/jouleflux/internal/merge"
)

// Candidate is a built update awaiting the merge gate: a directory of
// candidate state plus the measured evidence for it.
type Candidate struct {
	Dir           string
	Delta         float64
	SecondaryGain float64
	Loss          float64
}

// CandidateBuilder produces a candidate update. The build itself (training,
// fine-tuning, whatever the deployment plugs in) is opaque to the scheduler;
// only the evidence it reports flows onward.
type CandidateBuilder func(ctx context.Context, candidatesDir string) (Candidate, error)

// AdapterTask builds a candidate and walks it through the merge gate. Its
// reported OK mirrors the gate decision, so receipts show whether the
// candidate was promoted.
type AdapterTask struct {
	builder       CandidateBuilder
	gate          *merge.Gate
	candidatesDir string
	costJoules    float64
}

func NewAdapterTask(builder CandidateBuilder, gate *merge.Gate, candidatesDir string, costJoules float64) *AdapterTask {
	return &AdapterTask{
		builder:       builder,
		gate:          gate,
		candidatesDir: candidatesDir,
		costJoules:    costJoules,
	}
}

func (t *AdapterTask) Name() string             { return "adapter_delta" }
func (t *AdapterTask) EstimatedJoules() float64 { return t.costJoules }

func (t *AdapterTask) Run(ctx context.Context) (Result, error) {
	candidate, err := t.builder(ctx, t.candidatesDir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build candidate: %w", err)
	}

	decision, err := t.gate.Evaluate(candidate.Dir, candidate.Delta, candidate.SecondaryGain)
	if err != nil {
		return Result{}, err
	}

	return Result{
		OK:          decision.Accepted,
		Delta:       decision.Delta,
		Loss:        candidate.Loss,
		ContentHash: decision.DecisionHash,
		Meta: map[string]any{
			"accepted":       decision.Accepted,
			"secondary_gain": decision.SecondaryGain,
			"decision_hash":  decision.DecisionHash,
			"candidate":      candidate.Dir,
		},
	}, nil
}
