// Package task defines the unit of work the scheduler admits. Payload
// internals are opaque to the rest of the system: a task declares a name and
// a static cost estimate, runs to completion, and reports a structured
// result. Costs are deliberately estimates, not metered consumption.
package task

import "context"

// Result is what a task reports back for auditing and gating.
type Result struct {
	OK          bool           `json:"ok"`
	Delta       float64        `json:"delta"`
	Loss        float64        `json:"loss"`
	ContentHash string         `json:"hash"`
	Meta        map[string]any `json:"meta"`
}

type Task interface {
	Name() string

	// EstimatedJoules is the declared admission cost. The scheduler
	// debits exactly this amount before running the task.
	EstimatedJoules() float64

	Run(ctx context.Context) (Result, error)
}

// FuncTask adapts a closure into a Task.
type FuncTask struct {
	TaskName string
	CostJ    float64
	Fn       func(ctx context.Context) (Result, error)
}

func (t *FuncTask) Name() string             { return t.TaskName }
func (t *FuncTask) EstimatedJoules() float64 { return t.CostJ }

func (t *FuncTask) Run(ctx context.Context) (Result, error) {
	return t.Fn(ctx)
}
