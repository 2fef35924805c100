package scheduler

import (
	"context"
	"testing"

	"github.com/jouleflux/jouleflux/internal/task"
)

func namedTask(name string, cost float64) task.Task {
	return &task.FuncTask{
		TaskName: name,
		CostJ:    cost,
		Fn: func(ctx context.Context) (task.Result, error) {
			return task.Result{OK: true}, nil
		},
	}
}

func testPolicy() *Policy {
	return NewPolicy([]Rule{
		{MinBudgetJoules: 20, Task: namedTask("index_refresh", 20)},
		{MinBudgetJoules: 120, Task: namedTask("adapter_delta", 80)},
	})
}

func TestPolicy_Select(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		budget float64
		want   string
	}{
		{0, ""},
		{19.99, ""},
		{20, "index_refresh"},
		{25, "index_refresh"},
		{119.99, "index_refresh"},
		{120, "adapter_delta"},
		{500, "adapter_delta"},
	}

	for _, tt := range tests {
		selected := p.Select(tt.budget)
		got := ""
		if selected != nil {
			got = selected.Name()
		}
		if got != tt.want {
			t.Errorf("Select(%v) = %q, want %q", tt.budget, got, tt.want)
		}
	}
}

func TestPolicy_HighestThresholdWins(t *testing.T) {
	// Declaration order must not matter; the table is sorted by threshold.
	p := NewPolicy([]Rule{
		{MinBudgetJoules: 10, Task: namedTask("cheap", 10)},
		{MinBudgetJoules: 100, Task: namedTask("expensive", 100)},
		{MinBudgetJoules: 50, Task: namedTask("middle", 50)},
	})

	if got := p.Select(60).Name(); got != "middle" {
		t.Errorf("Select(60) = %q, want middle", got)
	}
	if got := p.Select(100).Name(); got != "expensive" {
		t.Errorf("Select(100) = %q, want expensive", got)
	}
}

func TestPolicy_Empty(t *testing.T) {
	p := NewPolicy(nil)
	if p.Select(1000) != nil {
		t.Error("empty policy must select nothing")
	}
}
