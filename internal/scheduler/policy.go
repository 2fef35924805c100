package scheduler

import (
	"sort"

	"github.com/jouleflux/jouleflux/internal/task"
)

// Rule pairs a budget threshold with the task to run once the bucket
// reaches it.
type Rule struct {
	MinBudgetJoules float64
	Task            task.Task
}

// Policy is an ordered threshold table: rules are checked from the highest
// threshold down and the first satisfied rule selects the task. Expensive
// work therefore wins whenever the budget allows it.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules []Rule) *Policy {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinBudgetJoules > sorted[j].MinBudgetJoules
	})
	return &Policy{rules: sorted}
}

// Select returns the task for the current budget, or nil when no threshold
// is met.
func (p *Policy) Select(budgetJoules float64) task.Task {
	for _, rule := range p.rules {
		if budgetJoules >= rule.MinBudgetJoules {
			return rule.Task
		}
	}
	return nil
}

func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}
