package harness

import (
	"github.com/roach88/treegrid/internal/layout"
	"github.com/roach88/treegrid/internal/testutil"
)

// TraceEvent is one authority request made while running a step.
type TraceEvent struct {
	Seq  int64 `json:"seq"`
	Step int   `json:"step"`
	testutil.Call
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step outcome and assertion matched.
	Pass bool `json:"pass"`

	// Trace lists authority requests in the order they were made.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Grid is the layout of the final tree.
	Grid layout.Grid `json:"grid"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
