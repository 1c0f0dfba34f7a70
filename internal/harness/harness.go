package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/roach88/treegrid/internal/layout"
	"github.com/roach88/treegrid/internal/store"
	"github.com/roach88/treegrid/internal/testutil"
	"github.com/roach88/treegrid/internal/tree"
)

// Harness holds the per-scenario fixtures.
type Harness struct {
	db     *store.Store
	flaky  *testutil.FlakyAuthority
	rec    *recorder
	nodes  *tree.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database, reached through
// a FlakyAuthority so steps can inject failures. Authority requests are
// numbered by a DeterministicClock for reproducible traces.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext is Run with a context and a logger for step diagnostics.
// A nil logger discards output.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer db.Close()

	if len(scenario.Seed) > 0 {
		edges := make([]store.Edge, len(scenario.Seed))
		for i, pair := range scenario.Seed {
			edges[i] = store.Edge{ID: pair[0], Parent: pair[1]}
		}
		if err := db.Import(ctx, store.DefaultScope, edges); err != nil {
			return nil, fmt.Errorf("failed to seed: %w", err)
		}
	}

	flaky := testutil.NewFlakyAuthority(db.Authority(store.DefaultScope))
	rec := &recorder{inner: flaky, clock: testutil.NewDeterministicClock()}
	h := &Harness{
		db:     db,
		flaky:  flaky,
		rec:    rec,
		nodes:  tree.New(rec, tree.WithLogger(logger)),
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	result.Trace = rec.events()
	result.Grid = layout.Compute(h.nodes.Snapshot())

	for _, msg := range EvaluateAssertions(h.nodes, result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) {
	h.rec.setStep(i)

	var (
		action string
		err    error
		loaded int
	)
	switch {
	case step.Fail > 0:
		h.flaky.FailNext(step.Fail)
		h.logger.Info("failures armed", "step", i, "count", step.Fail)
		return
	case step.Add != nil:
		action = "add " + *step.Add
		_, err = h.nodes.AddNode(ctx, refFor(*step.Add))
	case step.Remove != nil:
		action = "remove " + *step.Remove
		err = h.nodes.RemoveNode(ctx, refFor(*step.Remove))
	case step.Clear:
		action = "clear"
		err = h.nodes.RemoveAll(ctx)
	case step.Load:
		action = "load"
		loaded, err = h.nodes.LoadAll(ctx)
	}

	want := step.Expect
	if want == "" {
		want = OutcomeOK
	}
	got := outcome(err)
	h.logger.Info("step completed", "step", i, "action", action, "outcome", got)

	if got != want {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s (%v)", i, action, want, got, err))
		return
	}
	if step.Loaded != nil && err == nil && loaded != *step.Loaded {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %d nodes loaded, got %d", i, action, *step.Loaded, loaded))
	}
}

// refFor maps a scenario node id to a Ref. "/" and "" are the root.
func refFor(longID string) tree.Ref {
	if len(tree.Segments(longID)) == 0 {
		return tree.RootRef()
	}
	return tree.PathRef(longID)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case tree.IsNotFound(err):
		return OutcomeNotFound
	case tree.IsAuthorityFailure(err):
		return OutcomeAuthorityFailure
	default:
		return "error"
	}
}

// recorder is a tree.Authority that traces every request it forwards.
type recorder struct {
	inner tree.Authority
	clock *testutil.DeterministicClock

	mu    sync.Mutex
	step  int
	trace []TraceEvent
}

func (r *recorder) setStep(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step = i
}

func (r *recorder) record(call testutil.Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trace = append(r.trace, TraceEvent{Seq: r.clock.Next(), Step: r.step, Call: call})
}

func (r *recorder) events() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TraceEvent{}, r.trace...)
}

func (r *recorder) Create(ctx context.Context, parentShortID string) (string, error) {
	id, err := r.inner.Create(ctx, parentShortID)
	r.record(testutil.Call{Op: "create", ID: tree.NormalizeID(parentShortID), Result: id, OK: err == nil})
	return id, err
}

func (r *recorder) Delete(ctx context.Context, shortID string) error {
	err := r.inner.Delete(ctx, shortID)
	r.record(testutil.Call{Op: "delete", ID: tree.NormalizeID(shortID), OK: err == nil})
	return err
}

func (r *recorder) ListAll(ctx context.Context) ([]tree.Edge, error) {
	edges, err := r.inner.ListAll(ctx)
	call := testutil.Call{Op: "list", OK: err == nil}
	if err == nil {
		call.Result = strconv.Itoa(len(edges))
	}
	r.record(call)
	return edges, err
}
