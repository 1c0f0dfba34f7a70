package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treegrid/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestRun_StepsDriveTheStore(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "chain",
		Description: "three generations",
		Steps: []Step{
			{Add: ptr("/")},
			{Add: ptr("/1")},
			{Add: ptr("/1/2")},
		},
		Assertions: []Assertion{
			{Type: AssertWidth, Value: ptr(1)},
			{Type: AssertRows, Value: ptr(3)},
			{Type: AssertPresent, Node: "/1/2/3"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 3)
	assert.Equal(t, 1, result.Grid.Width)
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "wrong_expectation",
		Description: "expects a failure that does not happen",
		Steps: []Step{
			{Add: ptr("/"), Expect: OutcomeAuthorityFailure},
			{Remove: ptr("/4")},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[0] add /: expected authority_failure, got ok")
	assert.Contains(t, result.Errors[1], "steps[1] remove /4: expected ok, got not_found")
}

func TestRun_LoadedCountChecked(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "loaded",
		Description: "seeded rows are counted on load",
		Seed:        [][2]int64{{1, 0}, {2, 1}},
		Steps:       []Step{{Load: true, Loaded: ptr(5)}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected 5 nodes loaded, got 2")
}

func TestRun_FailedLoadLeavesEmptyTree(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "failed_load",
		Description: "a refused listing clears the local tree",
		Seed:        [][2]int64{{1, 0}},
		Steps: []Step{
			{Load: true},
			{Fail: 1},
			{Load: true, Expect: OutcomeAuthorityFailure},
		},
		Assertions: []Assertion{
			{Type: AssertAbsent, Node: "/1"},
			{Type: AssertWidth, Value: ptr(0)},
			{Type: AssertRows, Value: ptr(0)},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, TraceEvent{Seq: 2, Step: 2, Call: testutil.Call{Op: "list"}}, result.Trace[1])
}

func TestRun_RemoveRootWipes(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "remove_root",
		Description: "removing the root clears everything",
		Steps: []Step{
			{Add: ptr("/")},
			{Add: ptr("/")},
			{Remove: ptr("/")},
			{Load: true, Loaded: ptr(0)},
		},
		Assertions: []Assertion{
			{Type: AssertChildren, Node: "/", Children: []string{}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "delete", result.Trace[2].Op)
	assert.Equal(t, "0", result.Trace[2].ID)
}

func TestRun_BadSeed(t *testing.T) {
	_, err := Run(&Scenario{
		Name:        "dup_seed",
		Description: "duplicate ids cannot be imported",
		Seed:        [][2]int64{{1, 0}, {1, 0}},
		Steps:       []Step{{Load: true}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed")
}

func TestRunContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunContext(ctx, &Scenario{
		Name:        "cancelled",
		Description: "a cancelled context refuses every request",
		Steps:       []Step{{Add: ptr("/"), Expect: OutcomeAuthorityFailure}},
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
