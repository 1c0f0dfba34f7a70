package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/treegrid/internal/layout"
	"github.com/roach88/treegrid/internal/tree"
)

// AssertionError is returned when an assertion fails.
// It includes the final grid to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Grid     layout.Grid
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal grid:\n")
	_ = layout.RenderText(&buf, e.Grid)

	return buf.String()
}

func assertWidth(g layout.Grid, a Assertion) error {
	if g.Width == *a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertWidth,
		Expected: fmt.Sprintf("width %d", *a.Value),
		Actual:   fmt.Sprintf("width %d", g.Width),
		Grid:     g,
	}
}

func assertRows(g layout.Grid, a Assertion) error {
	if len(g.Rows) == *a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertRows,
		Expected: fmt.Sprintf("%d rows", *a.Value),
		Actual:   fmt.Sprintf("%d rows", len(g.Rows)),
		Grid:     g,
	}
}

func assertPresence(nodes *tree.Store, g layout.Grid, a Assertion) error {
	_, err := nodes.GetNode(tree.PathRef(a.Node))
	present := err == nil
	if present == (a.Type == AssertPresent) {
		return nil
	}
	state := func(p bool) string {
		if p {
			return "present"
		}
		return "absent"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("node %s %s", a.Node, state(!present)),
		Actual:   fmt.Sprintf("node %s %s", a.Node, state(present)),
		Grid:     g,
	}
}

func assertChildren(nodes *tree.Store, g layout.Grid, a Assertion) error {
	n, err := nodes.GetNode(tree.PathRef(a.Node))
	if err != nil {
		return &AssertionError{
			Type:     AssertChildren,
			Expected: fmt.Sprintf("node %s with children %v", a.Node, a.Children),
			Actual:   fmt.Sprintf("node %s absent", a.Node),
			Grid:     g,
		}
	}

	got := []string{}
	for child := range n.Children() {
		got = append(got, child.ShortID())
	}
	if slices.Equal(got, a.Children) {
		return nil
	}
	return &AssertionError{
		Type:     AssertChildren,
		Expected: fmt.Sprintf("children of %s = %v", a.Node, a.Children),
		Actual:   fmt.Sprintf("children of %s = %v", a.Node, got),
		Grid:     g,
	}
}

// EvaluateAssertions runs all assertions and returns error messages for
// failures. The tree is read through nodes; grid checks use result.Grid.
func EvaluateAssertions(nodes *tree.Store, result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertWidth:
			err = assertWidth(result.Grid, assertion)
		case AssertRows:
			err = assertRows(result.Grid, assertion)
		case AssertPresent, AssertAbsent:
			err = assertPresence(nodes, result.Grid, assertion)
		case AssertChildren:
			err = assertChildren(nodes, result.Grid, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d (%s): %v", i, assertion.Type, err))
		}
	}

	return errors
}
