package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDHelpers(t *testing.T) {
	tests := []struct {
		longID string
		short  string
		parent string
		segs   []string
	}{
		{"", "", "", []string{}},
		{"/1", "1", "", []string{"1"}},
		{"/1/2/3", "3", "/1/2", []string{"1", "2", "3"}},
		{"7", "7", "", []string{"7"}},
	}
	for _, tt := range tests {
		t.Run(tt.longID, func(t *testing.T) {
			assert.Equal(t, tt.short, ShortID(tt.longID))
			assert.Equal(t, tt.parent, ParentID(tt.longID))
			assert.Equal(t, tt.segs, Segments(tt.longID))
		})
	}
}

func TestJoinIDRoundTrip(t *testing.T) {
	id := JoinID(JoinID("", "4"), "9")
	assert.Equal(t, "/4/9", id)
	assert.Equal(t, "9", ShortID(id))
	assert.Equal(t, "/4", ParentID(id))
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, RootToken, NormalizeID(""))
	assert.Equal(t, RootToken, NormalizeID("  "))
	assert.Equal(t, "12", NormalizeID("12"))
}

func TestNode_ChildrenKeepInsertionOrder(t *testing.T) {
	root := newNode("")
	for _, id := range []string{"5", "2", "9"} {
		root.addChild(id)
	}

	var got []string
	for c := range root.Children() {
		got = append(got, c.ShortID())
	}
	assert.Equal(t, []string{"5", "2", "9"}, got)

	// restartable
	assert.Equal(t, 3, len(slices.Collect(root.Children())))

	root.removeChild("2")
	got = got[:0]
	for c := range root.Children() {
		got = append(got, c.ShortID())
	}
	assert.Equal(t, []string{"5", "9"}, got)
	assert.False(t, root.removeChild("2"))
}

func TestNode_ReAddKeepsPosition(t *testing.T) {
	root := newNode("")
	root.addChild("a").addChild("x")
	root.addChild("b")
	root.addChild("a")

	first, _ := root.Child("a")
	assert.Equal(t, 0, first.ChildCount(), "replaced child starts empty")
	ids := []string{}
	for c := range root.Children() {
		ids = append(ids, c.ShortID())
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestNode_CloneIsDeep(t *testing.T) {
	root := newNode("")
	a := root.addChild("1")
	a.addChild("2")

	c := root.clone()
	a.addChild("3")

	ca, ok := c.Child("1")
	assert.True(t, ok)
	assert.Equal(t, 1, ca.ChildCount())
	assert.Equal(t, 3, root.size())
	assert.Equal(t, 2, c.size())
}
