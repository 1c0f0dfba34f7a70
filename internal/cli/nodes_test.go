package cli

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treegrid/internal/layout"
	"github.com/roach88/treegrid/internal/server"
	"github.com/roach88/treegrid/internal/store"
)

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "trees.db")
}

// buildLeafBesideBranch creates /1, /1/2, /1/3 and /1/3/4.
func buildLeafBesideBranch(t *testing.T, target ...string) {
	t.Helper()
	for _, step := range []struct{ parent, want string }{
		{"", "added /1\n"},
		{"/1", "added /1/2\n"},
		{"1", "added /1/3\n"},
		{"/1/3", "added /1/3/4\n"},
	} {
		args := append(append([]string{}, target...), "add")
		if step.parent != "" {
			args = append(args, step.parent)
		}
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Equal(t, step.want, out)
	}
}

const leafBesideBranchTable = "" +
	"+-------+----------+----------+\n" +
	"| Depth | Tree Nodes          |\n" +
	"+-------+----------+----------+\n" +
	"| 0     | P:NONE ID:1         |\n" +
	"| 1     | P:1 ID:2 | P:1 ID:3 |\n" +
	"| 2     |          | P:3 ID:4 |\n" +
	"+-------+----------+----------+\n"

func TestAddAndShow(t *testing.T) {
	db := tempDB(t)
	buildLeafBesideBranch(t, "--db", db)

	out, err := execute(t, "--db", db, "show")
	require.NoError(t, err)
	assert.Equal(t, leafBesideBranchTable, out)
}

func TestShow_JSON(t *testing.T) {
	db := tempDB(t)
	buildLeafBesideBranch(t, "--db", db)

	out, err := execute(t, "--db", db, "--format", "json", "show")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   layout.Grid `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Width)
	assert.Len(t, resp.Data.Rows, 3)
}

func TestShow_EmptyTree(t *testing.T) {
	out, err := execute(t, "--db", tempDB(t), "show")
	require.NoError(t, err)
	assert.Equal(t, "+-------+\n| Depth |\n+-------+\n", out)
}

func TestRemoveAndFind(t *testing.T) {
	db := tempDB(t)
	buildLeafBesideBranch(t, "--db", db)

	out, err := execute(t, "--db", db, "find", "4")
	require.NoError(t, err)
	assert.Equal(t, "found /1/3/4\n", out)

	out, err = execute(t, "--db", db, "find", "2", "--under", "/1/3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")

	out, err = execute(t, "--db", db, "remove", "3")
	require.NoError(t, err)
	assert.Equal(t, "removed /1/3\n", out)

	_, err = execute(t, "--db", db, "find", "4")
	require.Error(t, err)

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(context.Background(), store.DefaultScope)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the subtree is gone from the database too")
}

func TestRemove_NotFound(t *testing.T) {
	out, err := execute(t, "--db", tempDB(t), "remove", "/9")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}

func TestAdd_JSONError(t *testing.T) {
	out, err := execute(t, "--db", tempDB(t), "--format", "json", "add", "/5")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_NOT_FOUND", resp.Error.Code)
}

func TestClear(t *testing.T) {
	db := tempDB(t)
	buildLeafBesideBranch(t, "--db", db)

	out, err := execute(t, "--db", db, "clear")
	require.NoError(t, err)
	assert.Equal(t, "cleared /\n", out)

	out, err = execute(t, "--db", db, "remove", "0")
	require.NoError(t, err)
	assert.Equal(t, "cleared /\n", out)

	out, err = execute(t, "--db", db, "show")
	require.NoError(t, err)
	assert.Equal(t, "+-------+\n| Depth |\n+-------+\n", out)
}

func TestScopesAreSeparate(t *testing.T) {
	db := tempDB(t)
	s, err := store.Open(db)
	require.NoError(t, err)
	other, err := s.CreateScope(context.Background(), "other")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	buildLeafBesideBranch(t, "--db", db)

	out, err := execute(t, "--db", db, "--scope", "2", "add")
	require.NoError(t, err)
	assert.Equal(t, int64(2), other)
	assert.Equal(t, "added /5\n", out, "ids are unique across scopes")

	out, err = execute(t, "--db", db, "--scope", "2", "find", "4")
	require.Error(t, err)
	assert.Contains(t, out, "E_NOT_FOUND")
}

func TestPopulate(t *testing.T) {
	db := tempDB(t)
	buildLeafBesideBranch(t, "--db", db)

	out, err := execute(t, "--db", db, "populate", "--count", "5", "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, "created 6 nodes (seed 3)\n", out)

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(context.Background(), store.DefaultScope)
	require.NoError(t, err)
	assert.Equal(t, 6, n, "populate replaces the old tree")
}

func TestPopulate_NegativeCount(t *testing.T) {
	_, err := execute(t, "--db", tempDB(t), "populate", "--count", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRemoteServer(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	hs := httptest.NewServer(server.New(server.Config{Store: db}))
	defer hs.Close()

	buildLeafBesideBranch(t, "--server", hs.URL)

	out, err := execute(t, "--server", hs.URL, "show")
	require.NoError(t, err)
	assert.Equal(t, leafBesideBranchTable, out)

	out, err = execute(t, "--server", hs.URL, "remove", "/1/2")
	require.NoError(t, err)
	assert.Equal(t, "removed /1/2\n", out)

	edges, err := db.ListAll(context.Background(), store.DefaultScope)
	require.NoError(t, err)
	assert.Equal(t, []store.Edge{{ID: 1, Parent: 0}, {ID: 3, Parent: 1}, {ID: 4, Parent: 3}}, edges)
}

func TestRemoteServer_Unreachable(t *testing.T) {
	hs := httptest.NewServer(nil)
	url := hs.URL
	hs.Close()

	_, err := execute(t, "--server", url, "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load tree")
}
