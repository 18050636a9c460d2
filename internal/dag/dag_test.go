package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, nodes []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range nodes {
		g.AddNode(id)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestTopoSort_RespectsEdges(t *testing.T) {
	g := buildGraph(t,
		[]string{"fetch", "transform", "store"},
		[][2]string{{"fetch", "transform"}, {"transform", "store"}},
	)

	order, err := g.TopoSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"fetch", "transform", "store"}, order)
}

func TestTopoSort_TieBreakByInsertionOrder(t *testing.T) {
	// c, a, b have no mutual edges: the order they were added must win.
	g := buildGraph(t,
		[]string{"c", "a", "b", "sink"},
		[][2]string{{"c", "sink"}, {"a", "sink"}, {"b", "sink"}},
	)

	for i := 0; i < 5; i++ {
		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b", "sink"}, order)
	}
}

func TestTopoSort_CycleWitness(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "free"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
	)

	_, err := g.TopoSort()
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)

	require.GreaterOrEqual(t, len(cycleErr.Path), 4)
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1], "witness path must close on itself")
	assert.NotContains(t, cycleErr.Path, "free")
}

func TestAddEdge_Errors(t *testing.T) {
	g := New()
	g.AddNode("a")

	assert.Error(t, g.AddEdge("a", "a"), "self-referential edge")
	assert.Error(t, g.AddEdge("a", "ghost"))
	assert.Error(t, g.AddEdge("ghost", "a"))
}

func TestTransitiveDependents(t *testing.T) {
	g := buildGraph(t,
		[]string{"root", "mid1", "mid2", "leaf", "island"},
		[][2]string{{"root", "mid1"}, {"root", "mid2"}, {"mid1", "leaf"}},
	)

	downstream, err := g.TransitiveDependents("root")
	require.NoError(t, err)
	assert.Equal(t, []string{"mid1", "mid2", "leaf"}, downstream)

	downstream, err = g.TransitiveDependents("leaf")
	require.NoError(t, err)
	assert.Empty(t, downstream)
}

func TestDependenciesAndDependentsAreSorted(t *testing.T) {
	g := buildGraph(t,
		[]string{"z", "a", "m", "sink"},
		[][2]string{{"z", "sink"}, {"a", "sink"}, {"m", "sink"}},
	)

	deps, err := g.Dependencies("sink")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, deps)
}
