package dag

import (
	"container/heap"
	"fmt"
	"strings"
)

// CycleError reports a dependency cycle, carrying the nodes along one
// witness cycle in order.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// indexHeap is a min-heap of node insertion indices.
type indexHeap []int

func (h indexHeap) Len() int            { return len(h) }
func (h indexHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)         { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopoSort returns a topological ordering of all node IDs. Nodes with no
// unresolved dependency are drained in insertion order, so the result is
// stable and deterministic for identical input. A *CycleError is returned
// when the graph contains a cycle.
func (g *Graph) TopoSort() ([]string, error) {
	indeg := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		indeg[id] = len(n.deps)
	}

	ready := &indexHeap{}
	heap.Init(ready)
	for id, d := range indeg {
		if d == 0 {
			heap.Push(ready, g.nodes[id].index)
		}
	}

	out := make([]string, 0, len(g.nodes))
	for ready.Len() > 0 {
		id := g.order[heap.Pop(ready).(int)]
		out = append(out, id)
		for depID := range g.nodes[id].dependents {
			indeg[depID]--
			if indeg[depID] == 0 {
				heap.Push(ready, g.nodes[depID].index)
			}
		}
	}

	if len(out) != len(g.nodes) {
		return nil, &CycleError{Path: g.findCycle()}
	}
	return out, nil
}

// findCycle extracts one witness cycle with a colored DFS over insertion
// order. Only called when a cycle is known to exist.
func (g *Graph) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string, len(g.nodes))

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, depID := range sortedKeys(g.nodes[id].dependents) {
			switch color[depID] {
			case white:
				parent[depID] = id
				if dfs(depID) {
					return true
				}
			case gray:
				// Back-edge id -> depID closes a cycle.
				cycle = append(cycle, depID)
				for cur := id; cur != depID; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, depID)
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white && dfs(id) {
			break
		}
	}

	// The walk collects the cycle backwards; reverse for forward order.
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}
	return cycle
}
