// Package dag provides the dependency graph used for step ordering:
// nodes keyed by ID, directed edges, cycle detection, and a deterministic
// topological sort.
//
// Graphs are built during validation and read-only afterwards; no
// synchronization is needed because one graph belongs to one pass.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a collection of nodes and their dependency edges.
type Graph struct {
	nodes map[string]*node
	order []string
}

type node struct {
	id string
	// index is the insertion position, used as the topological tie-break
	// so identical input always yields identical ordering.
	index      int
	deps       map[string]*node
	dependents map[string]*node
}

// New creates an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a node with the given ID. Adding an existing ID is a no-op
// so the insertion index of the first occurrence is kept.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		index:      len(g.order),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// HasNode reports whether the graph contains the given ID.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge records that toID depends on fromID. Both nodes must exist and
// self-references are rejected.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, toID)
	}
	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns the sorted IDs the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted IDs that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// TransitiveDependents returns every node reachable downstream of id, in
// deterministic insertion order.
func (g *Graph) TransitiveDependents(id string) ([]string, error) {
	start, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	visited := map[string]bool{start.id: true}
	queue := []*node{start}
	var reachable []*node
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range cur.dependents {
			if visited[dep.id] {
				continue
			}
			visited[dep.id] = true
			reachable = append(reachable, dep)
			queue = append(queue, dep)
		}
	}

	sort.Slice(reachable, func(i, j int) bool { return reachable[i].index < reachable[j].index })
	out := make([]string, len(reachable))
	for i, n := range reachable {
		out[i] = n.id
	}
	return out, nil
}

func sortedKeys(m map[string]*node) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
