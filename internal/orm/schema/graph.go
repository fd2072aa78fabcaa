package schema

import (
	"fmt"
	"sort"
	"strings"
)

// RelationshipGraph is the dependency graph between the classes of a
// registry. A class depends on the class it holds a foreign key to: a single
// relationship whose related properties are the related class's primary key.
type RelationshipGraph struct {
	nodes map[string]*ClassDef
	edges map[string][]string // type id -> dependencies
}

// NewRelationshipGraph builds the graph for all classes in col. Relationships
// that cannot be resolved are ignored; ClassDefValidator reports them.
func NewRelationshipGraph(col *ClassDefCol) *RelationshipGraph {
	graph := &RelationshipGraph{
		nodes: make(map[string]*ClassDef),
		edges: make(map[string][]string),
	}

	for _, cd := range col.ClassDefs() {
		graph.nodes[cd.TypeID(true)] = cd
	}

	for id, cd := range graph.nodes {
		for _, rel := range cd.Relationships.RelationshipDefs() {
			if rel.Type != RelationshipSingle {
				continue
			}
			related, err := rel.RelatedClassDef()
			if err != nil || related == cd || !referencesPrimaryKey(rel, related) {
				continue
			}
			graph.edges[id] = appendUnique(graph.edges[id], related.TypeID(true))
		}
	}

	return graph
}

func referencesPrimaryKey(rel *RelationshipDef, related *ClassDef) bool {
	if related.PrimaryKeyDef == nil || len(rel.RelProps) != related.PrimaryKeyDef.Count() {
		return false
	}
	for _, rp := range rel.RelProps {
		if !related.PrimaryKeyDef.Contains(rp.RelatedPropertyName) {
			return false
		}
	}
	return true
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func (g *RelationshipGraph) sortedNodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DetectCycles detects circular dependencies in the graph
func (g *RelationshipGraph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)

	var dfs func(node string, path []string) bool
	dfs = func(node string, path []string) bool {
		visited[node] = true
		recursionStack[node] = true
		path = append(path, node)

		for _, neighbor := range g.edges[node] {
			if !visited[neighbor] {
				if dfs(neighbor, path) {
					return true
				}
			} else if recursionStack[neighbor] {
				for i, n := range path {
					if n == neighbor {
						cycle := make([]string, len(path)-i)
						for j, id := range path[i:] {
							cycle[j] = g.nodes[id].ClassName
						}
						cycles = append(cycles, cycle)
						break
					}
				}
				return true
			}
		}

		recursionStack[node] = false
		return false
	}

	for _, node := range g.sortedNodes() {
		if !visited[node] {
			dfs(node, []string{})
		}
	}

	return cycles
}

// TopologicalSort returns the classes in dependency order, dependencies first.
// Classes with no ordering constraint between them are sorted by type id.
func (g *RelationshipGraph) TopologicalSort() ([]*ClassDef, error) {
	outDegree := make(map[string]int)
	for node := range g.nodes {
		outDegree[node] = len(g.edges[node])
	}

	reverseEdges := make(map[string][]string)
	for source, targets := range g.edges {
		for _, target := range targets {
			reverseEdges[target] = append(reverseEdges[target], source)
		}
	}

	queue := []string{}
	for _, node := range g.sortedNodes() {
		if outDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]*ClassDef, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[node])

		dependents := reverseEdges[node]
		sort.Strings(dependents)
		for _, dependent := range dependents {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("circular dependency detected: %s", formatCycles(g.DetectCycles()))
	}

	return result, nil
}

// Dependencies returns the classes cd directly depends on
func (g *RelationshipGraph) Dependencies(cd *ClassDef) []*ClassDef {
	deps := g.edges[cd.TypeID(true)]
	result := make([]*ClassDef, 0, len(deps))
	for _, id := range deps {
		result = append(result, g.nodes[id])
	}
	return result
}

// formatCycles formats cycle information for error messages
func formatCycles(cycles [][]string) string {
	var b strings.Builder
	for i, cycle := range cycles {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(strings.Join(cycle, " -> "))
		b.WriteString(" -> ")
		b.WriteString(cycle[0])
	}
	return b.String()
}
