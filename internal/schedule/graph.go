// Package schedule computes a deterministic execution order for the steps of
// a case type. The order is a topological sort of the declared dependency
// relation; steps that are ready at the same time run in declaration order.
package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// Node is one step as the scheduler sees it: its name, the names it depends
// on, and the position it was declared at within its case type.
type Node struct {
	Name      string
	DependsOn []string
	Index     int
}

// DependencyDefinitionError reports a dependency on a step name that does not
// exist in the same case type. Raised at graph-build time, never at run time.
type DependencyDefinitionError struct {
	Step    string
	Missing string
}

func (e *DependencyDefinitionError) Error() string {
	return fmt.Sprintf("step %q depends on unknown step %q", e.Step, e.Missing)
}

// DependencyCycleError reports a dependency cycle. Steps holds the members of
// one detected cycle in walk order.
type DependencyCycleError struct {
	Steps []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle between steps: %s", strings.Join(e.Steps, " -> "))
}

// IsDependencyDefinition reports whether err is a DependencyDefinitionError.
func IsDependencyDefinition(err error) bool {
	var target *DependencyDefinitionError
	return errors.As(err, &target)
}

// IsDependencyCycle reports whether err is a DependencyCycleError.
func IsDependencyCycle(err error) bool {
	var target *DependencyCycleError
	return errors.As(err, &target)
}

// graph is a directed dependency graph over step names.
type graph struct {
	nodes    []Node
	edges    map[string][]string // prerequisite -> dependents
	inDegree map[string]int
}

// Validate checks that node names are non-empty and unique and that every
// dependency names a declared step.
func Validate(nodes []Node) error {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Name == "" {
			return fmt.Errorf("step has empty name")
		}
		if known[n.Name] {
			return fmt.Errorf("step %q declared twice", n.Name)
		}
		known[n.Name] = true
	}

	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if !known[dep] {
				return &DependencyDefinitionError{Step: n.Name, Missing: dep}
			}
		}
	}

	return nil
}

func build(nodes []Node) *graph {
	g := &graph{
		nodes:    nodes,
		edges:    make(map[string][]string),
		inDegree: make(map[string]int),
	}

	for _, n := range nodes {
		g.inDegree[n.Name] = 0
	}
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			// dep must complete before n
			g.edges[dep] = append(g.edges[dep], n.Name)
			g.inDegree[n.Name]++
		}
	}

	return g
}

// findCycle detects a cycle using DFS with color marking and returns the
// members of the first cycle found, in walk order. Returns nil when acyclic.
// Roots are tried in declaration order so the reported cycle is stable.
func (g *graph) findCycle() []string {
	const (
		white = 0 // not visited
		gray  = 1 // visiting
		black = 2 // visited
	)

	colors := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		colors[n.Name] = white
	}

	var stack []string
	var cycle []string

	var dfs func(string) bool
	dfs = func(node string) bool {
		colors[node] = gray
		stack = append(stack, node)

		for _, neighbor := range g.edges[node] {
			if colors[neighbor] == gray {
				// back edge: the cycle is the stack suffix starting at neighbor
				for i, name := range stack {
					if name == neighbor {
						cycle = append(cycle, stack[i:]...)
						break
					}
				}
				return true
			}
			if colors[neighbor] == white && dfs(neighbor) {
				return true
			}
		}

		stack = stack[:len(stack)-1]
		colors[node] = black
		return false
	}

	for _, n := range g.nodes {
		if colors[n.Name] == white {
			if dfs(n.Name) {
				return cycle
			}
		}
	}

	return nil
}

// Order computes the execution order for the given steps using Kahn's
// algorithm. When several steps are ready at the same point the one with the
// lowest declaration index goes first, so execution reads top to bottom
// unless dependencies say otherwise.
func Order(nodes []Node) ([]string, error) {
	if err := Validate(nodes); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	g := build(nodes)
	if cycle := g.findCycle(); cycle != nil {
		return nil, &DependencyCycleError{Steps: cycle}
	}

	// Scan candidates in ascending declaration index each round; the first
	// ready one is the tie-break winner.
	byIndex := make([]Node, len(nodes))
	copy(byIndex, nodes)
	for i := 1; i < len(byIndex); i++ {
		for j := i; j > 0 && byIndex[j].Index < byIndex[j-1].Index; j-- {
			byIndex[j], byIndex[j-1] = byIndex[j-1], byIndex[j]
		}
	}

	inDegree := make(map[string]int, len(g.inDegree))
	for name, degree := range g.inDegree {
		inDegree[name] = degree
	}

	order := make([]string, 0, len(nodes))
	emitted := make(map[string]bool, len(nodes))

	for len(order) < len(nodes) {
		next := ""
		for _, n := range byIndex {
			if !emitted[n.Name] && inDegree[n.Name] == 0 {
				next = n.Name
				break
			}
		}
		if next == "" {
			// unreachable once findCycle passed
			return nil, &DependencyCycleError{Steps: remaining(byIndex, emitted)}
		}

		order = append(order, next)
		emitted[next] = true
		for _, dependent := range g.edges[next] {
			inDegree[dependent]--
		}
	}

	return order, nil
}

func remaining(nodes []Node, emitted map[string]bool) []string {
	var names []string
	for _, n := range nodes {
		if !emitted[n.Name] {
			names = append(names, n.Name)
		}
	}
	return names
}
