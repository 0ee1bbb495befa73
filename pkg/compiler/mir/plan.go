package mir

import (
	"errors"
	"fmt"
)

// Edge is a directed connection in a [Plan]. The parent consumes the output
// of the child.
type Edge struct {
	Parent, Child Node
}

// Plan is the DAG of operator nodes produced by the compiler. Edges are
// kept in insertion order, which makes the order of [Plan.Children]
// significant: a join's left input is its first child, the right input its
// second.
type Plan struct {
	nodes    map[string]Node
	order    []string
	children map[string][]Node
	parents  map[string][]Node
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{
		nodes:    make(map[string]Node),
		children: make(map[string][]Node),
		parents:  make(map[string][]Node),
	}
}

// Len returns the number of nodes in the plan.
func (p *Plan) Len() int {
	return len(p.nodes)
}

// AddNode adds a node to the plan. Node IDs must be unique within the plan.
func (p *Plan) AddNode(n Node) error {
	if _, ok := p.nodes[n.ID()]; ok {
		return fmt.Errorf("node with id %q already exists in plan", n.ID())
	}
	p.nodes[n.ID()] = n
	p.order = append(p.order, n.ID())
	return nil
}

// Node returns the node with the given id, if present.
func (p *Plan) Node(id string) (Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// AddEdge adds a directed edge between two nodes already present in the
// plan.
func (p *Plan) AddEdge(e Edge) error {
	if e.Parent == nil || e.Child == nil {
		return errors.New("edge must have both a parent and a child node")
	}
	if _, ok := p.nodes[e.Parent.ID()]; !ok {
		return fmt.Errorf("parent node %q does not exist in plan", e.Parent.ID())
	}
	if _, ok := p.nodes[e.Child.ID()]; !ok {
		return fmt.Errorf("child node %q does not exist in plan", e.Child.ID())
	}
	p.children[e.Parent.ID()] = append(p.children[e.Parent.ID()], e.Child)
	p.parents[e.Child.ID()] = append(p.parents[e.Child.ID()], e.Parent)
	return nil
}

// Children returns the inputs of a node in the order their edges were
// added.
func (p *Plan) Children(n Node) []Node {
	return p.children[n.ID()]
}

// Parents returns the consumers of a node in the order their edges were
// added.
func (p *Plan) Parents(n Node) []Node {
	return p.parents[n.ID()]
}

// Roots returns all nodes without parents, in insertion order.
func (p *Plan) Roots() []Node {
	var roots []Node
	for _, id := range p.order {
		if len(p.parents[id]) == 0 {
			roots = append(roots, p.nodes[id])
		}
	}
	return roots
}

// Leaves returns all nodes without children, in insertion order.
func (p *Plan) Leaves() []Node {
	var leaves []Node
	for _, id := range p.order {
		if len(p.children[id]) == 0 {
			leaves = append(leaves, p.nodes[id])
		}
	}
	return leaves
}

// WalkOrder defines the order in which a node and its children are visited.
type WalkOrder uint8

const (
	// PreOrderWalk processes the current node before visiting any of its
	// children.
	PreOrderWalk WalkOrder = iota

	// PostOrderWalk processes the current node after visiting all of its
	// children.
	PostOrderWalk
)

// WalkFunc is a function that gets invoked when walking a Plan. Walking
// stops if WalkFunc returns a non-nil error.
type WalkFunc func(n Node) error

// Walk performs a depth-first walk of outgoing edges starting at n,
// invoking fn for each visited node. Nodes unreachable from n are not
// visited.
func (p *Plan) Walk(n Node, fn WalkFunc, order WalkOrder) error {
	visited := make(map[string]struct{})
	switch order {
	case PreOrderWalk:
		return p.preOrderWalk(n, fn, visited)
	case PostOrderWalk:
		return p.postOrderWalk(n, fn, visited)
	default:
		return errors.New("unsupported walk order, must be one of PreOrderWalk and PostOrderWalk")
	}
}

func (p *Plan) preOrderWalk(n Node, fn WalkFunc, visited map[string]struct{}) error {
	if _, ok := visited[n.ID()]; ok {
		return nil
	}
	visited[n.ID()] = struct{}{}

	if err := fn(n); err != nil {
		return err
	}

	for _, child := range p.children[n.ID()] {
		if err := p.preOrderWalk(child, fn, visited); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plan) postOrderWalk(n Node, fn WalkFunc, visited map[string]struct{}) error {
	if _, ok := visited[n.ID()]; ok {
		return nil
	}
	visited[n.ID()] = struct{}{}

	for _, child := range p.children[n.ID()] {
		if err := p.postOrderWalk(child, fn, visited); err != nil {
			return err
		}
	}

	return fn(n)
}
