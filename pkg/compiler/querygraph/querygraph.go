package querygraph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidEdge is returned when a join reference cannot be resolved
// against the query graph: the addressed edge does not exist, is not a join
// edge, or does not carry a predicate at the referenced index. This always
// indicates a defect in the stage that constructed the graph or the join
// order, not a recoverable runtime condition.
var ErrInvalidEdge = errors.New("join reference does not resolve to a join edge")

// Relation identifies a base table or a named intermediate result. Relations
// are compared by value and used as map keys throughout the compiler.
type Relation string

// EdgeKind classifies the edge between two relations of the query graph.
type EdgeKind int

// Recognized values of [EdgeKind].
const (
	// EdgeKindInvalid indicates an uninitialized edge.
	EdgeKindInvalid EdgeKind = iota

	EdgeKindInnerJoin // Inner join between the two relations.
	EdgeKindLeftJoin  // Left outer join between the two relations.
	EdgeKindGroupBy   // Grouped aggregation over columns of the two relations.
)

var edgeKindStrings = map[EdgeKind]string{
	EdgeKindInvalid:   "invalid",
	EdgeKindInnerJoin: "INNER_JOIN",
	EdgeKindLeftJoin:  "LEFT_JOIN",
	EdgeKindGroupBy:   "GROUP_BY",
}

// String returns a human-readable representation of the edge kind.
func (k EdgeKind) String() string {
	if s, ok := edgeKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("EdgeKind(%d)", k)
}

// Edge is the classified connection between an unordered pair of relations.
// Join edges carry the ordered predicate instances connecting the pair;
// group-by edges carry the grouping columns only.
type Edge struct {
	Kind EdgeKind

	// Predicates holds the ordered predicate instances for join edges,
	// addressable by [JoinRef.Index].
	Predicates []ConditionTree

	// GroupBy holds the grouping columns for group-by edges.
	GroupBy []*ColumnExpr
}

// JoinRef instructs the join planner to connect the components containing
// Src and Dst using the predicate at Index of the edge between them. Join
// references are supplied in a fixed total order that the planner processes
// sequentially.
type JoinRef struct {
	Src   Relation
	Dst   Relation
	Index int
}

// pairKey is the canonical, order-independent key for an edge.
type pairKey struct {
	a, b Relation
}

func makePairKey(a, b Relation) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// QueryGraph describes which relations a query joins and on which
// predicates. It is constructed by an earlier compiler stage; the join
// planner only reads it.
type QueryGraph struct {
	relations map[Relation]struct{}
	edges     map[pairKey]*Edge

	// JoinOrder is the externally chosen order in which the join planner
	// processes join references. The planner is not free to reorder it.
	JoinOrder []JoinRef
}

// New creates an empty query graph.
func New() *QueryGraph {
	return &QueryGraph{
		relations: make(map[Relation]struct{}),
		edges:     make(map[pairKey]*Edge),
	}
}

// AddRelation registers a relation with the graph. Adding a relation twice
// is a no-op.
func (g *QueryGraph) AddRelation(r Relation) {
	g.relations[r] = struct{}{}
}

// Relations returns all registered relations in lexical order.
func (g *QueryGraph) Relations() []Relation {
	out := make([]Relation, 0, len(g.relations))
	for r := range g.relations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddEdge registers the edge between the unordered pair (a, b). Both
// relations are registered as a side effect. At most one edge may exist per
// pair.
func (g *QueryGraph) AddEdge(a, b Relation, e *Edge) error {
	key := makePairKey(a, b)
	if _, ok := g.edges[key]; ok {
		return fmt.Errorf("edge between %q and %q already exists", a, b)
	}
	g.AddRelation(a)
	g.AddRelation(b)
	g.edges[key] = e
	return nil
}

// Edge returns the edge between the unordered pair (a, b), if any.
func (g *QueryGraph) Edge(a, b Relation) (*Edge, bool) {
	e, ok := g.edges[makePairKey(a, b)]
	return e, ok
}

// ResolveJoinRef classifies the edge addressed by ref and returns the
// predicate instance at ref.Index. The returned kind is always
// [EdgeKindInnerJoin] or [EdgeKindLeftJoin]; resolving a missing edge, a
// group-by edge, or an out-of-range predicate index fails with an error
// wrapping [ErrInvalidEdge] and aborts plan construction as a whole.
func (g *QueryGraph) ResolveJoinRef(ref JoinRef) (EdgeKind, ConditionTree, error) {
	edge, ok := g.Edge(ref.Src, ref.Dst)
	if !ok {
		return EdgeKindInvalid, ConditionTree{}, fmt.Errorf("%w: no edge between %q and %q", ErrInvalidEdge, ref.Src, ref.Dst)
	}
	switch edge.Kind {
	case EdgeKindInnerJoin, EdgeKindLeftJoin:
		if ref.Index < 0 || ref.Index >= len(edge.Predicates) {
			return EdgeKindInvalid, ConditionTree{}, fmt.Errorf("%w: edge between %q and %q has no predicate at index %d", ErrInvalidEdge, ref.Src, ref.Dst, ref.Index)
		}
		return edge.Kind, edge.Predicates[ref.Index], nil
	default:
		return EdgeKindInvalid, ConditionTree{}, fmt.Errorf("%w: edge between %q and %q is %s", ErrInvalidEdge, ref.Src, ref.Dst, edge.Kind)
	}
}
