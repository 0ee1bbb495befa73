package mir

import (
	"errors"
	"fmt"

	"github.com/millrace/millrace/pkg/compiler/querygraph"
)

// ErrMissingRelation is returned when a join reference addresses a relation
// that is neither part of an active join chain nor present in the caller's
// leaf-node map. It indicates a malformed join order and aborts plan
// construction as a whole.
var ErrMissingRelation = errors.New("relation not found in active chains or leaf nodes")

// joinChain is one connected component of the join tree built so far: the
// set of relations reachable in the component and a handle to the node that
// currently outputs the component's joined rows.
type joinChain struct {
	tables   map[querygraph.Relation]struct{}
	lastNode Node
}

func newJoinChain(table querygraph.Relation, node Node) joinChain {
	return joinChain{
		tables:   map[querygraph.Relation]struct{}{table: {}},
		lastNode: node,
	}
}

// merge consumes both chains and returns a chain over the union of their
// table sets, terminated by lastNode. Disjointness of the two sets is
// guaranteed by chain selection and not re-checked here.
func (c joinChain) merge(other joinChain, lastNode Node) joinChain {
	tables := make(map[querygraph.Relation]struct{}, len(c.tables)+len(other.tables))
	for t := range c.tables {
		tables[t] = struct{}{}
	}
	for t := range other.tables {
		tables[t] = struct{}{}
	}
	return joinChain{
		tables:   tables,
		lastNode: lastNode,
	}
}

func (c joinChain) hasTable(table querygraph.Relation) bool {
	_, ok := c.tables[table]
	return ok
}

// MakeJoins generates the join nodes for a query by processing the graph's
// join order one reference at a time, creating or merging join chains as it
// goes. When both endpoints of a reference already belong to the same
// chain, the reference is a no-op; when they belong to two distinct chains,
// a new join node is built from the chains' terminal nodes and the chains
// are merged. A reference whose endpoint has not been seen yet starts a new
// singleton chain from nodeForRel, assuming a later reference will connect
// it to the rest of the plan.
//
// Created nodes are named "<name>_n<counter>", with the counter starting at
// nodeCount and incrementing once per created node. The returned slice
// preserves creation order.
func MakeJoins(
	factory NodeFactory,
	name string,
	qg *querygraph.QueryGraph,
	nodeForRel map[querygraph.Relation]Node,
	nodeCount int,
) ([]Node, error) {
	joinNodes := make([]Node, 0, len(qg.JoinOrder))
	var joinChains []joinChain

	for _, jref := range qg.JoinOrder {
		kind, predicate, err := qg.ResolveJoinRef(jref)
		if err != nil {
			return nil, err
		}

		leftChain, rightChain, err := pickJoinChains(jref.Src, jref.Dst, &joinChains, nodeForRel)
		if err != nil {
			return nil, err
		}

		if rightChain == nil {
			// Both endpoints are already connected through earlier joins.
			joinChains = append(joinChains, leftChain)
			continue
		}

		jn, err := factory.MakeJoinNode(
			fmt.Sprintf("%s_n%d", name, nodeCount),
			predicate,
			leftChain.lastNode,
			rightChain.lastNode,
			joinKindFor(kind),
		)
		if err != nil {
			return nil, err
		}

		joinChains = append(joinChains, leftChain.merge(*rightChain, jn))
		nodeCount++
		joinNodes = append(joinNodes, jn)
	}

	return joinNodes, nil
}

// pickJoinChains removes the chains containing src and dst from the active
// set, synthesizing singleton chains from nodeForRel for relations not yet
// part of any chain. When the chain containing src already contains dst,
// the second return value is nil and no chain was synthesized for dst.
func pickJoinChains(
	src, dst querygraph.Relation,
	joinChains *[]joinChain,
	nodeForRel map[querygraph.Relation]Node,
) (joinChain, *joinChain, error) {
	leftChain, err := takeChain(src, joinChains, nodeForRel)
	if err != nil {
		return joinChain{}, nil, err
	}

	if leftChain.hasTable(dst) {
		return leftChain, nil, nil
	}

	rightChain, err := takeChain(dst, joinChains, nodeForRel)
	if err != nil {
		return joinChain{}, nil, err
	}

	return leftChain, &rightChain, nil
}

// takeChain removes and returns the chain containing table from the active
// set, or synthesizes a singleton chain from nodeForRel. Removal does not
// preserve the order of the active set; only containment matters. At most
// one chain can contain any given relation.
func takeChain(
	table querygraph.Relation,
	joinChains *[]joinChain,
	nodeForRel map[querygraph.Relation]Node,
) (joinChain, error) {
	chains := *joinChains
	for i := range chains {
		if chains[i].hasTable(table) {
			chain := chains[i]
			chains[i] = chains[len(chains)-1]
			*joinChains = chains[:len(chains)-1]
			return chain, nil
		}
	}

	node, ok := nodeForRel[table]
	if !ok {
		return joinChain{}, fmt.Errorf("%w: %q", ErrMissingRelation, table)
	}
	return newJoinChain(table, node), nil
}

// joinKindFor maps a resolved edge classification to the join kind of the
// physical operator. ResolveJoinRef guarantees the kind is a join edge.
func joinKindFor(kind querygraph.EdgeKind) JoinKind {
	if kind == querygraph.EdgeKindLeftJoin {
		return JoinLeft
	}
	return JoinInner
}
