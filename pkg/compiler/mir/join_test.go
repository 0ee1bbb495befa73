package mir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/millrace/millrace/pkg/compiler/querygraph"
)

func eq(leftRel, leftCol, rightRel, rightCol string) querygraph.ConditionTree {
	return querygraph.Eq(
		&querygraph.ColumnExpr{Relation: querygraph.Relation(leftRel), Column: leftCol},
		&querygraph.ColumnExpr{Relation: querygraph.Relation(rightRel), Column: rightCol},
	)
}

func innerEdge(preds ...querygraph.ConditionTree) *querygraph.Edge {
	return &querygraph.Edge{Kind: querygraph.EdgeKindInnerJoin, Predicates: preds}
}

func leftEdge(preds ...querygraph.ConditionTree) *querygraph.Edge {
	return &querygraph.Edge{Kind: querygraph.EdgeKindLeftJoin, Predicates: preds}
}

func ref(src, dst string, index int) querygraph.JoinRef {
	return querygraph.JoinRef{Src: querygraph.Relation(src), Dst: querygraph.Relation(dst), Index: index}
}

// testSetup builds a plan with one base node per relation and a converter
// building into that plan.
func testSetup(t *testing.T, relations ...string) (*Plan, *Converter, map[querygraph.Relation]Node) {
	t.Helper()
	plan := NewPlan()
	nodeForRel := make(map[querygraph.Relation]Node, len(relations))
	for _, rel := range relations {
		base := &Base{NodeID: rel, Relation: querygraph.Relation(rel)}
		require.NoError(t, plan.AddNode(base))
		nodeForRel[querygraph.Relation(rel)] = base
	}
	return plan, NewConverter(plan, nil), nodeForRel
}

func TestMakeJoins_SingleJoin(t *testing.T) {
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", innerEdge(eq("A", "a", "B", "b"))))
	qg.JoinOrder = []querygraph.JoinRef{ref("A", "B", 0)}

	plan, converter, nodeForRel := testSetup(t, "A", "B")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "q_n0", nodes[0].ID())

	jn, ok := nodes[0].(*Join)
	require.True(t, ok)
	require.Equal(t, JoinInner, jn.Kind)
	require.Equal(t, "EQ(A.a, B.b)", jn.On.String())

	// The source chain's node is the left input, the destination chain's
	// node the right input.
	children := plan.Children(nodes[0])
	require.Len(t, children, 2)
	require.Equal(t, "A", children[0].ID())
	require.Equal(t, "B", children[1].ID())
}

func TestMakeJoins_IdempotentRejoin(t *testing.T) {
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", innerEdge(eq("A", "a", "B", "b"))))
	qg.JoinOrder = []querygraph.JoinRef{
		ref("A", "B", 0),
		ref("A", "B", 0),
		ref("B", "A", 0), // repeated in opposite order
	}

	_, converter, nodeForRel := testSetup(t, "A", "B")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "q_n0", nodes[0].ID())
}

func TestMakeJoins_SelfJoinIsNoOp(t *testing.T) {
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "A", innerEdge(eq("A", "a", "A", "b"))))
	qg.JoinOrder = []querygraph.JoinRef{ref("A", "A", 0)}

	_, converter, nodeForRel := testSetup(t, "A")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.NoError(t, err)
	require.Empty(t, nodes)
}

func TestMakeJoins_TransitivelyConnected(t *testing.T) {
	// After A-B and B-C, the pair (A, C) is already unified and must not
	// produce another node.
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", innerEdge(eq("A", "a", "B", "b"))))
	require.NoError(t, qg.AddEdge("B", "C", innerEdge(eq("B", "b", "C", "c"))))
	require.NoError(t, qg.AddEdge("A", "C", innerEdge(eq("A", "a", "C", "c"))))
	qg.JoinOrder = []querygraph.JoinRef{
		ref("A", "B", 0),
		ref("B", "C", 0),
		ref("A", "C", 0),
	}

	_, converter, nodeForRel := testSetup(t, "A", "B", "C")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, "q_n0", nodes[0].ID())
	require.Equal(t, "q_n1", nodes[1].ID())
}

func TestMakeJoins_MergesDisjointChains(t *testing.T) {
	// A-B and C-D first form two disjoint chains; B-C merges them. The
	// position of chains in the active set is unspecified between calls,
	// but the output node sequence is deterministic.
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", innerEdge(eq("A", "a", "B", "b"))))
	require.NoError(t, qg.AddEdge("C", "D", innerEdge(eq("C", "c", "D", "d"))))
	require.NoError(t, qg.AddEdge("B", "C", innerEdge(eq("B", "b", "C", "c"))))
	qg.JoinOrder = []querygraph.JoinRef{
		ref("A", "B", 0),
		ref("C", "D", 0),
		ref("B", "C", 0),
	}

	plan, converter, nodeForRel := testSetup(t, "A", "B", "C", "D")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"q_n0", "q_n1", "q_n2"}, nodeIDs(nodes))

	// The merging join consumes the two chains' terminal nodes.
	children := plan.Children(nodes[2])
	require.Len(t, children, 2)
	require.Equal(t, "q_n0", children[0].ID())
	require.Equal(t, "q_n1", children[1].ID())

	// Connectivity closure: a single root whose reachable leaves are
	// exactly the referenced relations.
	roots := plan.Roots()
	require.Len(t, roots, 1)
	require.ElementsMatch(t, []string{"A", "B", "C", "D"}, reachableLeaves(t, plan, roots[0]))
}

func TestMakeJoins_LeftJoinKind(t *testing.T) {
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", leftEdge(eq("A", "a", "B", "b"))))
	qg.JoinOrder = []querygraph.JoinRef{ref("A", "B", 0)}

	_, converter, nodeForRel := testSetup(t, "A", "B")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, JoinLeft, nodes[0].(*Join).Kind)
}

func TestMakeJoins_PredicateIndex(t *testing.T) {
	first := eq("A", "a1", "B", "b1")
	second := eq("A", "a2", "B", "b2")
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", innerEdge(first, second)))
	qg.JoinOrder = []querygraph.JoinRef{ref("A", "B", 1)}

	_, converter, nodeForRel := testSetup(t, "A", "B")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, second.String(), nodes[0].(*Join).On.String())
}

func TestMakeJoins_CounterStartsAtCallerValue(t *testing.T) {
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", innerEdge(eq("A", "a", "B", "b"))))
	require.NoError(t, qg.AddEdge("B", "C", innerEdge(eq("B", "b", "C", "c"))))
	qg.JoinOrder = []querygraph.JoinRef{
		ref("A", "B", 0),
		ref("A", "B", 0), // no-op, must not consume a counter value
		ref("B", "C", 0),
	}

	_, converter, nodeForRel := testSetup(t, "A", "B", "C")

	nodes, err := MakeJoins(converter, "q", qg, nodeForRel, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"q_n3", "q_n4"}, nodeIDs(nodes))
}

func TestMakeJoins_MissingRelation(t *testing.T) {
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", innerEdge(eq("A", "a", "B", "b"))))
	qg.JoinOrder = []querygraph.JoinRef{ref("A", "B", 0)}

	_, converter, nodeForRel := testSetup(t, "A") // no node for B

	_, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.ErrorIs(t, err, ErrMissingRelation)
	require.ErrorContains(t, err, `"B"`)
}

func TestMakeJoins_GroupByEdgeIsFatal(t *testing.T) {
	qg := querygraph.New()
	require.NoError(t, qg.AddEdge("A", "B", &querygraph.Edge{
		Kind:    querygraph.EdgeKindGroupBy,
		GroupBy: []*querygraph.ColumnExpr{{Relation: "A", Column: "a"}},
	}))
	qg.JoinOrder = []querygraph.JoinRef{ref("A", "B", 0)}

	_, converter, nodeForRel := testSetup(t, "A", "B")

	_, err := MakeJoins(converter, "q", qg, nodeForRel, 0)
	require.ErrorIs(t, err, querygraph.ErrInvalidEdge)
}

func TestJoinChainMerge(t *testing.T) {
	a := newJoinChain("A", &Base{NodeID: "A", Relation: "A"})
	b := newJoinChain("B", &Base{NodeID: "B", Relation: "B"})
	jn := &Join{NodeID: "q_n0", Kind: JoinInner}

	merged := a.merge(b, jn)
	require.Len(t, merged.tables, 2)
	require.True(t, merged.hasTable("A"))
	require.True(t, merged.hasTable("B"))
	require.Same(t, jn, merged.lastNode)
}

// With just two tables reused, chain selection does the right thing.
func TestPickJoinChains(t *testing.T) {
	baseA := &Base{NodeID: "A", Relation: "A"}
	baseB := &Base{NodeID: "B", Relation: "B"}
	joinAB := &Join{NodeID: "q_n0", Kind: JoinInner}
	nodeForRel := map[querygraph.Relation]Node{"A": baseA, "B": baseB}
	var chains []joinChain

	// no chain stuff if we're joining a table with itself
	left, right, err := pickJoinChains("A", "A", &chains, nodeForRel)
	require.NoError(t, err)
	require.Nil(t, right)
	chains = append(chains, left)

	// we do need to do stuff with a newly joined table
	left, right, err = pickJoinChains("A", "B", &chains, nodeForRel)
	require.NoError(t, err)
	require.NotNil(t, right)
	chains = append(chains, left.merge(*right, joinAB))

	// we don't need to do anything more if we join those again
	left, right, err = pickJoinChains("A", "B", &chains, nodeForRel)
	require.NoError(t, err)
	require.Nil(t, right)
	chains = append(chains, left)

	// including if we join them in opposite order
	_, right, err = pickJoinChains("B", "A", &chains, nodeForRel)
	require.NoError(t, err)
	require.Nil(t, right)
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i := range nodes {
		ids[i] = nodes[i].ID()
	}
	return ids
}

func reachableLeaves(t *testing.T, plan *Plan, root Node) []string {
	t.Helper()
	var leaves []string
	require.NoError(t, plan.Walk(root, func(n Node) error {
		if len(plan.Children(n)) == 0 {
			leaves = append(leaves, n.ID())
		}
		return nil
	}, PreOrderWalk))
	return leaves
}
