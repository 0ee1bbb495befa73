// Package mir holds the intermediate representation the query compiler
// lowers query graphs into: a DAG of physical operator nodes. Nodes are
// immutable once constructed and referenced through shared handles — the
// same node may be held by multiple chains, by the caller's relation map,
// and by the plan graph at the same time.
package mir

import (
	"fmt"

	"github.com/millrace/millrace/pkg/compiler/querygraph"
)

// NodeType represents the type of node in the plan.
type NodeType uint32

const (
	_ NodeType = iota // zero-value is an invalid type

	NodeTypeBase
	NodeTypeJoin
)

// String returns the string representation of the [NodeType].
func (t NodeType) String() string {
	switch t {
	case NodeTypeBase:
		return "Base"
	case NodeTypeJoin:
		return "Join"
	default:
		panic(fmt.Sprintf("unknown node type %d", t))
	}
}

// Node is the common interface for all nodes in a plan. Implementations are
// treated as immutable handles after construction.
type Node interface {
	// ID returns the name that uniquely identifies the node within the
	// enclosing plan.
	ID() string
	// Type returns the type of the node.
	Type() NodeType
}

// JoinKind denotes how a [Join] node combines its two inputs.
type JoinKind int

// Recognized values of [JoinKind].
const (
	// JoinKindInvalid indicates an invalid join kind.
	JoinKindInvalid JoinKind = iota

	JoinInner // Inner join.
	JoinLeft  // Left outer join.
)

// String returns a human-readable representation of the join kind.
func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT_OUTER"
	default:
		return fmt.Sprintf("JoinKind(%d)", k)
	}
}

// Base is a leaf node producing the rows of a single relation, either a
// base table scan or a previously materialized sub-result.
type Base struct {
	NodeID string

	// Relation whose rows this node produces.
	Relation querygraph.Relation

	// Keys are the primary key columns of the relation, when known.
	Keys []string
}

// ID implements the [Node] interface.
func (b *Base) ID() string { return b.NodeID }

// Type implements the [Node] interface.
func (*Base) Type() NodeType { return NodeTypeBase }

// Join is a binary join operator over the outputs of its two input nodes.
// The left input is the plan's first child edge, the right input the
// second.
type Join struct {
	NodeID string

	// Kind of the join (inner or left outer).
	Kind JoinKind

	// On is the predicate instance governing this join.
	On querygraph.ConditionTree
}

// ID implements the [Node] interface.
func (j *Join) ID() string { return j.NodeID }

// Type implements the [Node] interface.
func (*Join) Type() NodeType { return NodeTypeJoin }
