package mir

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/millrace/millrace/pkg/compiler/querygraph"
)

// NodeFactory allocates physical operator nodes. The join planner depends
// only on this interface; it never inspects the nodes the factory returns
// beyond treating them as opaque handles.
type NodeFactory interface {
	// MakeJoinNode returns a new join operator node with the given unique
	// name, joining the outputs of left and right on the given predicate.
	MakeJoinNode(name string, on querygraph.ConditionTree, left, right Node, kind JoinKind) (Node, error)
}

// Converter is the production [NodeFactory]: it allocates [Join] nodes and
// records them, together with their input edges, in the plan it was created
// for.
type Converter struct {
	plan   *Plan
	logger log.Logger
}

// NewConverter creates a converter that builds nodes into plan.
func NewConverter(plan *Plan, logger log.Logger) *Converter {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Converter{plan: plan, logger: logger}
}

// MakeJoinNode implements the [NodeFactory] interface. The left input
// becomes the node's first child edge, the right input the second.
func (c *Converter) MakeJoinNode(name string, on querygraph.ConditionTree, left, right Node, kind JoinKind) (Node, error) {
	jn := &Join{
		NodeID: name,
		Kind:   kind,
		On:     on,
	}
	if err := c.plan.AddNode(jn); err != nil {
		return nil, err
	}
	if err := c.plan.AddEdge(Edge{Parent: jn, Child: left}); err != nil {
		return nil, err
	}
	if err := c.plan.AddEdge(Edge{Parent: jn, Child: right}); err != nil {
		return nil, err
	}
	level.Debug(c.logger).Log("msg", "created join node", "node", name, "kind", kind, "left", left.ID(), "right", right.ID(), "on", on)
	return jn, nil
}
