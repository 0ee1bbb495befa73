// Package compiler turns query graphs into executable plans. The current
// scope is the join-planning stage: given a query graph and a fixed join
// order, it assembles the connected tree of binary join operators computing
// the query's result.
package compiler

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/millrace/millrace/pkg/compiler/mir"
	"github.com/millrace/millrace/pkg/compiler/querygraph"
)

// Params holds parameters for constructing a new [Compiler].
type Params struct {
	Logger     log.Logger            // Logger for optional log messages.
	Registerer prometheus.Registerer // Registerer for optional metrics.
}

// validate validates p and applies defaults.
func (p *Params) validate() error {
	if p.Logger == nil {
		p.Logger = log.NewNopLogger()
	}
	if p.Registerer == nil {
		p.Registerer = prometheus.NewRegistry()
	}
	return nil
}

// Compiler compiles query graphs into plans. A Compiler is safe to reuse
// across compilations; each call to [Compiler.Compile] operates on its own
// state.
type Compiler struct {
	logger  log.Logger
	metrics *metrics
}

// New creates a new Compiler from the given params.
func New(params Params) (*Compiler, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Compiler{
		logger:  log.With(params.Logger, "component", "compiler"),
		metrics: newMetrics(params.Registerer),
	}, nil
}

// CompiledPlan is the result of compiling a query graph.
type CompiledPlan struct {
	// Name of the plan; created join nodes are named after it.
	Name string

	// Plan holds all nodes, base and join, and their edges.
	Plan *mir.Plan

	// JoinNodes are the created join operator nodes in creation order, for
	// the caller to splice into the larger dataflow.
	JoinNodes []mir.Node

	// Signature identifies the shape of the compiled query graph.
	Signature uint64
}

// Compile builds the join plan for qg. It creates one base node per
// relation of the graph, then processes the graph's join order, producing
// one join node per pair of components connected for the first time.
// Compilation fails as a whole if any join reference cannot be resolved.
func (c *Compiler) Compile(name string, qg *querygraph.QueryGraph) (*CompiledPlan, error) {
	start := time.Now()

	plan := mir.NewPlan()
	nodeForRel := make(map[querygraph.Relation]mir.Node)
	for _, rel := range qg.Relations() {
		base := &mir.Base{NodeID: string(rel), Relation: rel}
		if err := plan.AddNode(base); err != nil {
			c.metrics.planFailuresTotal.Inc()
			return nil, err
		}
		nodeForRel[rel] = base
	}

	converter := mir.NewConverter(plan, c.logger)
	joinNodes, err := mir.MakeJoins(converter, name, qg, nodeForRel, 0)
	if err != nil {
		c.metrics.planFailuresTotal.Inc()
		level.Error(c.logger).Log("msg", "join planning failed", "plan", name, "err", err)
		return nil, err
	}

	c.metrics.plansTotal.Inc()
	c.metrics.joinNodesTotal.Add(float64(len(joinNodes)))
	c.metrics.compileDuration.Observe(time.Since(start).Seconds())
	level.Debug(c.logger).Log("msg", "compiled join plan", "plan", name, "relations", len(nodeForRel), "join_nodes", len(joinNodes))

	return &CompiledPlan{
		Name:      name,
		Plan:      plan,
		JoinNodes: joinNodes,
		Signature: qg.Signature(),
	}, nil
}
