// Command mir-inspect compiles YAML query descriptions into join plans and
// prints the resulting plan trees. It exists for debugging join orders
// without running a full compilation pipeline.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/millrace/millrace/pkg/compiler"
	"github.com/millrace/millrace/pkg/compiler/mir"
	"github.com/millrace/millrace/pkg/compiler/querygraph"
)

func main() {
	flag.Parse()

	c, err := compiler.New(compiler.Params{})
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range flag.Args() {
		printFile(c, f)
	}
}

func printFile(c *compiler.Compiler, filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		log.Printf("%s: %v", filename, err)
		return
	}

	var desc queryDescription
	if err := yaml.UnmarshalStrict(data, &desc); err != nil {
		log.Printf("%s: %v", filename, err)
		return
	}

	qg, err := desc.queryGraph()
	if err != nil {
		log.Printf("%s: %v", filename, err)
		return
	}

	plan, err := c.Compile(desc.Name, qg)
	if err != nil {
		log.Printf("%s: %v", filename, err)
		return
	}

	fmt.Printf("%s (signature %016x, %d join nodes)\n", plan.Name, plan.Signature, len(plan.JoinNodes))
	fmt.Println(mir.PrintAsTree(plan.Plan))
}

// queryDescription is the YAML schema accepted by mir-inspect.
type queryDescription struct {
	Name      string            `yaml:"name"`
	Relations []string          `yaml:"relations"`
	Edges     []edgeDescription `yaml:"edges"`
	JoinOrder []refDescription  `yaml:"join_order"`
}

type edgeDescription struct {
	Left       string                 `yaml:"left"`
	Right      string                 `yaml:"right"`
	Kind       string                 `yaml:"kind"`
	Predicates []predicateDescription `yaml:"predicates"`
	GroupBy    []string               `yaml:"group_by"`
}

type predicateDescription struct {
	Left  string `yaml:"left"`
	Op    string `yaml:"op"`
	Right string `yaml:"right"`
}

type refDescription struct {
	Src   string `yaml:"src"`
	Dst   string `yaml:"dst"`
	Index int    `yaml:"index"`
}

func (d *queryDescription) queryGraph() (*querygraph.QueryGraph, error) {
	qg := querygraph.New()
	for _, rel := range d.Relations {
		qg.AddRelation(querygraph.Relation(rel))
	}
	for _, e := range d.Edges {
		edge, err := e.edge()
		if err != nil {
			return nil, err
		}
		if err := qg.AddEdge(querygraph.Relation(e.Left), querygraph.Relation(e.Right), edge); err != nil {
			return nil, err
		}
	}
	for _, ref := range d.JoinOrder {
		qg.JoinOrder = append(qg.JoinOrder, querygraph.JoinRef{
			Src:   querygraph.Relation(ref.Src),
			Dst:   querygraph.Relation(ref.Dst),
			Index: ref.Index,
		})
	}
	return qg, nil
}

func (e *edgeDescription) edge() (*querygraph.Edge, error) {
	edge := &querygraph.Edge{}
	switch e.Kind {
	case "inner":
		edge.Kind = querygraph.EdgeKindInnerJoin
	case "left":
		edge.Kind = querygraph.EdgeKindLeftJoin
	case "group_by":
		edge.Kind = querygraph.EdgeKindGroupBy
	default:
		return nil, fmt.Errorf("unknown edge kind %q", e.Kind)
	}

	for _, p := range e.Predicates {
		left, err := parseColumn(p.Left)
		if err != nil {
			return nil, err
		}
		right, err := parseColumn(p.Right)
		if err != nil {
			return nil, err
		}
		op, err := parseOp(p.Op)
		if err != nil {
			return nil, err
		}
		edge.Predicates = append(edge.Predicates, querygraph.ConditionTree{Op: op, Left: left, Right: right})
	}

	for _, col := range e.GroupBy {
		c, err := parseColumn(col)
		if err != nil {
			return nil, err
		}
		edge.GroupBy = append(edge.GroupBy, c)
	}

	return edge, nil
}

// parseColumn parses a `relation.column` reference.
func parseColumn(s string) (*querygraph.ColumnExpr, error) {
	rel, col, ok := strings.Cut(s, ".")
	if !ok {
		return nil, fmt.Errorf("column reference %q must have the form relation.column", s)
	}
	return &querygraph.ColumnExpr{Relation: querygraph.Relation(rel), Column: col}, nil
}

func parseOp(s string) (querygraph.BinOp, error) {
	switch s {
	case "", "eq":
		return querygraph.BinOpEq, nil
	case "neq":
		return querygraph.BinOpNeq, nil
	case "gt":
		return querygraph.BinOpGt, nil
	case "gte":
		return querygraph.BinOpGte, nil
	case "lt":
		return querygraph.BinOpLt, nil
	case "lte":
		return querygraph.BinOpLte, nil
	default:
		return querygraph.BinOpInvalid, fmt.Errorf("unknown predicate operator %q", s)
	}
}
