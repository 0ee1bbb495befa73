package querygraph

import (
	"fmt"
	"strings"
)

// BinOp denotes the operator of a binary expression inside a join predicate.
type BinOp int

// Recognized values of [BinOp].
const (
	// BinOpInvalid indicates an invalid binary operation.
	BinOpInvalid BinOp = iota

	BinOpEq  // Equality comparison (=).
	BinOpNeq // Inequality comparison (!=).
	BinOpGt  // Greater than comparison (>).
	BinOpGte // Greater than or equal comparison (>=).
	BinOpLt  // Less than comparison (<).
	BinOpLte // Less than or equal comparison (<=).
	BinOpAnd // Logical AND of two predicates.
	BinOpOr  // Logical OR of two predicates.
)

var binOpStrings = map[BinOp]string{
	BinOpInvalid: "invalid",

	BinOpEq:  "EQ",
	BinOpNeq: "NEQ",
	BinOpGt:  "GT",
	BinOpGte: "GTE",
	BinOpLt:  "LT",
	BinOpLte: "LTE",
	BinOpAnd: "AND",
	BinOpOr:  "OR",
}

// String returns a human-readable representation of the binary operation.
func (op BinOp) String() string {
	if s, ok := binOpStrings[op]; ok {
		return s
	}
	return fmt.Sprintf("BinOp(%d)", op)
}

// Expression is the common interface for all expressions that can appear in
// a join predicate.
type Expression interface {
	fmt.Stringer
	isExpr()
}

// ColumnExpr references a single column of a relation.
type ColumnExpr struct {
	// Relation the column belongs to.
	Relation Relation
	// Column is the name of the referenced column.
	Column string
}

func (*ColumnExpr) isExpr() {}

// String returns the column reference as `relation.column`.
func (e *ColumnExpr) String() string {
	return fmt.Sprintf("%s.%s", e.Relation, e.Column)
}

// LiteralExpr is a constant value inside a predicate.
type LiteralExpr struct {
	Value string
}

func (*LiteralExpr) isExpr() {}

// String returns the literal value.
func (e *LiteralExpr) String() string {
	return e.Value
}

// BinaryExpr combines two expressions with a binary operator.
type BinaryExpr struct {
	Left, Right Expression
	Op          BinOp
}

func (*BinaryExpr) isExpr() {}

// String renders the expression as `OP(left, right)`.
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s(%s, %s)", e.Op, e.Left, e.Right)
}

// ConditionTree is one join predicate instance: the boolean condition
// associating the columns of two relations. It is the unit addressed by
// [JoinRef.Index] when multiple predicates connect the same relation pair.
type ConditionTree struct {
	Op          BinOp
	Left, Right Expression
}

// Eq builds the common equality predicate between two columns.
func Eq(left, right *ColumnExpr) ConditionTree {
	return ConditionTree{Op: BinOpEq, Left: left, Right: right}
}

// String renders the predicate as `OP(left, right)`.
func (c ConditionTree) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.Op, c.Left, c.Right)
}

// Columns returns the string renderings of a list of column expressions.
func Columns(cols []*ColumnExpr) []string {
	out := make([]string, len(cols))
	for i := range cols {
		out[i] = cols[i].String()
	}
	return out
}

// renderPredicates is used for hashing and debug output.
func renderPredicates(preds []ConditionTree) string {
	parts := make([]string, len(preds))
	for i := range preds {
		parts[i] = preds[i].String()
	}
	return strings.Join(parts, ", ")
}
