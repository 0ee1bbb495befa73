package mir

import (
	"strings"

	"github.com/millrace/millrace/pkg/compiler/internal/tree"
)

// BuildTree converts a plan node and its children into a tree structure
// that can be used for visualization and debugging purposes.
func BuildTree(p *Plan, n Node) *tree.Node {
	root := toTreeNode(n)
	for _, child := range p.Children(n) {
		if ch := BuildTree(p, child); ch != nil {
			root.Children = append(root.Children, ch)
		}
	}
	return root
}

func toTreeNode(n Node) *tree.Node {
	treeNode := tree.NewNode(n.Type().String(), n.ID())
	switch node := n.(type) {
	case *Base:
		treeNode.Properties = []tree.Property{
			tree.NewProperty("relation", false, node.Relation),
		}
		if len(node.Keys) > 0 {
			treeNode.Properties = append(treeNode.Properties, tree.NewProperty("keys", true, toAnySlice(node.Keys)...))
		}
	case *Join:
		treeNode.Properties = []tree.Property{
			tree.NewProperty("kind", false, node.Kind),
			tree.NewProperty("on", false, node.On.String()),
		}
	}
	return treeNode
}

func toAnySlice[T any](s []T) []any {
	ret := make([]any, len(s))
	for i := range s {
		ret[i] = s[i]
	}
	return ret
}

// PrintAsTree converts a [Plan] into a human-readable tree representation.
// It processes each root node in the plan graph, and returns the combined
// string output of all trees joined by newlines.
func PrintAsTree(p *Plan) string {
	results := make([]string, 0, len(p.Roots()))

	for _, root := range p.Roots() {
		sb := &strings.Builder{}
		printer := tree.NewPrinter(sb)
		printer.Print(BuildTree(p, root))
		results = append(results, sb.String())
	}

	return strings.Join(results, "\n")
}
