package tree

import (
	"fmt"
	"io"
	"strings"
)

const (
	symPrefix = "    "
	symIndent = "│   "
	symConn   = "├── "
	symLast   = "└── "
)

// Printer writes a [Node] and its descendants as an indented tree using
// box-drawing characters, one node per line.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new [Printer] that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes the tree rooted at node to the printer's writer.
func (p *Printer) Print(node *Node) {
	p.printNode(node, "", "")
	p.printChildren(node.Children, "")
}

func (p *Printer) printNode(node *Node, prefix, connector string) {
	fmt.Fprintf(p.w, "%s%s%s\n", prefix, connector, format(node))
}

func (p *Printer) printChildren(children []*Node, prefix string) {
	for i, child := range children {
		connector, childPrefix := symConn, prefix+symIndent
		if i == len(children)-1 {
			connector, childPrefix = symLast, prefix+symPrefix
		}
		p.printNode(child, prefix, connector)
		p.printChildren(child.Children, childPrefix)
	}
}

// format renders a single node as `Name <id> [key=value ...]`.
func format(node *Node) string {
	sb := &strings.Builder{}
	sb.WriteString(node.Name)
	if node.ID != "" {
		fmt.Fprintf(sb, " <%s>", node.ID)
	}
	if len(node.Properties) > 0 {
		sb.WriteString(" [")
		for i, prop := range node.Properties {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(formatProperty(prop))
		}
		sb.WriteString("]")
	}
	return sb.String()
}

func formatProperty(prop Property) string {
	values := make([]string, len(prop.Values))
	for i := range prop.Values {
		values[i] = fmt.Sprintf("%v", prop.Values[i])
	}
	if prop.IsMultiValue {
		return fmt.Sprintf("%s=(%s)", prop.Key, strings.Join(values, ", "))
	}
	return fmt.Sprintf("%s=%s", prop.Key, strings.Join(values, ""))
}
