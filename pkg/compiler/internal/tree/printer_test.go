package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrinter(t *testing.T) {
	root := NewNode("Join", "q_n1", NewProperty("kind", false, "INNER"))
	left := root.AddChild("Join", "q_n0", nil)
	left.AddChild("Base", "A", []Property{NewProperty("keys", true, "a", "b")})
	left.AddChild("Base", "B", nil)
	root.AddChild("Base", "C", nil)

	sb := &strings.Builder{}
	NewPrinter(sb).Print(root)

	expected := `Join <q_n1> [kind=INNER]
├── Join <q_n0>
│   ├── Base <A> [keys=(a, b)]
│   └── Base <B>
└── Base <C>
`
	require.Equal(t, expected, sb.String())
}
