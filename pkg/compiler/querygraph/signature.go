package querygraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Signature returns a hash identifying the shape of the query graph: its
// relations, edge classifications, predicates and join order. Two graphs
// with the same signature describe the same query shape, which callers use
// to reuse previously compiled plans. The signature is stable across
// processes and independent of insertion order.
func (g *QueryGraph) Signature() uint64 {
	digest := xxhash.New()

	for _, r := range g.Relations() {
		_, _ = digest.WriteString(string(r))
		_, _ = digest.WriteString("\x00")
	}

	keys := make([]pairKey, 0, len(g.edges))
	for key := range g.edges {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	for _, key := range keys {
		edge := g.edges[key]
		_, _ = digest.WriteString(fmt.Sprintf("%s|%s|%s|", key.a, key.b, edge.Kind))
		switch edge.Kind {
		case EdgeKindGroupBy:
			_, _ = digest.WriteString(strings.Join(Columns(edge.GroupBy), ", "))
		default:
			_, _ = digest.WriteString(renderPredicates(edge.Predicates))
		}
		_, _ = digest.WriteString("\x00")
	}

	for _, ref := range g.JoinOrder {
		_, _ = digest.WriteString(fmt.Sprintf("%s>%s@%d\x00", ref.Src, ref.Dst, ref.Index))
	}

	return digest.Sum64()
}
