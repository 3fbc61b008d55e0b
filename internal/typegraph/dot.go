package typegraph

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteDot writes the graph in Graphviz DOT form for external
// visualization. Nodes are labeled by ID, size and origin count; edges by
// kind and offset expression. This is a diagnostic surface only.
func (ts *TypeSystem) WriteDot(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph layout_type_system {\n")
	b.WriteString("  node [shape=box];\n")
	for _, n := range ts.Nodes() {
		fmt.Fprintf(&b, "  n%d [label=\"node#%d\\nsize=%d\\norigins=%d\"];\n",
			n.ID, n.ID, n.Size, len(ts.nodeToPtrs[n.ID]))
	}
	for _, n := range ts.Nodes() {
		for _, e := range n.Successors.Edges() {
			fmt.Fprintf(&b, "  n%d -> n%d [label=\"%s\"%s];\n",
				n.ID, e.To.ID, e.Tag, edgeStyle(e))
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func edgeStyle(e Edge) string {
	switch e.Tag.Kind() {
	case LinkEquality:
		return ", style=dashed"
	case LinkInheritance:
		return ", style=bold"
	default:
		return ""
	}
}

// DumpDotFile writes the DOT dump to path.
func (ts *TypeSystem) DumpDotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("typegraph: dot dump: %w", err)
	}
	if err := ts.WriteDot(f); err != nil {
		f.Close()
		return fmt.Errorf("typegraph: dot dump: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("typegraph: dot dump: %w", err)
	}
	return nil
}
