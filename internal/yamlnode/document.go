package yamlnode

import (
	"fmt"
	"iter"
)

// Document is a parsed YAML document. A nil Root is the null document.
type Document struct {
	Root *Node

	anchors map[string]*Node
}

// NewDocument wraps root and indexes its anchors.
func NewDocument(root *Node) *Document {
	d := &Document{Root: root}
	d.Reindex()
	return d
}

func (d *Document) IsNull() bool {
	return d == nil || d.Root == nil
}

// Reindex rebuilds the anchor side-table; call it after any mutation that
// adds, renames or removes anchored nodes.
func (d *Document) Reindex() {
	d.anchors = make(map[string]*Node)
	for n := range Walk(d.Root) {
		if n.Anchor == "" {
			continue
		}
		if _, ok := d.anchors[n.Anchor]; !ok {
			d.anchors[n.Anchor] = n
		}
	}
}

// Anchor returns the node owning name.
func (d *Document) Anchor(name string) (*Node, bool) {
	if d.anchors == nil {
		d.Reindex()
	}
	n, ok := d.anchors[name]
	return n, ok
}

// AnchorNames returns the set of anchor names in use.
func (d *Document) AnchorNames() map[string]struct{} {
	if d.anchors == nil {
		d.Reindex()
	}
	names := make(map[string]struct{}, len(d.anchors))
	for name := range d.anchors {
		names[name] = struct{}{}
	}
	return names
}

// UniqueAnchorName returns base when unused, otherwise the first free
// base%03d variant.
func (d *Document) UniqueAnchorName(base string) string {
	names := d.AnchorNames()
	if base != "" {
		if _, taken := names[base]; !taken {
			return base
		}
	} else {
		base = "id"
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%03d", base, i)
		if _, taken := names[candidate]; !taken {
			return candidate
		}
	}
}

// Walk yields every distinct node reachable from root in pre-order,
// including mapping keys and merge sources. Shared (aliased) nodes are
// yielded once.
func Walk(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		visited := map[*Node]struct{}{}
		var visit func(n *Node) bool
		visit = func(n *Node) bool {
			if n == nil {
				return true
			}
			if _, ok := visited[n]; ok {
				return true
			}
			visited[n] = struct{}{}
			if !yield(n) {
				return false
			}
			for _, src := range n.Merge {
				if !visit(src) {
					return false
				}
			}
			for _, p := range n.Pairs {
				if !visit(p.Key) || !visit(p.Value) {
					return false
				}
			}
			for _, item := range n.Items {
				if !visit(item) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}
