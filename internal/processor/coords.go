package processor

import (
	"strconv"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// Ref locates a node within its parent.
type Ref struct {
	// Key is the mapping key or set member name.
	Key string
	// Index is the sequence position, or the merge source position when
	// Merge is set.
	Index int
	// Merge marks a reference to one of the parent's merge sources.
	Merge bool
}

func (r Ref) String() string {
	if r.Key != "" {
		return r.Key
	}
	return strconv.Itoa(r.Index)
}

// Coords is a handle on one matched node.
type Coords struct {
	Node      *yamlnode.Node
	Parent    *yamlnode.Node
	ParentRef Ref
	// Path is the concrete path leading to Node.
	Path ypath.Path
	// Segment is the expression segment that produced the match.
	Segment ypath.Segment

	up *Coords
	// members are the concrete matches a slice or collector list is made of.
	members  []*Coords
	readOnly bool
	name     bool
}

// Ancestry returns the chain of ancestors, document root first.
func (c *Coords) Ancestry() []*Coords {
	var chain []*Coords
	for a := c.up; a != nil; a = a.up {
		chain = append(chain, a)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Depth is the number of ancestors.
func (c *Coords) Depth() int {
	n := 0
	for a := c.up; a != nil; a = a.up {
		n++
	}
	return n
}

// IsRoot reports whether Node is the document root.
func (c *Coords) IsRoot() bool {
	return c.up == nil && c.Parent == nil
}

// ReadOnly reports whether the node was reached through a collector.
func (c *Coords) ReadOnly() bool {
	return c.readOnly
}

func rootCoords(doc *yamlnode.Document, sep ypath.Separator) *Coords {
	return &Coords{Node: doc.Root, Path: ypath.Root(sep)}
}

func (c *Coords) child(node *yamlnode.Node, ref Ref, seg ypath.Segment) *Coords {
	return &Coords{
		Node:      node,
		Parent:    c.Node,
		ParentRef: ref,
		Path:      c.Path.Append(seg),
		up:        c,
		readOnly:  c.readOnly,
	}
}

func (c *Coords) copy() *Coords {
	cc := *c
	return &cc
}

// item returns the coords of the i-th sequence element, preferring the
// concrete member for slice and collector lists.
func (c *Coords) item(i int) *Coords {
	if c.members != nil {
		m := c.members[i].copy()
		m.readOnly = m.readOnly || c.readOnly
		return m
	}
	return c.child(c.Node.Items[i], Ref{Index: i}, ypath.Index(i))
}

// children yields the coords of every direct child: mapping values
// including merge-imported ones, sequence elements and set members.
func (c *Coords) children(yield func(*Coords) bool) {
	n := c.Node
	if n == nil {
		return
	}
	switch n.Kind {
	case yamlnode.Mapping:
		for p := range n.All() {
			k := p.Key.Text()
			if !yield(c.child(p.Value, Ref{Key: k}, ypath.Key(k))) {
				return
			}
		}
	case yamlnode.Sequence:
		for i := range n.Items {
			if !yield(c.item(i)) {
				return
			}
		}
	case yamlnode.Set:
		for _, p := range n.Pairs {
			k := p.Key.Text()
			if !yield(c.child(p.Key, Ref{Key: k}, ypath.Key(k))) {
				return
			}
		}
	}
}

// expand flattens slice lists into their members.
func (c *Coords) expand() []*Coords {
	if c.members == nil || c.readOnly {
		return []*Coords{c}
	}
	var out []*Coords
	for _, m := range c.members {
		out = append(out, m.expand()...)
	}
	return out
}
