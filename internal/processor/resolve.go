package processor

import (
	"strconv"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// resolve emits the nodes seg selects directly below c. lists enables the
// Array-of-Hashes pass-through of Key segments and list searches.
func (q *query) resolve(c *Coords, seg *ypath.Segment, lists bool, emit func(*Coords) bool) (bool, error) {
	out := func(cc *Coords) bool {
		cc.Segment = *seg
		return emit(cc)
	}

	switch seg.Type {
	case ypath.KeySegment:
		return q.resolveKey(c, seg.Key, lists, out), nil
	case ypath.IndexSegment:
		return q.resolveIndex(c, seg, out)
	case ypath.SliceSegment:
		return q.resolveSlice(c, seg, out)
	case ypath.AnchorSegment:
		return q.resolveAnchor(c, seg.Key, out), nil
	case ypath.SearchSegment:
		return q.search(c, seg, lists, out)
	case ypath.KeywordSegment:
		return q.keyword(c, seg, out)
	case ypath.MatchAllSegment:
		for child := range c.children {
			if !out(child) {
				return false, nil
			}
		}
	}
	return true, nil
}

func (q *query) resolveKey(c *Coords, key string, lists bool, emit func(*Coords) bool) bool {
	n := c.Node
	if n == nil {
		return true
	}

	switch n.Kind {
	case yamlnode.Mapping:
		for p := range n.All() {
			if p.Key.Text() == key {
				return emit(c.child(p.Value, Ref{Key: key}, ypath.Key(key)))
			}
		}
	case yamlnode.Sequence:
		if i, err := strconv.Atoi(key); err == nil {
			return emitIndex(c, i, emit)
		}
		if !lists {
			return true
		}
		for i := range n.Items {
			if !q.resolveKey(c.item(i), key, lists, emit) {
				return false
			}
		}
	case yamlnode.Set:
		if i := n.LocalIndex(key); i >= 0 {
			return emit(c.child(n.Pairs[i].Key, Ref{Key: key}, ypath.Key(key)))
		}
	}
	return true
}

func (q *query) resolveIndex(c *Coords, seg *ypath.Segment, emit func(*Coords) bool) (bool, error) {
	n := c.Node
	if n == nil {
		return true, nil
	}

	switch n.Kind {
	case yamlnode.Sequence:
		return emitIndex(c, seg.Index, emit), nil
	case yamlnode.Mapping:
		return false, q.errorf(seg, ErrStructureMismatch,
			"Array indexing is invalid against Hash/map data at %s; use a Key segment for numeric keys", displayPath(c.Path))
	case yamlnode.Set:
		return false, q.errorf(seg, ErrStructureMismatch,
			"Array indexing is invalid against unordered set data at %s", displayPath(c.Path))
	}
	return true, nil
}

func emitIndex(c *Coords, i int, emit func(*Coords) bool) bool {
	n := len(c.Node.Items)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return true
	}
	return emit(c.item(i))
}

func (q *query) resolveSlice(c *Coords, seg *ypath.Segment, emit func(*Coords) bool) (bool, error) {
	n := c.Node
	if n == nil {
		return true, nil
	}

	lo, hi := seg.Slice.Lo, seg.Slice.Hi
	switch n.Kind {
	case yamlnode.Sequence:
		start, end, err := sliceBounds(seg.Slice, len(n.Items))
		if err != nil {
			return false, q.errorf(seg, ypath.ErrMalformedExpression, "%s:%s is not an integer array slice", lo, hi)
		}
		list := &yamlnode.Node{Kind: yamlnode.Sequence, Virtual: true}
		members := []*Coords{}
		for i := start; i < end; i++ {
			m := c.item(i)
			members = append(members, m)
			list.Items = append(list.Items, m.Node)
		}
		return emit(&Coords{
			Node:      list,
			Parent:    n,
			ParentRef: Ref{Index: start},
			Path:      c.Path.Append(*seg),
			up:        c,
			members:   members,
			readOnly:  c.readOnly,
		}), nil

	case yamlnode.Mapping:
		for p := range n.All() {
			if k := p.Key.Text(); inRange(k, lo, hi) {
				if !emit(c.child(p.Value, Ref{Key: k}, ypath.Key(k))) {
					return false, nil
				}
			}
		}

	case yamlnode.Set:
		for _, p := range n.Pairs {
			if k := p.Key.Text(); inRange(k, lo, hi) {
				if !emit(c.child(p.Key, Ref{Key: k}, ypath.Key(k))) {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// sliceBounds clamps lo:hi to [0, n]. Equal bounds select the single
// element at that position.
func sliceBounds(s ypath.Slice, n int) (int, int, error) {
	lo, hi := 0, n
	if s.Lo != "" {
		v, err := strconv.Atoi(s.Lo)
		if err != nil {
			return 0, 0, err
		}
		lo = v
	}
	if s.Hi != "" {
		v, err := strconv.Atoi(s.Hi)
		if err != nil {
			return 0, 0, err
		}
		hi = v
	}

	single := s.Lo != "" && s.Hi != "" && lo == hi
	lo, hi = clamp(lo, n), clamp(hi, n)
	if single {
		hi = min(lo+1, n)
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi, nil
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

func inRange(k, lo, hi string) bool {
	return (lo == "" || k >= lo) && (hi == "" || k <= hi)
}

func (q *query) resolveAnchor(c *Coords, name string, emit func(*Coords) bool) bool {
	n := c.Node
	if n == nil {
		return true
	}

	switch n.Kind {
	case yamlnode.Sequence:
		for i, item := range n.Items {
			if item != nil && item.Anchor == name {
				if !emit(c.item(i)) {
					return false
				}
			}
		}
	case yamlnode.Mapping:
		for i, src := range n.Merge {
			if src.Anchor == name {
				if !emit(c.child(src, Ref{Index: i, Merge: true}, ypath.Anchor(name))) {
					return false
				}
			}
		}
		for p := range n.All() {
			if p.Key.Anchor == name || (p.Value != nil && p.Value.Anchor == name) {
				k := p.Key.Text()
				if !emit(c.child(p.Value, Ref{Key: k}, ypath.Key(k))) {
					return false
				}
			}
		}
	case yamlnode.Set:
		for _, p := range n.Pairs {
			if p.Key.Anchor == name {
				k := p.Key.Text()
				if !emit(c.child(p.Key, Ref{Key: k}, ypath.Key(k))) {
					return false
				}
			}
		}
	}
	return true
}
