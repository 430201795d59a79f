package processor

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

func (q *query) keyword(c *Coords, seg *ypath.Segment, emit func(*Coords) bool) (bool, error) {
	terms := seg.Keyword
	switch terms.Keyword {
	case ypath.HasChild:
		return q.hasChild(c, seg, emit)
	case ypath.Name:
		return q.name(c, emit), nil
	case ypath.Parent:
		return q.parent(c, seg, emit)
	case ypath.Max, ypath.Min:
		return q.extremum(c, seg, emit)
	case ypath.Unique, ypath.Distinct:
		return q.uniqueness(c, seg, emit)
	}
	return false, q.errorf(seg, ypath.ErrMalformedExpression, "unsupported keyword %s", terms.Keyword)
}

func param(terms ypath.KeywordTerms) string {
	if len(terms.Params) == 0 {
		return ""
	}
	return terms.Params[0]
}

func (q *query) hasChild(c *Coords, seg *ypath.Segment, emit func(*Coords) bool) (bool, error) {
	terms := seg.Keyword
	child := param(terms)
	anchor, byAnchor := strings.CutPrefix(child, "&")
	n := c.Node

	var present bool
	switch {
	case n.IsNull():
		present = false

	case n.Kind == yamlnode.Mapping:
		if byAnchor {
			for _, src := range n.Merge {
				present = present || src.Anchor == anchor
			}
			for p := range n.All() {
				present = present || p.Key.Anchor == anchor || (p.Value != nil && p.Value.Anchor == anchor)
			}
		} else {
			present = n.Has(child)
		}

	case n.Kind == yamlnode.Set:
		for _, p := range n.Pairs {
			if (byAnchor && p.Key.Anchor == anchor) || (!byAnchor && p.Key.Text() == child) {
				present = true
			}
		}

	case n.Kind == yamlnode.Sequence:
		if isArrayOfHashes(n, false) {
			for i := range n.Items {
				if cont, err := q.hasChild(c.item(i), seg, emit); !cont || err != nil {
					return cont, err
				}
			}
			return true, nil
		}
		for _, item := range n.Items {
			if byAnchor {
				present = present || (item != nil && item.Anchor == anchor)
			} else {
				present = present || (item.IsScalar() && item.Text() == child)
			}
		}

	default:
		return false, q.errorf(seg, ErrStructureMismatch, "Scalar data at %s has no child nodes", displayPath(c.Path))
	}

	if present != terms.Inverted {
		return emit(c.copy()), nil
	}
	return true, nil
}

// name yields a synthetic scalar holding the key or index of c.
func (q *query) name(c *Coords, emit func(*Coords) bool) bool {
	if c.IsRoot() {
		return true
	}

	var node *yamlnode.Node
	if c.Parent != nil && c.Parent.Kind == yamlnode.Sequence {
		node = yamlnode.NewInt(int64(c.ParentRef.Index))
	} else {
		node = yamlnode.NewString(c.ParentRef.Key)
	}

	cc := c.copy()
	cc.Node = node
	cc.members = nil
	cc.name = true
	return emit(cc)
}

func (q *query) parent(c *Coords, seg *ypath.Segment, emit func(*Coords) bool) (bool, error) {
	steps := 1
	if p := param(seg.Keyword); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return false, q.errorf(seg, ypath.ErrMalformedExpression, "Invalid parameter passed to parent, %s; must be unset or an unsigned integer", p)
		}
		steps = v
	}

	if depth := c.Depth(); steps > depth {
		return false, q.errorf(seg, ErrStructureMismatch,
			"Parent steps exceeds ancestry depth; cannot parent(%d) higher than the document root when %d are available", steps, depth)
	}

	target := c
	for range steps {
		target = target.up
	}
	out := target.copy()
	out.readOnly = out.readOnly || c.readOnly
	return emit(out), nil
}

// participant is one candidate of a max, min, unique or distinct scan.
type participant struct {
	coords *Coords
	value  *yamlnode.Node
	order  int
}

// participants gathers the values compared by keyword scans. Nodes that
// cannot take part are returned as the discarded set.
func (q *query) participants(c *Coords, seg *ypath.Segment) (parts, discards []participant, err error) {
	attr := param(seg.Keyword)
	kw := seg.Keyword.Keyword
	n := c.Node
	order := 0
	add := func(list *[]participant, cc *Coords, v *yamlnode.Node) {
		*list = append(*list, participant{coords: cc, value: v, order: order})
		order++
	}

	switch n.Kind {
	case yamlnode.Sequence:
		aoh := isArrayOfHashes(n, false)
		if aoh && attr == "" {
			return nil, nil, q.errorf(seg, ypath.ErrMalformedExpression,
				"The %s([NAME]) Search Keyword requires a key name to scan when evaluating an Array-of-Hashes", kw)
		}
		if !aoh && attr != "" {
			return nil, nil, q.errorf(seg, ypath.ErrMalformedExpression,
				"The %s([NAME]) Search Keyword cannot utilize a key name when comparing Array/sequence/list elements", kw)
		}
		for i := range n.Items {
			item := c.item(i)
			if attr == "" {
				add(&parts, item, item.Node)
				continue
			}
			if v, ok := item.Node.Lookup(attr); ok {
				add(&parts, item, v)
			} else {
				add(&discards, item, nil)
			}
		}

	case yamlnode.Mapping:
		for child := range c.children {
			switch {
			case attr == "":
				add(&parts, child, child.Node)
			case child.Node != nil && child.Node.Kind == yamlnode.Mapping && child.Node.Has(attr):
				v, _ := child.Node.Lookup(attr)
				add(&parts, child, v)
			case child.Node.IsScalar() && n.Has(attr):
				return nil, nil, q.errorf(seg, ErrStructureMismatch,
					"The %s([NAME]) Search Keyword operates against collections of data which share a common attribute yet there is only a single node to consider; did you mean to evaluate the parent of %s", kw, displayPath(c.Path))
			default:
				add(&discards, child, nil)
			}
		}

	case yamlnode.Set:
		for child := range c.children {
			add(&parts, child, child.Node)
		}
	}
	return parts, discards, nil
}

func (q *query) extremum(c *Coords, seg *ypath.Segment, emit func(*Coords) bool) (bool, error) {
	terms := seg.Keyword
	if c.Node.IsScalar() {
		if terms.Inverted || c.Node == nil {
			return true, nil
		}
		return emit(c.copy()), nil
	}

	parts, discards, err := q.participants(c, seg)
	if err != nil {
		return false, err
	}

	numeric := slices.ContainsFunc(parts, func(p participant) bool { return p.value.IsNumeric() })
	want := 1
	if terms.Keyword == ypath.Min {
		want = -1
	}

	var best []participant
	for _, p := range parts {
		if p.value.IsNull() || !p.value.IsScalar() || (numeric && !p.value.IsNumeric()) {
			discards = append(discards, p)
			continue
		}
		if len(best) == 0 {
			best = append(best, p)
			continue
		}
		switch compareValues(p.value, best[0].value, numeric) {
		case want:
			discards = append(discards, best...)
			best = []participant{p}
		case 0:
			best = append(best, p)
		default:
			discards = append(discards, p)
		}
	}

	selected := best
	if terms.Inverted {
		selected = discards
	}
	slices.SortFunc(selected, func(a, b participant) int { return cmp.Compare(a.order, b.order) })
	for _, p := range selected {
		if !emit(p.coords) {
			return false, nil
		}
	}
	return true, nil
}

func compareValues(a, b *yamlnode.Node, numeric bool) int {
	if numeric {
		av, _ := a.Float()
		bv, _ := b.Float()
		return cmp.Compare(av, bv)
	}
	return strings.Compare(a.Text(), b.Text())
}

// uniqueness implements unique() and distinct().
func (q *query) uniqueness(c *Coords, seg *ypath.Segment, emit func(*Coords) bool) (bool, error) {
	terms := seg.Keyword
	if c.Node.IsScalar() {
		if terms.Inverted || c.Node == nil {
			return true, nil
		}
		return emit(c.copy()), nil
	}

	parts, _, err := q.participants(c, seg)
	if err != nil {
		return false, err
	}

	for i, p := range parts {
		occurrences, first := 0, true
		for j, o := range parts {
			if yamlnode.Equal(p.value, o.value) {
				occurrences++
				if j < i {
					first = false
				}
			}
		}

		var keep bool
		if terms.Keyword == ypath.Unique {
			keep = occurrences == 1
		} else {
			keep = first
		}
		if keep != terms.Inverted && !emit(p.coords) {
			return false, nil
		}
	}
	return true, nil
}
