package processor

import (
	"errors"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// traverse evaluates a ** segment at position i.
func (q *query) traverse(c *Coords, i int, yield func(*Coords, error) bool) bool {
	seg := q.segs[i]
	if i+1 == len(q.segs) {
		return walk(c, seg, func(n *Coords) bool {
			return yield(n, nil)
		})
	}

	next := &q.segs[i+1]
	switch next.Type {
	case ypath.CollectorSegment, ypath.MatchAllSegment:
		return walk(c, seg, func(n *Coords) bool {
			return q.run(n, i+1, yield)
		})
	}

	// The following segment is applied in place, without the list
	// pass-through, so a list and its elements do not both answer for
	// the same descendant.
	var err error
	cont := walk(c, seg, func(n *Coords) bool {
		ok, rerr := q.resolve(n, next, false, func(m *Coords) bool {
			return q.run(m, i+2, yield)
		})
		if rerr != nil {
			if errors.Is(rerr, ErrStructureMismatch) {
				return true
			}
			err = rerr
			return false
		}
		return ok
	})
	if err != nil {
		return q.fail(yield, err)
	}
	return cont
}

// walk visits c and then every descendant in pre-order. Each distinct node
// is visited once, which also stops at self-referencing anchors.
func walk(c *Coords, seg ypath.Segment, fn func(*Coords) bool) bool {
	visited := map[*yamlnode.Node]struct{}{}
	var visit func(n *Coords) bool
	visit = func(n *Coords) bool {
		if n.Node != nil {
			if _, ok := visited[n.Node]; ok {
				return true
			}
			visited[n.Node] = struct{}{}
		}
		n.Segment = seg
		if !fn(n) {
			return false
		}
		for child := range n.children {
			if !visit(child) {
				return false
			}
		}
		return true
	}
	return visit(c.copy())
}
