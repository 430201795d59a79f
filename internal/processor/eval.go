package processor

import (
	"errors"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// query is one evaluation of a parsed path against a document.
type query struct {
	p    *Processor
	path ypath.Path
	segs []ypath.Segment

	// ensure creates missing nodes instead of yielding nothing.
	ensure bool
	// value seeds the terminal node of created paths.
	value *yamlnode.Node
}

func (p *Processor) newQuery(path ypath.Path, ensure bool, value *yamlnode.Node) *query {
	return &query{p: p, path: path, segs: path.Segments(), ensure: ensure, value: value}
}

func (q *query) errorf(seg *ypath.Segment, kind error, format string, args ...any) error {
	return pathError(q.path, seg, kind, format, args...)
}

func (q *query) fail(yield func(*Coords, error) bool, err error) bool {
	yield(nil, err)
	return false
}

// checkTraversals rejects adjacent deep traversals before any node is
// visited.
func (q *query) checkTraversals() error {
	for i := 1; i < len(q.segs); i++ {
		if q.segs[i].Type == ypath.TraverseSegment && q.segs[i-1].Type == ypath.TraverseSegment {
			return q.errorf(&q.segs[i], ErrRecursion,
				"Repeating traversals are not allowed because they cause recursion which leads to excessive CPU and RAM consumption while yielding no additional useful data")
		}
	}
	return nil
}

// run applies segment i onwards to c, handing every final match to yield.
// It reports false once evaluation must stop.
func (q *query) run(c *Coords, i int, yield func(*Coords, error) bool) bool {
	if i == len(q.segs) {
		return yield(c, nil)
	}

	seg := &q.segs[i]
	switch seg.Type {
	case ypath.CollectorSegment:
		end := collectorEnd(q.segs, i)
		list, err := q.collect(c, q.segs[i:end])
		if err != nil {
			return q.fail(yield, err)
		}
		return q.run(list, end, yield)
	case ypath.TraverseSegment:
		return q.traverse(c, i, yield)
	case ypath.MatchAllSegment:
		return q.matchAll(c, i, yield)
	}

	matched := false
	cont, err := q.resolve(c, seg, true, func(child *Coords) bool {
		matched = true
		return q.run(child, i+1, yield)
	})
	if err != nil {
		return q.fail(yield, err)
	}
	if !cont || matched {
		return cont
	}

	if q.ensure {
		return q.create(c, i, yield)
	}
	if isScalar(c.Node) && descends(seg.Type) {
		return q.fail(yield, q.errorf(seg, ErrStructureMismatch,
			"Cannot apply a %s segment to scalar data at %s", seg.Type, displayPath(c.Path)))
	}
	return true
}

// matchAll yields every child; when segments follow, only the children
// the next segment matches are kept.
func (q *query) matchAll(c *Coords, i int, yield func(*Coords, error) bool) bool {
	last := i+1 == len(q.segs)
	for child := range c.children {
		child.Segment = q.segs[i]
		if !last && !q.probe(child, i+1) {
			continue
		}
		if !q.run(child, i+1, yield) {
			return false
		}
	}
	return true
}

// probe reports whether segment j matches at least once below c. Kind
// mismatches count as no match; other failures are left for run to raise.
func (q *query) probe(c *Coords, j int) bool {
	seg := &q.segs[j]
	switch seg.Type {
	case ypath.CollectorSegment, ypath.TraverseSegment, ypath.MatchAllSegment:
		return true
	}

	found := false
	_, err := q.resolve(c, seg, true, func(*Coords) bool {
		found = true
		return false
	})
	if err != nil {
		return !errors.Is(err, ErrStructureMismatch)
	}
	return found
}

func isScalar(n *yamlnode.Node) bool {
	return n != nil && n.Kind == yamlnode.Scalar && !n.IsNull()
}

func descends(t ypath.SegmentType) bool {
	switch t {
	case ypath.KeySegment, ypath.IndexSegment, ypath.SliceSegment, ypath.AnchorSegment:
		return true
	}
	return false
}

func displayPath(p ypath.Path) string {
	if p.IsRoot() {
		return "the document root"
	}
	return p.String()
}
