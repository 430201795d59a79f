package processor

import (
	"strconv"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// create builds the node segment i failed to find below c and continues
// evaluation from it.
func (q *query) create(c *Coords, i int, yield func(*Coords, error) bool) bool {
	seg := &q.segs[i]
	if !descends(seg.Type) {
		return true
	}
	if c.readOnly {
		return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot write to Collector results"))
	}

	n := c.Node
	if n != nil && n.Virtual {
		return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add %s subreference to sliced data", seg.Type))
	}
	if n.IsNull() {
		container := containerFor(seg)
		if n != nil {
			container.Anchor = n.Anchor
			if err := q.p.replace(q.path, n, container); err != nil {
				return q.fail(yield, err)
			}
		} else if err := q.p.setAt(c, container); err != nil {
			return q.fail(yield, err)
		}
		c = c.copy()
		c.Node = container
		n = container
	}

	var child *Coords
	switch n.Kind {
	case yamlnode.Sequence:
		switch seg.Type {
		case ypath.AnchorSegment:
			elem := q.build(i + 1)
			elem.Anchor = seg.Key
			n.Items = append(n.Items, elem)
			q.p.doc.Reindex()
			child = c.item(len(n.Items) - 1)
		case ypath.KeySegment, ypath.IndexSegment:
			idx := seg.Index
			if seg.Type == ypath.KeySegment {
				v, err := strconv.Atoi(seg.Key)
				if err != nil {
					return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add non-integer %s subreference to lists", seg.Type))
				}
				idx = v
			}
			if idx < 0 {
				return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add negative index %d subreference to lists", idx))
			}
			for len(n.Items) < idx {
				n.Items = append(n.Items, yamlnode.NewNull())
			}
			n.Items = append(n.Items, q.build(i+1))
			child = c.item(idx)
		default:
			return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add %s subreference to lists", seg.Type))
		}

	case yamlnode.Mapping:
		switch seg.Type {
		case ypath.KeySegment:
			v := q.build(i + 1)
			n.Put(seg.Key, v)
			child = c.child(v, Ref{Key: seg.Key}, ypath.Key(seg.Key))
		case ypath.AnchorSegment:
			return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add ANCHOR keys"))
		default:
			return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add %s subreference to dictionaries", seg.Type))
		}

	case yamlnode.Set:
		if seg.Type != ypath.KeySegment {
			return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add %s subreference to sets", seg.Type))
		}
		if i+1 < len(q.segs) {
			return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Set members cannot hold subreferences"))
		}
		member := yamlnode.NewScalar(seg.Key)
		n.Pairs = append(n.Pairs, &yamlnode.Pair{Key: member})
		child = c.child(member, Ref{Key: seg.Key}, ypath.Key(seg.Key))

	default:
		return q.fail(yield, q.errorf(seg, ErrStructureMismatch, "Cannot add %s subreference to scalars", seg.Type))
	}

	q.p.log.Debug("created missing node", "path", child.Path.String(), "kind", child.Node.Kind.String())
	child.Segment = *seg
	return q.run(child, i+1, yield)
}

// build creates the node that lets segment j be satisfied, or the
// terminal value when no segment remains.
func (q *query) build(j int) *yamlnode.Node {
	if j >= len(q.segs) {
		if q.value == nil {
			return yamlnode.NewNull()
		}
		return q.value.Clone()
	}
	return containerFor(&q.segs[j])
}

func containerFor(seg *ypath.Segment) *yamlnode.Node {
	switch seg.Type {
	case ypath.IndexSegment, ypath.SliceSegment, ypath.AnchorSegment:
		return yamlnode.NewSequence()
	}
	return yamlnode.NewMapping()
}
