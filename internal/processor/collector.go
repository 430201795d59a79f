package processor

import (
	"slices"
	"strings"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// collectorEnd returns the end of the collector run starting at i.
func collectorEnd(segs []ypath.Segment, i int) int {
	j := i + 1
	for j < len(segs) && segs[j].Type == ypath.CollectorSegment && segs[j].Collector.Operator != ypath.NoOperator {
		j++
	}
	return j
}

// collect folds a run of collectors left to right into one read-only
// virtual list whose members keep their own lineage.
func (q *query) collect(c *Coords, segs []ypath.Segment) (*Coords, error) {
	var acc []*Coords
	for i := range segs {
		seg := &segs[i]
		found, err := q.subquery(c, seg.Collector.Expression, q.path.Separator())
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, q.errorf(seg, ErrNotFound, "Collector sub-path %q does not match any nodes", seg.Collector.Expression)
		}

		switch seg.Collector.Operator {
		case ypath.NoOperator:
			if len(found) == 1 && isList(found[0].Node) {
				acc = listMembers(found[0])
			} else {
				acc = found
			}
		case ypath.Addition:
			for _, f := range found {
				if isList(f.Node) {
					acc = append(acc, listMembers(f)...)
				} else {
					acc = append(acc, f)
				}
			}
		case ypath.Subtraction, ypath.Intersection:
			rhs := flatten(found)
			keep := seg.Collector.Operator == ypath.Intersection
			acc = slices.DeleteFunc(acc, func(a *Coords) bool {
				hit := slices.ContainsFunc(rhs, func(r *yamlnode.Node) bool { return yamlnode.Equal(a.Node, r) })
				return hit != keep
			})
		}
		q.p.log.Debug("collected nodes", "expression", seg.Collector.Expression, "operator", seg.Collector.Operator.String(), "total", len(acc))
	}

	list := &yamlnode.Node{Kind: yamlnode.Sequence, Virtual: true}
	members := make([]*Coords, len(acc))
	for i, a := range acc {
		m := a.copy()
		m.readOnly = true
		members[i] = m
		list.Items = append(list.Items, m.Node)
	}

	path := c.Path
	for _, seg := range segs {
		path = path.Append(seg)
	}
	return &Coords{
		Node:     list,
		Parent:   c.Node,
		Path:     path,
		Segment:  segs[0],
		up:       c,
		members:  members,
		readOnly: true,
	}, nil
}

// subquery evaluates text strictly relative to c. Text starting with '/'
// is read with the forward-slash separator.
func (q *query) subquery(c *Coords, text string, sep ypath.Separator) ([]*Coords, error) {
	if strings.HasPrefix(text, "/") {
		sep = ypath.FSlash
	}
	path, err := q.p.parse(text, sep)
	if err != nil {
		return nil, err
	}

	sq := q.p.newQuery(path, false, nil)
	if err := sq.checkTraversals(); err != nil {
		return nil, err
	}

	var (
		found []*Coords
		ferr  error
	)
	sq.run(c.copy(), 0, func(m *Coords, err error) bool {
		if err != nil {
			ferr = err
			return false
		}
		found = append(found, m)
		return true
	})
	return found, ferr
}

func isList(n *yamlnode.Node) bool {
	return n != nil && n.Kind == yamlnode.Sequence
}

func listMembers(c *Coords) []*Coords {
	out := make([]*Coords, 0, len(c.Node.Items))
	for i := range c.Node.Items {
		out = append(out, c.item(i))
	}
	return out
}

// flatten lists the nodes a right-hand operand contributes: list and set
// elements, or the node itself.
func flatten(found []*Coords) []*yamlnode.Node {
	var out []*yamlnode.Node
	for _, f := range found {
		switch {
		case isList(f.Node):
			out = append(out, f.Node.Items...)
		case f.Node != nil && f.Node.Kind == yamlnode.Set:
			for _, p := range f.Node.Pairs {
				out = append(out, p.Key)
			}
		default:
			out = append(out, f.Node)
		}
	}
	return out
}
