package processor

import (
	"errors"

	"github.com/jacoelho/yamlpath/internal/search"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

const selfAttribute = "."

// search evaluates a [attr OP term] segment against c.
func (q *query) search(c *Coords, seg *ypath.Segment, lists bool, emit func(*Coords) bool) (bool, error) {
	terms := seg.Search
	test := func(haystack *yamlnode.Node) (bool, error) {
		return search.Match(terms.Method, terms.Term, haystack)
	}
	n := c.Node

	switch {
	case n != nil && n.Kind == yamlnode.Sequence:
		if !lists {
			return true, nil
		}
		aoh := isArrayOfHashes(n, true)
		for i := range n.Items {
			elem := c.item(i)
			var matched bool
			var err error
			switch {
			case terms.Attribute == selfAttribute:
				if aoh && elem.Node.Has(terms.Term) {
					matched = true
				} else {
					matched, err = test(elem.Node)
				}
			case elem.Node != nil && elem.Node.Kind == yamlnode.Mapping && elem.Node.Has(terms.Attribute):
				v, _ := elem.Node.Lookup(terms.Attribute)
				matched, err = test(v)
			default:
				matched, err = q.searchDescendants(elem, terms, test, true)
			}
			if err != nil {
				return false, q.wrap(seg, err)
			}
			if matched != terms.Inverted && !emit(elem) {
				return false, nil
			}
		}

	case n != nil && n.Kind == yamlnode.Mapping:
		if terms.Attribute == selfAttribute {
			for p := range n.All() {
				matched, err := test(p.Key)
				if err != nil {
					return false, q.wrap(seg, err)
				}
				if matched != terms.Inverted {
					k := p.Key.Text()
					if !emit(c.child(p.Value, Ref{Key: k}, ypath.Key(k))) {
						return false, nil
					}
				}
			}
			return true, nil
		}

		if v, ok := n.Lookup(terms.Attribute); ok {
			matched, err := test(v)
			if err != nil {
				return false, q.wrap(seg, err)
			}
			if matched != terms.Inverted {
				return emit(c.child(v, Ref{Key: terms.Attribute}, ypath.Key(terms.Attribute))), nil
			}
			return true, nil
		}

		// Attributes that are not keys are paths to descendants.
		matched, err := q.searchDescendants(c, terms, test, false)
		if err != nil {
			return false, q.wrap(seg, err)
		}
		if matched != terms.Inverted {
			return emit(c.copy()), nil
		}

	case n != nil && n.Kind == yamlnode.Set:
		for _, p := range n.Pairs {
			matched, err := test(p.Key)
			if err != nil {
				return false, q.wrap(seg, err)
			}
			if matched != terms.Inverted {
				k := p.Key.Text()
				if !emit(c.child(p.Key, Ref{Key: k}, ypath.Key(k))) {
					return false, nil
				}
			}
		}

	default:
		matched, err := test(n)
		if err != nil {
			return false, q.wrap(seg, err)
		}
		if matched != terms.Inverted {
			return emit(c.copy()), nil
		}
	}
	return true, nil
}

// searchDescendants evaluates the search attribute as a path below c. List
// elements are judged by their first descendant only; mappings by the first
// descendant that decides the search.
func (q *query) searchDescendants(c *Coords, terms ypath.SearchTerms, test func(*yamlnode.Node) (bool, error), firstOnly bool) (bool, error) {
	found, err := q.subquery(c, terms.Attribute, q.path.Separator())
	if err != nil {
		if errors.Is(err, ErrStructureMismatch) {
			return false, nil
		}
		return false, err
	}
	if firstOnly && len(found) > 1 {
		found = found[:1]
	}

	matched := false
	for _, d := range found {
		matched, err = test(d.Node)
		if err != nil {
			return false, err
		}
		if matched != terms.Inverted {
			break
		}
	}
	return matched, nil
}

func (q *query) wrap(seg *ypath.Segment, err error) error {
	var pe *PathError
	var ee *ypath.ExpressionError
	if errors.As(err, &pe) || errors.As(err, &ee) {
		return err
	}
	return q.errorf(seg, ypath.ErrMalformedExpression, "%v", err)
}

// isArrayOfHashes reports whether every element of a non-empty sequence is
// a mapping; nulls are tolerated when acceptNulls is set.
func isArrayOfHashes(n *yamlnode.Node, acceptNulls bool) bool {
	if n == nil || n.Kind != yamlnode.Sequence || len(n.Items) == 0 {
		return false
	}
	for _, item := range n.Items {
		if item != nil && item.Kind == yamlnode.Mapping {
			continue
		}
		if acceptNulls && item.IsNull() {
			continue
		}
		return false
	}
	return true
}
