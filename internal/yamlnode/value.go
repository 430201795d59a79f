package yamlnode

import (
	"fmt"
	"maps"
	"slices"
)

// Interface projects n onto plain Go values: map[string]any, []any,
// float64, bool, string and nil. Numbers become float64 to match what
// encoding/json produces. Self-referencing nodes are cut off as nil.
func Interface(n *Node) any {
	return project(n, map[*Node]bool{})
}

func project(n *Node, active map[*Node]bool) any {
	if n == nil {
		return nil
	}
	if active[n] {
		return nil
	}

	switch n.Kind {
	case Mapping:
		active[n] = true
		defer delete(active, n)
		out := make(map[string]any, len(n.Pairs))
		for p := range n.All() {
			out[p.Key.Text()] = project(p.Value, active)
		}
		return out
	case Sequence:
		active[n] = true
		defer delete(active, n)
		out := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			out = append(out, project(item, active))
		}
		return out
	case Set:
		out := make([]any, 0, len(n.Pairs))
		for _, p := range n.Pairs {
			out = append(out, project(p.Key, active))
		}
		return out
	}

	switch n.Type {
	case NullType:
		return nil
	case BoolType:
		b, _ := n.Bool()
		return b
	case IntType, FloatType:
		if f, ok := n.Float(); ok {
			return f
		}
	}
	return n.Value
}

// FromInterface builds a document graph from plain Go values.
func FromInterface(v any) *Node {
	switch x := v.(type) {
	case nil:
		return NewNull()
	case *Node:
		return x
	case string:
		return NewString(x)
	case bool:
		return &Node{Kind: Scalar, Type: BoolType, Value: boolText(x)}
	case int:
		return NewInt(int64(x))
	case int64:
		return NewInt(x)
	case float64:
		if x == float64(int64(x)) && x < 1e15 && x > -1e15 {
			return NewInt(int64(x))
		}
		return &Node{Kind: Scalar, Type: FloatType, Value: renderFloat(x)}
	case []any:
		s := NewSequence()
		for _, item := range x {
			s.Items = append(s.Items, FromInterface(item))
		}
		return s
	case map[string]any:
		m := NewMapping()
		for _, k := range slices.Sorted(maps.Keys(x)) {
			m.Put(k, FromInterface(x[k]))
		}
		return m
	default:
		return NewString(fmt.Sprint(x))
	}
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
