package yamlnode

import (
	"iter"
	"strconv"
	"strings"
)

// Kind is the structural kind of a document node.
type Kind uint8

const (
	Scalar Kind = iota + 1
	Mapping
	Sequence
	Set
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "Scalar"
	case Mapping:
		return "Mapping"
	case Sequence:
		return "Sequence"
	case Set:
		return "Set"
	default:
		return "Unknown"
	}
}

// ScalarType is the resolved YAML type of a scalar node.
type ScalarType uint8

const (
	StringType ScalarType = iota
	NullType
	BoolType
	IntType
	FloatType
	TimestampType
)

// Style controls how a node is rendered.
type Style uint8

const (
	Plain Style = iota
	SingleQuoted
	DoubleQuoted
	Literal
	Folded
	Flow
)

// Pair is one mapping entry. Set members have a nil Value.
type Pair struct {
	Key   *Node
	Value *Node

	// Comment holds the comment lines preceding the entry.
	Comment string
}

// Node is one vertex of a document graph. Aliases of an anchored node hold
// the same *Node, so identity comparison distinguishes an alias from a copy.
type Node struct {
	Kind  Kind
	Type  ScalarType
	Value string
	Style Style

	Tag    string
	Anchor string

	// Pairs holds Mapping entries and Set members in declaration order.
	Pairs []*Pair
	// Items holds Sequence elements.
	Items []*Node
	// Merge lists the mappings imported through YAML merge keys, in order.
	Merge []*Node

	// Comment is the trailing comment of the node's line.
	Comment string

	// Virtual marks synthetic lists produced by collectors.
	Virtual bool
}

// NewString creates a plain string scalar.
func NewString(value string) *Node {
	return &Node{Kind: Scalar, Type: StringType, Value: value}
}

// NewNull creates a null scalar.
func NewNull() *Node {
	return &Node{Kind: Scalar, Type: NullType, Value: "null"}
}

// NewInt creates an integer scalar.
func NewInt(value int64) *Node {
	return &Node{Kind: Scalar, Type: IntType, Value: strconv.FormatInt(value, 10)}
}

// NewMapping creates an empty block mapping.
func NewMapping() *Node {
	return &Node{Kind: Mapping}
}

// NewSequence creates a block sequence holding items.
func NewSequence(items ...*Node) *Node {
	return &Node{Kind: Sequence, Items: items}
}

// NewScalar infers the scalar type of a plain value.
func NewScalar(value string) *Node {
	return &Node{Kind: Scalar, Type: InferType(value), Value: value}
}

func (n *Node) IsNull() bool {
	return n == nil || (n.Kind == Scalar && n.Type == NullType)
}

func (n *Node) IsScalar() bool {
	return n == nil || n.Kind == Scalar
}

func (n *Node) IsNumeric() bool {
	return n != nil && n.Kind == Scalar && (n.Type == IntType || n.Type == FloatType)
}

// Text is the string form used for comparisons and key names.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.Value
}

// Int parses an integer scalar, accepting YAML 1.2 prefixes and underscores.
func (n *Node) Int() (int64, bool) {
	if n == nil || n.Kind != Scalar {
		return 0, false
	}
	return ParseInt(n.Value)
}

// Float parses a numeric scalar as a float64.
func (n *Node) Float() (float64, bool) {
	if n == nil || n.Kind != Scalar {
		return 0, false
	}
	if i, ok := ParseInt(n.Value); ok {
		return float64(i), true
	}
	return ParseFloat(n.Value)
}

// Bool parses a boolean scalar.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.Kind != Scalar {
		return false, false
	}
	return ParseBool(n.Value)
}

// Len is the number of direct children.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case Mapping, Set:
		return len(n.Pairs)
	case Sequence:
		return len(n.Items)
	default:
		return 0
	}
}

// Lookup returns the value under key, consulting merge sources after the
// locally declared keys.
func (n *Node) Lookup(key string) (*Node, bool) {
	if n == nil || n.Kind != Mapping {
		return nil, false
	}
	for p := range n.All() {
		if p.Key.Text() == key {
			return p.Value, true
		}
	}
	return nil, false
}

// LocalIndex returns the ordinal of a locally declared key, or -1.
func (n *Node) LocalIndex(key string) int {
	if n == nil {
		return -1
	}
	for i, p := range n.Pairs {
		if p.Key.Text() == key {
			return i
		}
	}
	return -1
}

// Has reports whether the mapping or set holds key.
func (n *Node) Has(key string) bool {
	if n == nil {
		return false
	}
	if n.Kind == Set {
		return n.LocalIndex(key) >= 0
	}
	_, ok := n.Lookup(key)
	return ok
}

// Put sets key to value, replacing a local entry in place or appending.
func (n *Node) Put(key string, value *Node) {
	if i := n.LocalIndex(key); i >= 0 {
		n.Pairs[i].Value = value
		return
	}
	n.Pairs = append(n.Pairs, &Pair{Key: NewString(key), Value: value})
}

// Remove deletes a locally declared key.
func (n *Node) Remove(key string) bool {
	i := n.LocalIndex(key)
	if i < 0 {
		return false
	}
	n.Pairs = append(n.Pairs[:i], n.Pairs[i+1:]...)
	return true
}

// All yields the effective entries of a mapping: local pairs first, then
// merge-imported pairs whose keys are not already present.
func (n *Node) All() iter.Seq[*Pair] {
	return func(yield func(*Pair) bool) {
		if n == nil {
			return
		}
		seen := make(map[string]struct{}, len(n.Pairs))
		visited := map[*Node]struct{}{}
		var walk func(m *Node) bool
		walk = func(m *Node) bool {
			if _, ok := visited[m]; ok {
				return true
			}
			visited[m] = struct{}{}
			for _, p := range m.Pairs {
				k := p.Key.Text()
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				if !yield(p) {
					return false
				}
			}
			for _, src := range m.Merge {
				if src != nil && src.Kind == Mapping && !walk(src) {
					return false
				}
			}
			return true
		}
		walk(n)
	}
}

// Imported reports whether key is visible only through a merge source.
func (n *Node) Imported(key string) bool {
	if n.LocalIndex(key) >= 0 {
		return false
	}
	_, ok := n.Lookup(key)
	return ok
}

// Children yields every direct child value in document order.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if n == nil {
			return
		}
		switch n.Kind {
		case Mapping:
			for p := range n.All() {
				if !yield(p.Value) {
					return
				}
			}
		case Sequence:
			for _, item := range n.Items {
				if !yield(item) {
					return
				}
			}
		case Set:
			for _, p := range n.Pairs {
				if !yield(p.Key) {
					return
				}
			}
		}
	}
}

// Clone returns a shallow copy of a scalar, or a structural copy of a
// collection whose children are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Pairs != nil {
		c.Pairs = make([]*Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			c.Pairs[i] = &Pair{Key: p.Key, Value: p.Value}
		}
	}
	if n.Items != nil {
		c.Items = append([]*Node(nil), n.Items...)
	}
	if n.Merge != nil {
		c.Merge = append([]*Node(nil), n.Merge...)
	}
	return &c
}

func (n *Node) String() string {
	if n == nil {
		return "null"
	}
	if n.Kind == Scalar {
		return n.Value
	}
	out, err := Marshal(n)
	if err != nil {
		return n.Kind.String()
	}
	return strings.TrimRight(string(out), "\n")
}
