package yamlnode

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// Load parses the first YAML document in data. Empty input yields the null
// document.
func Load(data []byte) (*Document, error) {
	file, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return NewDocument(nil), nil
	}

	l := &loader{anchors: make(map[string]*Node)}
	root, err := l.convert(file.Docs[0].Body)
	if err != nil {
		return nil, err
	}

	return NewDocument(root), nil
}

// LoadString is Load for string input.
func LoadString(data string) (*Document, error) {
	return Load([]byte(data))
}

type loader struct {
	anchors map[string]*Node
}

func (l *loader) convert(node ast.Node) (*Node, error) {
	switch n := node.(type) {
	case nil:
		return NewNull(), nil
	case *ast.DocumentNode:
		return l.convert(n.Body)
	case *ast.CommentGroupNode:
		return NewNull(), nil
	case *ast.AnchorNode:
		return l.anchor(n)
	case *ast.AliasNode:
		name := tokenText(n.Value)
		target, ok := l.anchors[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown alias *%s", ErrLoad, name)
		}
		return target, nil
	case *ast.TagNode:
		v, err := l.convert(n.Value)
		if err != nil {
			return nil, err
		}
		applyTag(v, n.Start.Value)
		return v, nil
	case *ast.NullNode:
		return withComment(&Node{Kind: Scalar, Type: NullType, Value: tokenText(n)}, n), nil
	case *ast.BoolNode:
		return withComment(&Node{Kind: Scalar, Type: BoolType, Value: tokenText(n)}, n), nil
	case *ast.IntegerNode:
		return withComment(&Node{Kind: Scalar, Type: IntType, Value: tokenText(n)}, n), nil
	case *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
		return withComment(&Node{Kind: Scalar, Type: FloatType, Value: tokenText(node)}, node), nil
	case *ast.StringNode:
		return withComment(stringScalar(n), n), nil
	case *ast.LiteralNode:
		s := &Node{Kind: Scalar, Type: StringType, Style: Literal}
		if strings.HasPrefix(n.Start.Value, ">") {
			s.Style = Folded
		}
		if n.Value != nil {
			s.Value = n.Value.Value
		}
		return withComment(s, n), nil
	case *ast.MappingKeyNode:
		return l.convert(n.Value)
	case *ast.MappingValueNode:
		m := &Node{Kind: Mapping}
		if err := l.addPair(m, n); err != nil {
			return nil, err
		}
		return m, nil
	case *ast.MappingNode:
		m := &Node{Kind: Mapping}
		if n.IsFlowStyle {
			m.Style = Flow
		}
		for _, mv := range n.Values {
			if err := l.addPair(m, mv); err != nil {
				return nil, err
			}
		}
		return withComment(m, n), nil
	case *ast.SequenceNode:
		s := &Node{Kind: Sequence, Items: make([]*Node, 0, len(n.Values))}
		if n.IsFlowStyle {
			s.Style = Flow
		}
		for _, item := range n.Values {
			v, err := l.convert(item)
			if err != nil {
				return nil, err
			}
			s.Items = append(s.Items, v)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unsupported node type %s", ErrLoad, node.Type())
	}
}

// anchor registers the owner before converting its value so that aliases
// nested inside it resolve to the same node.
func (l *loader) anchor(n *ast.AnchorNode) (*Node, error) {
	name := tokenText(n.Name)
	target := &Node{}
	l.anchors[name] = target

	v, err := l.convert(n.Value)
	if err != nil {
		return nil, err
	}
	*target = *v
	target.Anchor = name
	return target, nil
}

func (l *loader) addPair(m *Node, mv *ast.MappingValueNode) error {
	if _, ok := mv.Key.(*ast.MergeKeyNode); ok {
		src, err := l.convert(mv.Value)
		if err != nil {
			return err
		}
		switch src.Kind {
		case Mapping:
			m.Merge = append(m.Merge, src)
		case Sequence:
			for _, item := range src.Items {
				if item.Kind != Mapping {
					return fmt.Errorf("%w: merge key sources must be mappings", ErrLoad)
				}
				m.Merge = append(m.Merge, item)
			}
		default:
			return fmt.Errorf("%w: merge key sources must be mappings", ErrLoad)
		}
		return nil
	}

	key, err := l.convert(mv.Key)
	if err != nil {
		return err
	}
	value, err := l.convert(mv.Value)
	if err != nil {
		return err
	}

	pair := &Pair{Key: key, Value: value}
	if c := mv.GetComment(); c != nil {
		pair.Comment = c.String()
	}
	m.Pairs = append(m.Pairs, pair)
	return nil
}

func stringScalar(n *ast.StringNode) *Node {
	s := &Node{Kind: Scalar, Type: StringType, Value: n.Value}
	tk := n.GetToken()
	if tk == nil {
		return s
	}
	switch tk.Type {
	case token.SingleQuoteType:
		s.Style = SingleQuoted
	case token.DoubleQuoteType:
		s.Style = DoubleQuoted
	default:
		if InferType(n.Value) == TimestampType {
			s.Type = TimestampType
		}
	}
	return s
}

func tokenText(n ast.Node) string {
	if n == nil {
		return ""
	}
	if tk := n.GetToken(); tk != nil {
		return tk.Value
	}
	return ""
}

func withComment(n *Node, src ast.Node) *Node {
	if c := src.GetComment(); c != nil {
		n.Comment = c.String()
	}
	return n
}

func applyTag(n *Node, tag string) {
	switch tag {
	case "!!set":
		if n.Kind == Mapping {
			n.Kind = Set
			for _, p := range n.Pairs {
				p.Value = nil
			}
		}
	case "!!str":
		n.Type = StringType
	case "!!int":
		n.Type = IntType
	case "!!float":
		n.Type = FloatType
	case "!!bool":
		n.Type = BoolType
	case "!!null":
		n.Type = NullType
	case "!!timestamp":
		n.Type = TimestampType
	}
	n.Tag = tag
}
