package yamlnode

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml/lexer"
	"github.com/goccy/go-yaml/token"
)

const indentWidth = 2

// Marshal renders n as a block-style YAML document. The first occurrence of
// an anchored node carries &name; later occurrences are written as *name.
func Marshal(n *Node) ([]byte, error) {
	e := &encoder{defined: map[*Node]bool{}, active: map[*Node]bool{}}
	if err := e.document(n); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// Encode writes d to w. The null document produces no output.
func Encode(w io.Writer, d *Document) error {
	if d.IsNull() {
		return nil
	}
	out, err := Marshal(d.Root)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

type encoder struct {
	buf     bytes.Buffer
	defined map[*Node]bool
	active  map[*Node]bool
	// nesting counts the flow collections being written.
	nesting int
}

func (e *encoder) document(n *Node) error {
	if n == nil {
		return nil
	}
	if isBlockCollection(n) && !e.defined[n] {
		if props := e.props(n); props != "" {
			e.line(0, props)
		}
		return e.block(n, 0)
	}
	if isBlockScalar(n) {
		e.blockScalar(0, e.props(n), n, 0)
		return nil
	}
	s, err := e.flow(n)
	if err != nil {
		return err
	}
	e.line(0, s)
	return nil
}

func (e *encoder) line(indent int, text string) {
	e.buf.WriteString(strings.Repeat(" ", indent))
	e.buf.WriteString(strings.TrimRight(text, " "))
	e.buf.WriteByte('\n')
}

func (e *encoder) comments(indent int, comment string) {
	for _, l := range strings.Split(strings.TrimRight(comment, "\n"), "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if !strings.HasPrefix(l, "#") {
			l = "# " + l
		}
		e.line(indent, l)
	}
}

// props renders the anchor and tag of n, marking the anchor as defined.
func (e *encoder) props(n *Node) string {
	var parts []string
	if n.Anchor != "" {
		parts = append(parts, "&"+n.Anchor)
		e.defined[n] = true
	}
	if tag := n.Tag; tag != "" {
		parts = append(parts, tag)
	} else if n.Kind == Set {
		parts = append(parts, "!!set")
	}
	return strings.Join(parts, " ")
}

func (e *encoder) block(n *Node, indent int) error {
	if e.active[n] {
		return fmt.Errorf("%w: cyclic reference without an anchor", ErrEmit)
	}
	e.active[n] = true
	defer delete(e.active, n)

	switch n.Kind {
	case Mapping:
		if len(n.Merge) > 0 {
			var src *Node
			if len(n.Merge) == 1 {
				src = n.Merge[0]
			} else {
				src = &Node{Kind: Sequence, Style: Flow, Items: n.Merge}
			}
			if err := e.entry(indent, "<<", src, ""); err != nil {
				return err
			}
		}
		for _, p := range n.Pairs {
			key, err := e.key(p.Key, false)
			if err != nil {
				return err
			}
			if err := e.entry(indent, key, p.Value, p.Comment); err != nil {
				return err
			}
		}
	case Set:
		for _, p := range n.Pairs {
			if p.Comment != "" {
				e.comments(indent, p.Comment)
			}
			key, err := e.key(p.Key, false)
			if err != nil {
				return err
			}
			e.line(indent, "? "+key)
		}
	case Sequence:
		for _, item := range n.Items {
			if err := e.item(indent, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *encoder) entry(indent int, key string, v *Node, comment string) error {
	if comment != "" {
		e.comments(indent, comment)
	}
	if v == nil {
		e.line(indent, key+":")
		return nil
	}
	head, inline := e.headComment(v)
	if head != "" {
		e.comments(indent, head)
	}

	switch {
	case isBlockScalar(v) && !e.defined[v]:
		e.blockScalar(indent, key+": "+e.props(v), v, indent+indentWidth)
	case isBlockCollection(v) && !e.defined[v]:
		props := e.props(v)
		if props != "" {
			props = " " + props
		}
		e.line(indent, key+":"+props)
		return e.block(v, indent+indentWidth)
	default:
		s, err := e.flow(v)
		if err != nil {
			return err
		}
		e.line(indent, key+": "+s+inline)
	}
	return nil
}

func (e *encoder) item(indent int, v *Node) error {
	head, inline := e.headComment(v)
	if head != "" {
		e.comments(indent, head)
	}

	switch {
	case isBlockScalar(v) && !e.defined[v]:
		e.blockScalar(indent, "- "+e.props(v), v, indent+indentWidth)
	case isBlockCollection(v) && !e.defined[v]:
		if props := e.props(v); props != "" {
			e.line(indent, "- "+props)
			return e.block(v, indent+indentWidth)
		}
		// Render the nested block, then hang its first line off the dash.
		sub := &encoder{defined: e.defined, active: e.active}
		if err := sub.block(v, indent+indentWidth); err != nil {
			return err
		}
		out := sub.buf.String()
		e.buf.WriteString(strings.Repeat(" ", indent))
		e.buf.WriteString("- ")
		e.buf.WriteString(strings.TrimPrefix(out, strings.Repeat(" ", indent+indentWidth)))
	default:
		s, err := e.flow(v)
		if err != nil {
			return err
		}
		e.line(indent, "- "+s+inline)
	}
	return nil
}

// headComment splits a node comment into lines written before the node and
// a trailing same-line comment.
func (e *encoder) headComment(n *Node) (string, string) {
	c := strings.TrimSpace(n.Comment)
	if c == "" {
		return "", ""
	}
	if strings.Contains(c, "\n") {
		return c, ""
	}
	if !strings.HasPrefix(c, "#") {
		c = "# " + c
	}
	return "", " " + c
}

func (e *encoder) blockScalar(indent int, prefix string, n *Node, bodyIndent int) {
	header := "|"
	if n.Style == Folded {
		header = ">"
	}
	value := n.Value
	switch {
	case strings.HasSuffix(value, "\n\n"):
		header += "+"
	case strings.HasSuffix(value, "\n"):
	default:
		header += "-"
	}
	if strings.HasPrefix(value, " ") {
		header = header[:1] + fmt.Sprint(indentWidth) + header[1:]
	}
	if prefix = strings.TrimRight(prefix, " "); prefix != "" {
		prefix += " "
	}
	e.line(indent, prefix+header)

	lines := strings.Split(strings.TrimRight(value, "\n"), "\n")
	for i, l := range lines {
		if i > 0 && n.Style == Folded {
			e.buf.WriteByte('\n')
		}
		if l == "" {
			e.buf.WriteByte('\n')
			continue
		}
		e.buf.WriteString(strings.Repeat(" ", bodyIndent))
		e.buf.WriteString(l)
		e.buf.WriteByte('\n')
	}
}

func (e *encoder) key(k *Node, inFlow bool) (string, error) {
	if k == nil {
		return "null", nil
	}
	if k.Kind == Scalar && k.Anchor == "" && k.Tag == "" {
		return scalarText(k, true, inFlow), nil
	}
	return e.flow(k)
}

// flow renders n on a single line.
func (e *encoder) flow(n *Node) (string, error) {
	if n == nil {
		return "null", nil
	}
	if n.Anchor != "" && e.defined[n] {
		return "*" + n.Anchor, nil
	}
	if e.active[n] {
		return "", fmt.Errorf("%w: cyclic reference without an anchor", ErrEmit)
	}

	props := e.props(n)
	if props != "" {
		props += " "
	}
	if n.Kind != Scalar {
		e.nesting++
		defer func() { e.nesting-- }()
	}

	switch n.Kind {
	case Mapping:
		e.active[n] = true
		defer delete(e.active, n)
		parts := make([]string, 0, len(n.Pairs)+1)
		if len(n.Merge) > 0 {
			srcs := make([]string, 0, len(n.Merge))
			for _, src := range n.Merge {
				s, err := e.flow(src)
				if err != nil {
					return "", err
				}
				srcs = append(srcs, s)
			}
			merge := srcs[0]
			if len(srcs) > 1 {
				merge = "[" + strings.Join(srcs, ", ") + "]"
			}
			parts = append(parts, "<<: "+merge)
		}
		for _, p := range n.Pairs {
			k, err := e.key(p.Key, true)
			if err != nil {
				return "", err
			}
			v, err := e.flow(p.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, k+": "+v)
		}
		return props + "{" + strings.Join(parts, ", ") + "}", nil
	case Set:
		parts := make([]string, 0, len(n.Pairs))
		for _, p := range n.Pairs {
			k, err := e.key(p.Key, true)
			if err != nil {
				return "", err
			}
			parts = append(parts, k)
		}
		return props + "{" + strings.Join(parts, ", ") + "}", nil
	case Sequence:
		e.active[n] = true
		defer delete(e.active, n)
		parts := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			s, err := e.flow(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return props + "[" + strings.Join(parts, ", ") + "]", nil
	default:
		return props + scalarText(n, false, e.nesting > 0), nil
	}
}

func isBlockCollection(n *Node) bool {
	if n == nil || n.Style == Flow {
		return false
	}
	switch n.Kind {
	case Mapping:
		return len(n.Pairs) > 0 || len(n.Merge) > 0
	case Sequence, Set:
		return n.Len() > 0
	}
	return false
}

func isBlockScalar(n *Node) bool {
	return n != nil && n.Kind == Scalar && (n.Style == Literal || n.Style == Folded)
}

func scalarText(n *Node, asKey, inFlow bool) string {
	v := n.Value
	switch n.Type {
	case NullType:
		if v == "" && (inFlow || asKey) {
			return "null"
		}
		return v
	case BoolType, IntType, FloatType, TimestampType:
		if n.Style == Plain {
			return v
		}
	}

	switch n.Style {
	case SingleQuoted:
		if strings.ContainsAny(v, "\n\r") {
			return quoteDouble(v)
		}
		return quoteSingle(v)
	case DoubleQuoted, Literal, Folded:
		return quoteDouble(v)
	}

	if !plainSafe(v, asKey, inFlow) {
		if hasControl(v) || strings.Contains(v, "'") {
			return quoteDouble(v)
		}
		return quoteSingle(v)
	}
	return v
}

// plainSafe reports whether v written without quotes in a key or value
// position is read back by go-yaml as the same plain string.
func plainSafe(v string, asKey, inFlow bool) bool {
	if v == "" || hasControl(v) || InferType(v) != StringType {
		return false
	}
	if inFlow && strings.ContainsAny(v, ",[]{}") {
		return false
	}
	src, at := "k: "+v, 2
	if asKey {
		src, at = v+": v", 0
	}
	tks := lexer.Tokenize(src)
	if len(tks) != 3 || tks[1].Type != token.MappingValueType {
		return false
	}
	return tks[at].Type == token.StringType && tks[at].Value == v
}

func hasControl(v string) bool {
	for _, r := range v {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func quoteSingle(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func quoteDouble(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
