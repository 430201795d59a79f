package yamlnode

import (
	"fmt"
	"strconv"
	"strings"
)

// Format selects how NewNode renders a replacement value.
type Format string

const (
	FormatBare      Format = "bare"
	FormatBoolean   Format = "boolean"
	FormatDate      Format = "date"
	FormatDefault   Format = "default"
	FormatDQuote    Format = "dquote"
	FormatFloat     Format = "float"
	FormatFolded    Format = "folded"
	FormatInt       Format = "int"
	FormatLiteral   Format = "literal"
	FormatSQuote    Format = "squote"
	FormatTimestamp Format = "timestamp"
)

// Formats lists every supported format name.
func Formats() []Format {
	return []Format{
		FormatBare, FormatBoolean, FormatDate, FormatDefault, FormatDQuote,
		FormatFloat, FormatFolded, FormatInt, FormatLiteral, FormatSQuote,
		FormatTimestamp,
	}
}

// ParseFormat resolves a case-insensitive format name; empty is FormatDefault.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatDefault, nil
	}
	f := Format(strings.ToLower(s))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, 0, len(Formats()))
	for _, known := range Formats() {
		names = append(names, string(known))
	}
	return "", fmt.Errorf("%w: %s; please specify one of: %s", ErrFormat, s, strings.Join(names, ", "))
}

// NewNode builds a scalar replacement for template holding value in format.
// The template's anchor is carried over; a non-empty tag overrides the
// template's tag.
func NewNode(template *Node, value string, format Format, tag string) (*Node, error) {
	n := &Node{Kind: Scalar, Type: StringType}

	switch format {
	case FormatBare:
		n.Value = value
	case FormatDQuote:
		n.Value, n.Style = value, DoubleQuoted
	case FormatSQuote:
		n.Value, n.Style = value, SingleQuoted
	case FormatFolded:
		n.Value, n.Style = value, Folded
	case FormatLiteral:
		n.Value, n.Style = value, Literal
	case FormatBoolean:
		b, ok := parseBoolish(value)
		if !ok {
			return nil, fmt.Errorf("%w: the requested value format is %s, but '%s' cannot be cast to a boolean", ErrValue, format, value)
		}
		n.Type, n.Value = BoolType, strconv.FormatBool(b)
	case FormatFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: the requested value format is %s, but '%s' cannot be cast to a floating-point number", ErrValue, format, value)
		}
		n.Type, n.Value = FloatType, formatWithPrecision(f, template)
	case FormatInt:
		i, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: the requested value format is %s, but '%s' cannot be cast to an integer number", ErrValue, format, value)
		}
		n.Type, n.Value = IntType, strconv.FormatInt(i, 10)
	case FormatDate:
		t, ok := ParseTimestamp(value)
		if !ok || !dateRe.MatchString(strings.TrimSpace(value)) {
			return nil, fmt.Errorf("%w: the requested value format is %s, but '%s' is not a YYYY-MM-DD date", ErrValue, format, value)
		}
		n.Type, n.Value = TimestampType, t.Format("2006-01-02")
	case FormatTimestamp:
		if _, ok := ParseTimestamp(value); !ok {
			return nil, fmt.Errorf("%w: the requested value format is %s, but '%s' is not an ISO8601 timestamp", ErrValue, format, value)
		}
		n.Type, n.Value = TimestampType, strings.TrimSpace(value)
	case FormatDefault, "":
		n.Type, n.Value = InferType(value), value
		if value == "" {
			n.Type = StringType
		}
		if n.Type == StringType && strings.Contains(value, "\n") {
			n.Style = Literal
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}

	if template != nil {
		n.Anchor = template.Anchor
		if template.Kind == Scalar && tag == "" {
			n.Tag = template.Tag
		}
	}
	if tag != "" {
		n.Tag = NormalizeTag(tag)
	}
	return n, nil
}

// NormalizeTag prefixes bare tag names with '!'.
func NormalizeTag(tag string) string {
	if tag == "" || strings.HasPrefix(tag, "!") {
		return tag
	}
	return "!" + tag
}

func parseBoolish(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, true
	case "n", "no", "f", "false", "off", "0":
		return false, true
	}
	return false, false
}

// formatWithPrecision keeps the template's number of fractional digits when
// the new value can be expressed with them exactly.
func formatWithPrecision(f float64, template *Node) string {
	s := renderFloat(f)
	if template == nil || template.Type != FloatType {
		return s
	}
	dot := strings.LastIndexByte(template.Value, '.')
	if dot < 0 || strings.ContainsAny(template.Value, "eE") {
		return s
	}
	prec := len(template.Value) - dot - 1
	fixed := strconv.FormatFloat(f, 'f', prec, 64)
	if parsed, err := strconv.ParseFloat(fixed, 64); err == nil && parsed == f {
		return fixed
	}
	return s
}
