package ypath

import (
	"strconv"
	"strings"
)

const (
	keySpecials     = "()[]^$%'\"\\* "
	termSpecials    = " []'\"\\=^$%!><~()"
	paramSpecials   = " ,'\"\\()"
	regexDelimiters = "/#!%@|~,;"
)

// Stringify renders segments in canonical form. Parsing the result with the
// same separator yields an equal segment sequence.
func Stringify(segments []Segment, sep Separator) string {
	if sep == Auto {
		sep = Dot
	}
	symbol := sep.String()

	var b strings.Builder
	if sep == FSlash {
		b.WriteString(symbol)
	}

	for i, seg := range segments {
		switch seg.Type {
		case KeySegment:
			if i > 0 {
				b.WriteString(symbol)
			}
			b.WriteString(EscapeKey(seg.Key, sep, i == 0))

		case MatchAllSegment, TraverseSegment:
			if i > 0 {
				b.WriteString(symbol)
			}
			if seg.Type == MatchAllSegment {
				b.WriteString("*")
			} else {
				b.WriteString("**")
			}

		case IndexSegment:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteString("]")

		case SliceSegment:
			b.WriteString("[")
			b.WriteString(seg.Slice.Lo)
			b.WriteString(":")
			b.WriteString(seg.Slice.Hi)
			b.WriteString("]")

		case AnchorSegment:
			if i == 0 {
				b.WriteString("&")
				b.WriteString(escape(seg.Key, keySpecials+symbol))
			} else {
				b.WriteString("[&")
				b.WriteString(escape(seg.Key, termSpecials))
				b.WriteString("]")
			}

		case SearchSegment:
			b.WriteString(renderSearch(seg.Search))

		case KeywordSegment:
			b.WriteString(renderKeyword(seg.Keyword))

		case CollectorSegment:
			b.WriteString(seg.Collector.Operator.String())
			b.WriteString("(")
			b.WriteString(seg.Collector.Expression)
			b.WriteString(")")
		}
	}
	return b.String()
}

// EscapeKey escapes the characters the parser would otherwise treat as
// demarcation, wildcards or operators within a key.
func EscapeKey(key string, sep Separator, first bool) string {
	out := escape(key, keySpecials+sep.String())
	if strings.HasPrefix(out, "&") || strings.HasPrefix(out, "+") || strings.HasPrefix(out, "-") {
		out = `\` + out
	}
	if first && sep != FSlash && strings.HasPrefix(out, "/") {
		out = `\` + out
	}
	return out
}

func renderSearch(s SearchTerms) string {
	var b strings.Builder
	b.WriteString("[")
	if s.Inverted {
		b.WriteString("!")
	}
	attr := escape(s.Attribute, termSpecials)
	if strings.HasPrefix(attr, "&") {
		attr = `\` + attr
	}
	b.WriteString(attr)
	b.WriteString(s.Method.String())
	if s.Method == Regex {
		delim, term := regexDelimiter(s.Term)
		b.WriteRune(delim)
		b.WriteString(term)
		b.WriteRune(delim)
	} else {
		b.WriteString(escape(s.Term, termSpecials))
	}
	b.WriteString("]")
	return b.String()
}

func renderKeyword(k KeywordTerms) string {
	var b strings.Builder
	b.WriteString("[")
	if k.Inverted {
		b.WriteString("!")
	}
	b.WriteString(k.Keyword.String())
	b.WriteString("(")
	for i, p := range k.Params {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(escape(p, paramSpecials))
	}
	b.WriteString(")]")
	return b.String()
}

// regexDelimiter picks a delimiter absent from term. When every candidate
// occurs, '/' is used and its occurrences in term are rewritten as \x2f.
func regexDelimiter(term string) (rune, string) {
	for _, d := range regexDelimiters {
		if !strings.ContainsRune(term, d) {
			return d, term
		}
	}
	var b strings.Builder
	rs := []rune(term)
	for i := 0; i < len(rs); i++ {
		switch {
		case rs[i] == '\\' && i+1 < len(rs) && rs[i+1] == '/':
			b.WriteString(`\x2f`)
			i++
		case rs[i] == '\\' && i+1 < len(rs):
			b.WriteRune(rs[i])
			b.WriteRune(rs[i+1])
			i++
		case rs[i] == '/':
			b.WriteString(`\x2f`)
		default:
			b.WriteRune(rs[i])
		}
	}
	return '/', b.String()
}

func escape(text, specials string) string {
	if !strings.ContainsAny(text, specials) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 4)
	for _, r := range text {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
