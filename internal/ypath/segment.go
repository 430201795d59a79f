package ypath

import (
	"slices"
	"strings"
)

// SegmentType identifies the variant of a Segment.
type SegmentType uint8

const (
	KeySegment SegmentType = iota + 1
	IndexSegment
	SliceSegment
	AnchorSegment
	SearchSegment
	KeywordSegment
	CollectorSegment
	TraverseSegment
	MatchAllSegment
)

func (t SegmentType) String() string {
	switch t {
	case KeySegment:
		return "KEY"
	case IndexSegment:
		return "INDEX"
	case SliceSegment:
		return "SLICE"
	case AnchorSegment:
		return "ANCHOR"
	case SearchSegment:
		return "SEARCH"
	case KeywordSegment:
		return "KEYWORD_SEARCH"
	case CollectorSegment:
		return "COLLECTOR"
	case TraverseSegment:
		return "TRAVERSE"
	case MatchAllSegment:
		return "MATCH_ALL"
	default:
		return "UNKNOWN"
	}
}

// SearchMethod is the comparison applied by a Search segment.
type SearchMethod uint8

const (
	Equals SearchMethod = iota + 1
	StartsWith
	EndsWith
	Contains
	GreaterThan
	LessThan
	GreaterThanOrEqual
	LessThanOrEqual
	Regex
)

func (m SearchMethod) String() string {
	switch m {
	case Equals:
		return "="
	case StartsWith:
		return "^"
	case EndsWith:
		return "$"
	case Contains:
		return "%"
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case GreaterThanOrEqual:
		return ">="
	case LessThanOrEqual:
		return "<="
	case Regex:
		return "=~"
	default:
		return "?"
	}
}

// Keyword names a keyword search.
type Keyword uint8

const (
	HasChild Keyword = iota + 1
	Name
	Max
	Min
	Parent
	Unique
	Distinct
)

var keywordNames = map[Keyword]string{
	HasChild: "has_child",
	Name:     "name",
	Max:      "max",
	Min:      "min",
	Parent:   "parent",
	Unique:   "unique",
	Distinct: "distinct",
}

func (k Keyword) String() string {
	if name, ok := keywordNames[k]; ok {
		return name
	}
	return "unknown"
}

// LookupKeyword resolves a keyword by its case-insensitive name.
func LookupKeyword(name string) (Keyword, bool) {
	name = strings.ToLower(name)
	for k, n := range keywordNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// KeywordList returns the keyword names in declaration order.
func KeywordList() []string {
	out := make([]string, 0, len(keywordNames))
	for k := HasChild; k <= Distinct; k++ {
		out = append(out, k.String())
	}
	return out
}

// CollectorOperator combines a collector with the preceding one.
type CollectorOperator uint8

const (
	NoOperator CollectorOperator = iota
	Addition
	Subtraction
	Intersection
)

func (o CollectorOperator) String() string {
	switch o {
	case Addition:
		return "+"
	case Subtraction:
		return "-"
	case Intersection:
		return "&"
	default:
		return ""
	}
}

// Slice is a lo:hi range kept as text; sequences read it as integers and
// mappings compare keys lexically against it.
type Slice struct {
	Lo string
	Hi string
}

type SearchTerms struct {
	Inverted  bool
	Method    SearchMethod
	Attribute string
	Term      string
}

type KeywordTerms struct {
	Inverted bool
	Keyword  Keyword
	Params   []string
}

type CollectorTerms struct {
	Operator   CollectorOperator
	Expression string
}

// Segment is one typed step of a path. Only the payload matching Type is set.
type Segment struct {
	Type SegmentType

	// Key holds the key name of Key segments and the name of Anchor segments.
	Key   string
	Index int
	Slice Slice

	Search    SearchTerms
	Keyword   KeywordTerms
	Collector CollectorTerms
}

func Key(name string) Segment {
	return Segment{Type: KeySegment, Key: name}
}

func Index(i int) Segment {
	return Segment{Type: IndexSegment, Index: i}
}

func Anchor(name string) Segment {
	return Segment{Type: AnchorSegment, Key: name}
}

// Equal reports structural equality.
func (s Segment) Equal(o Segment) bool {
	return s.Type == o.Type &&
		s.Key == o.Key &&
		s.Index == o.Index &&
		s.Slice == o.Slice &&
		s.Search == o.Search &&
		s.Keyword.Inverted == o.Keyword.Inverted &&
		s.Keyword.Keyword == o.Keyword.Keyword &&
		slices.Equal(s.Keyword.Params, o.Keyword.Params) &&
		s.Collector == o.Collector
}

func (s Segment) clone() Segment {
	if s.Keyword.Params != nil {
		s.Keyword.Params = slices.Clone(s.Keyword.Params)
	}
	return s
}
