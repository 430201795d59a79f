package ypath

import (
	"fmt"
	"slices"
	"strings"
)

// Separator demarcates Key segments.
type Separator uint8

const (
	Auto Separator = iota
	Dot
	FSlash
)

func (s Separator) String() string {
	if s == FSlash {
		return "/"
	}
	return "."
}

// Name is the flag-friendly name of s.
func (s Separator) Name() string {
	switch s {
	case Dot:
		return "dot"
	case FSlash:
		return "fslash"
	default:
		return "auto"
	}
}

// ParseSeparator accepts auto, dot, fslash or the literal symbols.
func ParseSeparator(v string) (Separator, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return Auto, nil
	case "dot", ".":
		return Dot, nil
	case "fslash", "/":
		return FSlash, nil
	}
	return Auto, fmt.Errorf("unknown path separator %q: want auto, dot or fslash", v)
}

// InferSeparator resolves Auto from the leading character of text.
func InferSeparator(text string) Separator {
	if strings.HasPrefix(text, "/") {
		return FSlash
	}
	return Dot
}

func (s Separator) resolve(text string) Separator {
	if s == Auto {
		return InferSeparator(text)
	}
	return s
}

// Path is an immutable parsed expression.
type Path struct {
	original  string
	separator Separator
	segments  []Segment
}

// NewPath builds a path from segments.
func NewPath(sep Separator, segments ...Segment) Path {
	if sep == Auto {
		sep = Dot
	}
	p := Path{separator: sep, segments: make([]Segment, len(segments))}
	for i, s := range segments {
		p.segments[i] = s.clone()
	}
	p.original = p.String()
	return p
}

// Root is the empty path of the given separator.
func Root(sep Separator) Path {
	return NewPath(sep)
}

// Original returns the text the path was parsed from.
func (p Path) Original() string {
	return p.original
}

func (p Path) Separator() Separator {
	if p.separator == Auto {
		return Dot
	}
	return p.separator
}

func (p Path) Len() int {
	return len(p.segments)
}

func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Segment returns the segment at i.
func (p Path) Segment(i int) Segment {
	return p.segments[i].clone()
}

// Segments returns a copy of the segment sequence.
func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	for i, s := range p.segments {
		out[i] = s.clone()
	}
	return out
}

// Append returns a new path with seg appended.
func (p Path) Append(seg Segment) Path {
	segs := append(slices.Clip(p.segments), seg.clone())
	np := Path{separator: p.Separator(), segments: segs}
	np.original = np.String()
	return np
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return p
	}
	np := Path{separator: p.Separator(), segments: slices.Clip(p.segments[:len(p.segments)-1])}
	np.original = np.String()
	return np
}

// WithSeparator returns the same segments rendered with sep.
func (p Path) WithSeparator(sep Separator) Path {
	if sep == Auto {
		sep = Dot
	}
	np := Path{separator: sep, segments: p.segments}
	np.original = np.String()
	return np
}

// Equal reports segment-sequence equality, ignoring the separator.
func (p Path) Equal(o Path) bool {
	return slices.EqualFunc(p.segments, o.segments, Segment.Equal)
}

func (p Path) String() string {
	return Stringify(p.segments, p.Separator())
}
