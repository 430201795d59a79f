package ypath

import (
	"regexp"
	"strconv"
	"strings"
)

// Parser turns expression text into a Path, memoizing results in its Cache.
type Parser struct {
	cache Cache
}

// NewParser creates a parser backed by cache; a nil cache disables
// memoization.
func NewParser(cache Cache) *Parser {
	return &Parser{cache: cache}
}

var defaultParser = NewParser(NewCache())

// Parse parses text with the process-wide parser.
func Parse(text string, sep Separator) (Path, error) {
	return defaultParser.Parse(text, sep)
}

// MustParse is Parse that panics on error, for expressions known to be valid.
func MustParse(text string, sep Separator) Path {
	p, err := Parse(text, sep)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse parses text. Auto resolves to FSlash for text starting with '/'.
// Successful results are cached under the text and under its canonical form.
func (p *Parser) Parse(text string, sep Separator) (Path, error) {
	sep = sep.resolve(text)
	key := cacheKey(sep, text)
	if p.cache != nil {
		if cached, ok := p.cache.Load(key); ok {
			return cached, nil
		}
	}

	segments, err := newScanner(text, sep).scan()
	if err != nil {
		return Path{}, err
	}

	path := Path{original: text, separator: sep, segments: segments}
	if p.cache != nil {
		p.cache.Store(key, path)
		canonical := path.String()
		if canonical != text {
			p.cache.Store(cacheKey(sep, canonical), Path{original: canonical, separator: sep, segments: segments})
		}
	}
	return path, nil
}

type scanner struct {
	expr string
	sep  rune

	segments []Segment
	demarc   demarcations

	id    []rune
	stars []int

	segType  SegmentType
	escape   bool
	inverted bool
	method   SearchMethod
	attr     string
	keyword  Keyword

	seekingRegexDelim bool
	capturingRegex    bool
	seekingAnchor     bool

	collectorLevel  int
	operator        CollectorOperator
	seekingOperator bool
	mustBe          rune
}

func newScanner(expr string, sep Separator) *scanner {
	return &scanner{
		expr:          expr,
		sep:           rune(sep.String()[0]),
		seekingAnchor: true,
	}
}

func (s *scanner) top() rune {
	return s.demarc.top()
}

func (s *scanner) write(ch rune, escaped bool) {
	if ch == '*' && !escaped && s.segType != SearchSegment && s.collectorLevel == 0 {
		s.stars = append(s.stars, len(s.id))
	}
	s.id = append(s.id, ch)
}

func (s *scanner) takeID() string {
	id := string(s.id)
	s.id = s.id[:0]
	s.stars = s.stars[:0]
	return id
}

// raw reports whether escapes are kept verbatim for a later parsing pass.
func (s *scanner) raw() bool {
	return s.collectorLevel > 0 || s.segType == KeywordSegment
}

func (s *scanner) emit(seg Segment) {
	s.segments = append(s.segments, seg)
}

func (s *scanner) scan() ([]Segment, error) {
	for i, ch := range s.expr {
		depth := s.demarc.depth()
		if s.mustBe != 0 && ch == s.mustBe {
			s.mustBe = 0
		}

		switch {
		case s.escape:
			s.escape = false
			if s.raw() {
				s.id = append(s.id, '\\')
			}
			s.write(ch, true)
			s.seekingAnchor = false
			s.seekingOperator = false
			continue

		case s.capturingRegex:
			if ch == s.top() {
				s.capturingRegex = false
				s.demarc.pop()
				continue
			}
			s.write(ch, true)
			continue

		case ch == '\\':
			s.escape = true
			continue

		case depth > 0 && isQuote(s.top()) && ch != s.top():
			s.id = append(s.id, ch)
			continue

		case ch == ' ':
			continue

		case s.seekingRegexDelim:
			s.seekingRegexDelim = false
			s.capturingRegex = true
			s.demarc.push(ch)
			continue

		case s.seekingAnchor && ch == '&':
			s.seekingAnchor = false
			s.segType = AnchorSegment
			continue

		case s.seekingOperator && (ch == '+' || ch == '-' || ch == '&'):
			s.seekingOperator = false
			s.mustBe = '('
			switch ch {
			case '+':
				s.operator = Addition
			case '-':
				s.operator = Subtraction
			default:
				s.operator = Intersection
			}
			continue

		case s.mustBe != 0:
			return nil, malformed(s.expr, string(s.id),
				"Invalid YAML Path at character index %d, %q, which must be %q", i, ch, s.mustBe)

		case isQuote(ch):
			if depth == 0 {
				s.demarc.push(ch)
				continue
			}
			// Quotes demarcating a bracketed search term are dropped here;
			// keyword and collector text keeps them for its own parser.
			if ch != s.top() {
				s.demarc.push(ch)
				if s.raw() {
					break
				}
				continue
			}
			s.demarc.pop()
			if depth > 1 {
				if s.raw() {
					break
				}
				continue
			}
			if len(s.id) > 0 {
				typ := s.segType
				if typ == 0 {
					typ = KeySegment
				}
				id := s.takeID()
				s.emit(Segment{Type: typ, Key: id})
			}
			s.segType = 0
			continue

		case ch == '(':
			if depth == 1 && s.top() == '[' && len(s.id) > 0 {
				name := string(s.id)
				kw, ok := LookupKeyword(name)
				if !ok {
					return nil, malformed(s.expr, name,
						"Unknown Search Keyword at character index %d, %q; allowed: %s",
						i-len(name), name, strings.Join(KeywordList(), ", "))
				}
				s.demarc.push(ch)
				s.segType = KeywordSegment
				s.keyword = kw
				s.takeID()
				continue
			}

			if s.collectorLevel == 0 {
				if len(s.id) > 0 {
					if err := s.flushKey(); err != nil {
						return nil, err
					}
				} else if s.seekingOperator {
					return nil, malformed(s.expr, "",
						"Adjoining Collectors without an operator has no meaning; try + or - between them")
				}
			}

			s.seekingOperator = false
			s.seekingAnchor = false
			s.collectorLevel++
			s.demarc.push(ch)
			s.segType = CollectorSegment
			if s.collectorLevel == 1 {
				continue
			}

		case depth > 0 && ch == ')' && s.segType == KeywordSegment && s.top() == '(':
			s.demarc.pop()
			s.mustBe = ']'
			s.seekingOperator = false
			continue

		case depth > 0 && ch == ')' && s.top() == '(' && s.collectorLevel > 0:
			s.collectorLevel--
			s.demarc.pop()
			if s.collectorLevel == 0 {
				s.emit(Segment{Type: CollectorSegment, Collector: CollectorTerms{
					Operator:   s.operator,
					Expression: s.takeID(),
				}})
				s.operator = NoOperator
				s.seekingOperator = true
				s.seekingAnchor = false
				s.segType = 0
				continue
			}

		case depth == 0 && ch == '[':
			if len(s.id) > 0 {
				if err := s.flushKey(); err != nil {
					return nil, err
				}
			}
			s.demarc.push(ch)
			s.segType = IndexSegment
			s.seekingOperator = false
			s.seekingAnchor = true
			s.inverted = false
			s.method = 0
			s.attr = ""
			continue

		case depth == 1 && s.top() == '[' && s.segType != KeywordSegment &&
			strings.ContainsRune("=^$%!><~", ch) && !(s.method != 0 && len(s.id) > 0):
			if err := s.operatorChar(i, ch); err != nil {
				return nil, err
			}
			continue

		case ch == '[':
			s.demarc.push(ch)

		case depth == 1 && ch == ']' && s.top() == '[':
			if err := s.closeBracket(i); err != nil {
				return nil, err
			}
			continue

		case ch == ']':
			if s.top() == '[' {
				s.demarc.pop()
			}

		case depth == 0 && ch == s.sep:
			if len(s.id) > 0 {
				if err := s.flushKey(); err != nil {
					return nil, err
				}
			}
			s.segType = 0
			s.seekingAnchor = true
			continue
		}

		s.write(ch, false)
		s.seekingAnchor = false
		s.seekingOperator = false
	}

	switch {
	case s.collectorLevel > 0:
		return nil, malformed(s.expr, "", "YAML Path contains an unmatched () collector pair")
	case s.capturingRegex || s.seekingRegexDelim:
		return nil, malformed(s.expr, "", "YAML Path contains an unterminated Regular Expression")
	case s.demarc.depth() > 0:
		return nil, malformed(s.expr, "",
			"YAML Path contains at least one unmatched demarcation mark with remaining open marks, %s",
			s.demarc.String())
	case s.mustBe != 0:
		return nil, malformed(s.expr, "", "YAML Path ended where %q was required", s.mustBe)
	}

	if len(s.id) > 0 {
		if err := s.flushKey(); err != nil {
			return nil, err
		}
	}
	return s.segments, nil
}

func (s *scanner) operatorChar(i int, ch rune) error {
	switch ch {
	case '!':
		if s.method != 0 {
			return malformed(s.expr, string(s.id),
				"Unsupported search operator combination at character index %d, %q", i, ch)
		}
		if s.inverted {
			return malformed(s.expr, string(s.id),
				"Double search inversion is meaningless at character index %d, %q", i, ch)
		}
		s.inverted = true
		return nil

	case '=':
		s.segType = SearchSegment
		switch s.method {
		case LessThan:
			s.method = LessThanOrEqual
		case GreaterThan:
			s.method = GreaterThanOrEqual
		case Equals:
			// == is accepted as =
		case 0:
			if len(s.id) == 0 {
				return malformed(s.expr, "",
					"Missing search operand before operator at character index %d, %q", i, ch)
			}
			s.method = Equals
			s.attr = s.takeID()
		default:
			return malformed(s.expr, "",
				"Unsupported search operator combination at character index %d, %q", i, ch)
		}
		return nil

	case '~':
		if s.method != Equals {
			return malformed(s.expr, string(s.id),
				"Unexpected use of %q operator at character index %d; please try =~ if you mean to search with a Regular Expression", ch, i)
		}
		s.method = Regex
		s.seekingRegexDelim = true
		return nil
	}

	if s.method != 0 {
		return malformed(s.expr, "",
			"Unsupported search operator combination at character index %d, %q", i, ch)
	}
	if len(s.id) == 0 {
		return malformed(s.expr, "",
			"Missing search operand before operator, %q at character index, %d", ch, i)
	}

	s.segType = SearchSegment
	switch ch {
	case '^':
		s.method = StartsWith
	case '$':
		s.method = EndsWith
	case '%':
		s.method = Contains
	case '>':
		s.method = GreaterThan
	case '<':
		s.method = LessThan
	}
	s.attr = s.takeID()
	return nil
}

func (s *scanner) closeBracket(i int) error {
	id := s.takeID()
	defer func() {
		s.demarc.pop()
		s.segType = 0
		s.method = 0
		s.inverted = false
		s.keyword = 0
		s.attr = ""
	}()

	switch s.segType {
	case IndexSegment:
		if lo, hi, ok := strings.Cut(id, ":"); ok {
			s.emit(Segment{Type: SliceSegment, Slice: Slice{Lo: lo, Hi: hi}})
			return nil
		}
		n, err := strconv.Atoi(id)
		if err != nil {
			return malformed(s.expr, id, "Not an integer index at character index %d: %s", i, id)
		}
		s.emit(Index(n))

	case SearchSegment:
		term := id
		if s.method == Regex {
			if _, err := regexp.Compile(term); err != nil {
				return malformed(s.expr, term, "Invalid Regular Expression: %v", err)
			}
		}
		s.emit(Segment{Type: SearchSegment, Search: SearchTerms{
			Inverted:  s.inverted,
			Method:    s.method,
			Attribute: s.attr,
			Term:      term,
		}})

	case KeywordSegment:
		params, err := ParseParams(id)
		if err != nil {
			return malformed(s.expr, id, "%v", err)
		}
		terms := KeywordTerms{Inverted: s.inverted, Keyword: s.keyword, Params: params}
		if err := validateKeyword(terms); err != nil {
			return malformed(s.expr, renderKeyword(terms), "%v", err)
		}
		s.emit(Segment{Type: KeywordSegment, Keyword: terms})

	case AnchorSegment:
		if id == "" {
			return malformed(s.expr, "[&]", "Anchor name is missing")
		}
		s.emit(Anchor(id))

	default:
		return malformed(s.expr, id, "Unsupported bracketed segment at character index %d", i)
	}
	return nil
}

// flushKey records the pending identifier, expanding wildcards.
func (s *scanner) flushKey() error {
	typ := s.segType
	if typ == 0 {
		typ = KeySegment
	}
	stars := append([]int(nil), s.stars...)
	runes := append([]rune(nil), s.id...)
	id := s.takeID()

	if typ == AnchorSegment {
		s.emit(Anchor(id))
		return nil
	}
	if typ != KeySegment || len(stars) == 0 {
		s.emit(Segment{Type: typ, Key: id})
		return nil
	}

	seg, err := expandSplats(s.expr, runes, stars)
	if err != nil {
		return err
	}
	s.emit(seg)
	return nil
}

func expandSplats(expr string, runes []rune, stars []int) (Segment, error) {
	n := len(runes)
	switch {
	case len(stars) == 1 && n == 1:
		return Segment{Type: MatchAllSegment}, nil
	case len(stars) == 2 && n == 2:
		return Segment{Type: TraverseSegment}, nil
	case len(stars) == 1 && stars[0] == 0:
		return searchSegment(EndsWith, string(runes[1:])), nil
	case len(stars) == 1 && stars[0] == n-1:
		return searchSegment(StartsWith, string(runes[:n-1])), nil
	}

	var b strings.Builder
	b.WriteByte('^')
	last := -2
	start := 0
	for _, pos := range stars {
		if pos == last+1 {
			return Segment{}, malformed(expr, string(runes),
				"The ** traversal operator has no meaning when combined with other characters")
		}
		b.WriteString(regexp.QuoteMeta(string(runes[start:pos])))
		b.WriteString(".*")
		start = pos + 1
		last = pos
	}
	b.WriteString(regexp.QuoteMeta(string(runes[start:])))
	b.WriteByte('$')
	return searchSegment(Regex, b.String()), nil
}

func searchSegment(method SearchMethod, term string) Segment {
	return Segment{Type: SearchSegment, Search: SearchTerms{Method: method, Attribute: ".", Term: term}}
}

func isQuote(r rune) bool {
	return r == '\'' || r == '"'
}
