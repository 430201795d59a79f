package search

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

var (
	regexMu    sync.RWMutex
	regexCache = map[string]*regexp.Regexp{}
)

// Match compares haystack against term. Numeric scalars are compared
// numerically when term parses as a number; everything else compares the
// scalar text. Collections never match.
func Match(method ypath.SearchMethod, term string, haystack *yamlnode.Node) (bool, error) {
	if haystack != nil && !haystack.IsScalar() {
		return false, nil
	}

	if haystack.IsNumeric() {
		if ok, matched := numeric(method, term, haystack); ok {
			return matched, nil
		}
	}
	return MatchString(method, term, haystack.Text())
}

// MatchString compares text against term literally, as used for key and
// anchor names.
func MatchString(method ypath.SearchMethod, term, text string) (bool, error) {
	switch method {
	case ypath.Equals:
		return text == term, nil
	case ypath.StartsWith:
		return strings.HasPrefix(text, term), nil
	case ypath.EndsWith:
		return strings.HasSuffix(text, term), nil
	case ypath.Contains:
		return strings.Contains(text, term), nil
	case ypath.GreaterThan:
		return text > term, nil
	case ypath.LessThan:
		return text < term, nil
	case ypath.GreaterThanOrEqual:
		return text >= term, nil
	case ypath.LessThanOrEqual:
		return text <= term, nil
	case ypath.Regex:
		re, err := compile(term)
		if err != nil {
			return false, err
		}
		return re.MatchString(text), nil
	}
	return false, fmt.Errorf("%w: unsupported search method %v", ypath.ErrMalformedExpression, method)
}

// numeric reports ok=false when term is not a number or method is not a
// comparison.
func numeric(method ypath.SearchMethod, term string, haystack *yamlnode.Node) (ok, matched bool) {
	hv, ok := haystack.Float()
	if !ok {
		return false, false
	}
	tv, ok := parseNumber(strings.TrimSpace(term))
	if !ok {
		return false, false
	}

	switch method {
	case ypath.Equals:
		return true, hv == tv
	case ypath.GreaterThan:
		return true, hv > tv
	case ypath.LessThan:
		return true, hv < tv
	case ypath.GreaterThanOrEqual:
		return true, hv >= tv
	case ypath.LessThanOrEqual:
		return true, hv <= tv
	}
	return false, false
}

func parseNumber(v string) (float64, bool) {
	if i, ok := yamlnode.ParseInt(v); ok {
		return float64(i), true
	}
	return yamlnode.ParseFloat(v)
}

func compile(expr string) (*regexp.Regexp, error) {
	regexMu.RLock()
	re, ok := regexCache[expr]
	regexMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regular expression %q: %v", ypath.ErrMalformedExpression, expr, err)
	}

	regexMu.Lock()
	regexCache[expr] = re
	regexMu.Unlock()
	return re, nil
}
