package ypath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errUnmatchedParamQuote = errors.New("Keyword search parameters contain one or more unmatched demarcation symbol(s)")

// ParseParams splits keyword parameter text on unquoted commas. Quotes only
// demarcate, a backslash escapes the next character and unquoted spaces are
// dropped. Empty text yields no parameters.
func ParseParams(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var (
		params  []string
		current strings.Builder
		quote   rune
		escape  bool
	)
	for _, ch := range text {
		switch {
		case escape:
			escape = false
			current.WriteRune(ch)
		case ch == '\\':
			escape = true
		case quote != 0:
			if ch == quote {
				quote = 0
				continue
			}
			current.WriteRune(ch)
		case isQuote(ch):
			quote = ch
		case ch == ' ':
		case ch == ',':
			params = append(params, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	if quote != 0 {
		return nil, errUnmatchedParamQuote
	}
	return append(params, current.String()), nil
}

func validateKeyword(k KeywordTerms) error {
	n := len(k.Params)
	switch k.Keyword {
	case HasChild:
		if n != 1 {
			return fmt.Errorf("Invalid parameter count to %s; required 1, got %d", k.Keyword, n)
		}
	case Name:
		if n != 0 {
			return fmt.Errorf("Invalid parameter count to %s; none are permitted", k.Keyword)
		}
		if k.Inverted {
			return fmt.Errorf("Inversion is meaningless to %s()", k.Keyword)
		}
	case Parent:
		if n > 1 {
			return fmt.Errorf("Invalid parameter count to %s; up to 1 is permitted", k.Keyword)
		}
		if n == 1 {
			if v, err := strconv.Atoi(k.Params[0]); err != nil || v < 0 {
				return fmt.Errorf("Invalid parameter passed to %s, %s; must be unset or an unsigned integer", k.Keyword, k.Params[0])
			}
		}
		if k.Inverted {
			return fmt.Errorf("Inversion is meaningless to %s([STEPS])", k.Keyword)
		}
	case Max, Min, Unique, Distinct:
		if n > 1 {
			return fmt.Errorf("Invalid parameter count to %s; up to 1 is permitted", k.Keyword)
		}
	default:
		return fmt.Errorf("unknown keyword %d", k.Keyword)
	}
	return nil
}
