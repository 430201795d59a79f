package yamlnode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml/token"
)

var (
	dateRe      = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
	timestampRe = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}(?:[Tt]|\s+)\d{1,2}:\d{2}:\d{2}(?:\.\d+)?(?:\s*(?:Z|[-+]\d{1,2}(?::?\d{2})?))?$`)
)

// InferType resolves the YAML 1.2 core schema type of a plain scalar using
// the go-yaml token classifier. Dates and timestamps, which go-yaml leaves as
// strings, are detected separately.
func InferType(value string) ScalarType {
	if value == "" {
		return NullType
	}
	switch plainToken(value) {
	case token.NullType:
		return NullType
	case token.BoolType:
		return BoolType
	case token.IntegerType, token.BinaryIntegerType, token.OctetIntegerType, token.HexIntegerType:
		return IntType
	case token.FloatType, token.InfinityType, token.NanType:
		return FloatType
	}
	if dateRe.MatchString(value) || timestampRe.MatchString(value) {
		return TimestampType
	}
	return StringType
}

func plainToken(value string) token.Type {
	return token.New(value, value, &token.Position{}).Type
}

// ParseBool accepts the YAML boolean spellings.
func ParseBool(v string) (bool, bool) {
	if plainToken(v) != token.BoolType {
		return false, false
	}
	return strings.EqualFold(v, "true"), true
}

// ParseInt accepts the integer forms go-yaml resolves: decimal, 0x, 0o, 0b
// and leading-zero octal, with optional sign and digit separators.
func ParseInt(v string) (int64, bool) {
	num := token.ToNumber(v)
	if num == nil || num.Type == token.NumberTypeFloat {
		return 0, false
	}
	switch x := num.Value.(type) {
	case int64:
		return x, true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}

// ParseFloat accepts any number go-yaml resolves plus the infinity and NaN
// forms.
func ParseFloat(v string) (float64, bool) {
	switch plainToken(v) {
	case token.InfinityType:
		if strings.HasPrefix(v, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	case token.NanType:
		return math.NaN(), true
	}
	num := token.ToNumber(v)
	if num == nil {
		return 0, false
	}
	switch x := num.Value.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// ParseTimestamp parses the date and timestamp forms recognised by InferType.
func ParseTimestamp(v string) (time.Time, bool) {
	layouts := []string{
		"2006-1-2",
		time.RFC3339Nano,
		"2006-1-2T15:04:05.999999999Z07:00",
		"2006-1-2t15:04:05.999999999Z07:00",
		"2006-1-2 15:04:05.999999999Z07:00",
		"2006-1-2 15:04:05.999999999 -07:00",
		"2006-1-2 15:04:05.999999999 -7",
		"2006-1-2 15:04:05.999999999",
		"2006-1-2T15:04:05.999999999",
	}
	v = strings.TrimSpace(v)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// renderFloat writes f the way a hand-written YAML float would look,
// keeping at least one fractional digit.
func renderFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
