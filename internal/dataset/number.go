package dataset

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// Number coerces a decoded JSON value to a float64 the way a JavaScript Number()
// call would: null and false are 0, true is 1, strings are parsed with ParseNumber,
// a single-element array takes its element's value, and objects are NaN.
func Number(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		return ParseNumber(x)
	case json.Number:
		return ParseNumber(x.String())
	case []any:
		switch len(x) {
		case 0:
			return 0
		case 1:
			return arrayElementNumber(x[0])
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

// arrayElementNumber converts through the element's string form, which is why a
// nested true is NaN rather than 1.
func arrayElementNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		return math.NaN()
	default:
		return Number(x)
	}
}

// ParseNumber parses s as a numeric literal. Surrounding whitespace is ignored and a
// blank string is 0. Accepted forms are decimals with optional sign, fraction and
// exponent, signed Infinity, and unsigned 0x, 0o and 0b integers. Anything else is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '\uFEFF' })
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return parseRadix(s[2:], 16)
		case 'o', 'O':
			return parseRadix(s[2:], 8)
		case 'b', 'B':
			return parseRadix(s[2:], 2)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// parseRadix accumulates digits into a float so values beyond uint64 degrade in
// precision instead of failing.
func parseRadix(digits string, base int) float64 {
	var f float64
	for _, r := range digits {
		d, err := strconv.ParseUint(string(r), base, 8)
		if err != nil {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}
