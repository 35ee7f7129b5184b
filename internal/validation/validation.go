package validation

import (
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/kjstillabower/rainfall-xml-service/internal/dataset"
	"github.com/kjstillabower/rainfall-xml-service/internal/models"
)

const (
	ParamHumidity    = "humidity"
	ParamMinRainfall = "min_rainfall"
)

// ErrMinRainfallNotNumber is returned when min_rainfall is present, non-empty and not numeric.
var ErrMinRainfallNotNumber = errors.New("min_rainfall must be a number")

// ParseQuery extracts feed options from the request query string. Only the first
// value of a repeated parameter is used.
//
// humidity is enabled only by the exact string "true". An empty min_rainfall is
// treated as absent. Blank-but-not-empty values parse as 0, matching ParseNumber.
func ParseQuery(values url.Values) (models.Query, error) {
	q := models.Query{
		IncludeHumidity: values.Get(ParamHumidity) == "true",
	}
	raw := values.Get(ParamMinRainfall)
	if raw == "" {
		return q, nil
	}
	threshold := dataset.ParseNumber(raw)
	if math.IsNaN(threshold) {
		return models.Query{}, ErrMinRainfallNotNumber
	}
	q.MinRainfall = threshold
	q.HasMinRainfall = true
	return q, nil
}

// ParseRawQuery splits a raw query string into values without rejecting malformed
// input. Pairs are separated by '&' only, so ';' is ordinary text. '+' decodes to a
// space and an invalid percent escape is kept as literal text. Empty pairs are skipped.
func ParseRawQuery(rawQuery string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		values.Add(decodeComponent(key), decodeComponent(value))
	}
	return values
}

func decodeComponent(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}
