package models

import (
	"encoding/json"
	"encoding/xml"
	"math"
	"strconv"
	"strings"
)

// Query is the parsed form of a feed request's query string.
type Query struct {
	IncludeHumidity bool
	// MinRainfall is the exclusive lower bound on rainfall; only meaningful when HasMinRainfall.
	MinRainfall    float64
	HasMinRainfall bool
}

// Record is one projected dataset entry. Humidity is nil unless the request asked for it.
type Record struct {
	Rainfall    Value  `xml:"rainfall"`
	Pressure3pm Value  `xml:"pressure3pm"`
	Humidity    *Value `xml:"humidity,omitempty"`
}

// Document is the XML response body.
type Document struct {
	XMLName xml.Name `xml:"weather_data"`
	Records []Record `xml:"record"`
}

// Value is a scalar rendered as element text, or null rendered as an empty element.
type Value struct {
	Text string
	Null bool
}

// Null returns the null Value.
func Null() Value {
	return Value{Null: true}
}

// NewValue converts a decoded JSON value into its element text.
// Numbers use the shortest round-trip form; objects and arrays are kept as compact JSON.
func NewValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return Value{Text: x}
	case bool:
		return Value{Text: strconv.FormatBool(x)}
	case float64:
		return Value{Text: FormatNumber(x)}
	case int:
		return Value{Text: strconv.Itoa(x)}
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return Value{Text: FormatNumber(f)}
		}
		return Value{Text: x.String()}
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return Null()
		}
		return Value{Text: string(raw)}
	}
}

// MarshalXML writes null as an empty element instead of literal text.
func (v Value) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if v.Null {
		return e.EncodeElement("", start)
	}
	return e.EncodeElement(v.Text, start)
}

// FormatNumber renders f the way JSON producers print numbers: integers without a
// fraction, plain decimals in [1e-6, 1e21), exponent form outside that range.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go pads the exponent to two digits (1e-07); drop the padding.
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
