package models

import (
	"encoding/json"
	"encoding/xml"
	"math"
	"testing"
)

func TestNewValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Value{Null: true}},
		{"string", "5.5", Value{Text: "5.5"}},
		{"empty string", "", Value{Text: ""}},
		{"bool", false, Value{Text: "false"}},
		{"integer float", float64(1012), Value{Text: "1012"}},
		{"fraction", 0.2, Value{Text: "0.2"}},
		{"zero", float64(0), Value{Text: "0"}},
		{"json number", json.Number("1e3"), Value{Text: "1000"}},
		{"object", map[string]any{"a": float64(1)}, Value{Text: `{"a":1}`}},
		{"array", []any{float64(1), "x"}, Value{Text: `[1,"x"]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewValue(tt.in); got != tt.want {
				t.Errorf("NewValue(%v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{-3.25, "-3.25"},
		{math.Copysign(0, -1), "0"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789012, "123456789012"},
		{math.Inf(1), "Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestRecord_MarshalXML verifies that null values become empty elements and that
// humidity is omitted when nil.
func TestRecord_MarshalXML(t *testing.T) {
	humidity := Null()
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "without humidity",
			rec:  Record{Rainfall: Value{Text: "5"}, Pressure3pm: Null()},
			want: "<record><rainfall>5</rainfall><pressure3pm></pressure3pm></record>",
		},
		{
			name: "null humidity",
			rec:  Record{Rainfall: Value{Text: "0"}, Pressure3pm: Value{Text: "1008"}, Humidity: &humidity},
			want: "<record><rainfall>0</rainfall><pressure3pm>1008</pressure3pm><humidity></humidity></record>",
		},
		{
			name: "escaped text",
			rec:  Record{Rainfall: Value{Text: "<1>"}, Pressure3pm: Null()},
			want: "<record><rainfall>&lt;1&gt;</rainfall><pressure3pm></pressure3pm></record>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := xml.Marshal(struct {
				XMLName xml.Name `xml:"record"`
				Record
			}{Record: tt.rec})
			if err != nil {
				t.Fatalf("xml.Marshal() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("xml.Marshal() = %s, want %s", out, tt.want)
			}
		})
	}
}
