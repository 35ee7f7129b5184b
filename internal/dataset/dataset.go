// Package dataset reads the input JSON file and exposes it as an ordered list of
// schema-less records.
package dataset

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

var (
	// ErrRead is returned when the input file cannot be read.
	ErrRead = errors.New("read input file")
	// ErrParse is returned when the input file is not valid JSON.
	ErrParse = errors.New("parse input file")
)

// RawRecord is one JSON object from the input, keyed by its original field names.
type RawRecord map[string]any

// Dataset is the ordered sequence of records extracted from one read of the input file.
type Dataset []RawRecord

// Parse decodes a JSON document into a Dataset.
//
// A root array is used directly. A root object is unwrapped to its first field,
// in property order (see firstArrayField), whose value is an array; with no such
// field the dataset is empty, as it is for scalar roots. Array elements that are
// not objects are dropped.
func Parse(data []byte) (Dataset, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrParse)
	}
	data = bytes.TrimSpace(data)
	switch data[0] {
	case '[':
		return decodeRecords(data)
	case '{':
		raw, ok, err := firstArrayField(data)
		if err != nil || !ok {
			return Dataset{}, err
		}
		return decodeRecords(raw)
	default:
		return Dataset{}, nil
	}
}

type objectField struct {
	key   string
	value json.RawMessage
}

// firstArrayField returns the first array-valued field of the root object. Fields are
// visited in property order: array-index keys ("0", "1", ...) ascending, then the
// remaining keys in document order. A repeated key keeps its first position and its
// last value.
func firstArrayField(data []byte) (json.RawMessage, bool, error) {
	fields, err := objectFields(data)
	if err != nil {
		return nil, false, err
	}
	slices.SortStableFunc(fields, func(a, b objectField) int {
		ai, aok := arrayIndex(a.key)
		bi, bok := arrayIndex(b.key)
		switch {
		case aok && bok:
			return cmp.Compare(ai, bi)
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
	for _, f := range fields {
		if isArray(f.value) {
			return f.value, true, nil
		}
	}
	return nil, false, nil
}

// objectFields reads the root object's fields in document order. Map decoding would
// lose that order.
func objectFields(data []byte) ([]objectField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var fields []objectField
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if i, ok := seen[key]; ok {
			fields[i].value = value
			continue
		}
		seen[key] = len(fields)
		fields = append(fields, objectField{key: key, value: value})
	}
	return fields, nil
}

// arrayIndex reports whether key is a canonical array index: decimal digits without a
// leading zero, below 2^32-1.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}

func decodeRecords(data []byte) (Dataset, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	out := make(Dataset, 0, len(elems))
	for _, elem := range elems {
		if !isObject(elem) {
			continue
		}
		rec, err := decodeRecord(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeRecord decodes one object. Numbers are read as literals so that values beyond
// float64 range become ±Inf instead of failing the whole file. Top-level numbers are
// converted to float64; nested ones stay json.Number and keep their literal text.
func decodeRecord(elem json.RawMessage) (RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.UseNumber()
	var rec RawRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	for k, v := range rec {
		if n, ok := v.(json.Number); ok {
			rec[k] = ParseNumber(n.String())
		}
	}
	return rec, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
