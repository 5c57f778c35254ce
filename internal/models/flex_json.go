package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// FlexFloat decodes from a JSON number or a string. Bookmaker exports and
// legacy spreadsheets write odds as "1,85" or "1.85"; both become 1.85.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flex float: %w", err)
	}
	v, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// ParseDecimal parses a number that may use a decimal comma. Empty input is 0.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}

// fieldMaps caches JSON tag -> struct field index mappings per type
var fieldMaps sync.Map

func fieldMapFor(t reflect.Type) map[string]int {
	if m, ok := fieldMaps.Load(t); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		m[strings.Split(tag, ",")[0]] = i
	}
	fieldMaps.Store(t, m)
	return m
}

// DecodeFlexible unmarshals a JSON object into the struct pointed to by dst,
// accepting both string-encoded and native JSON types. Third-party APIs and
// hand-edited exports are inconsistent about quoting numbers and booleans.
func DecodeFlexible(data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("flex unmarshal: dst must be a pointer to struct, got %T", dst)
	}

	// Fast path: try standard unmarshal (works when all types match natively)
	if err := json.Unmarshal(data, dst); err == nil {
		return nil
	}

	// Slow path: field-by-field with string-to-native coercion
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	v := rv.Elem()
	fieldMap := fieldMapFor(v.Type())

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		// Value is a JSON string but target is numeric/bool; coerce
		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil || s == "" {
				continue
			}
			coerceStringToField(fv, s)
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) {
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		if n, err := ParseDecimal(s); err == nil {
			fv.SetFloat(n)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// "28.5" truncates to 28
		if n, err := ParseDecimal(s); err == nil {
			fv.SetInt(int64(n))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := ParseDecimal(s); err == nil && n >= 0 {
			fv.SetUint(uint64(n))
		}
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "sim", "yes", "y":
			fv.SetBool(true)
		case "nao", "não", "no", "n":
			fv.SetBool(false)
		default:
			if b, err := strconv.ParseBool(s); err == nil {
				fv.SetBool(b)
			}
		}
	case reflect.String:
		fv.SetString(s)
	}
}
