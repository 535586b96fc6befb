package webhook

import (
	"encoding/json"
	"math"
	"strconv"
)

// decodeObject unmarshals a raw body into a generic JSON object. An empty or
// non-object body is a MalformedPayloadError.
func decodeObject(raw []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}
	if len(data) == 0 {
		return nil, &MalformedPayloadError{Err: errNoData}
	}
	return data, nil
}

var errNoData = jsonError("no event data provided")

type jsonError string

func (e jsonError) Error() string { return string(e) }

func childObject(m map[string]any, key string) map[string]any {
	if child, ok := m[key].(map[string]any); ok {
		return child
	}
	return map[string]any{}
}

func childArray(m map[string]any, key string) []any {
	if arr, ok := m[key].([]any); ok {
		return arr
	}
	return nil
}

// stringField coerces a JSON value to its string form. Numeric order ids
// (WooCommerce) arrive as JSON numbers and must not be rendered with an
// exponent or trailing zeros.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// floatField coerces a JSON number or decimal string to float64.
func floatField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// missingFields returns the subset of keys absent from m, preserving order.
func missingFields(m map[string]any, keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := m[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
