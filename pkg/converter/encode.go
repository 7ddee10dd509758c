package converter

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// encodeValue renders value as one CSV cell. A non-empty quote wraps the
// text and doubles every quote inside it; an empty quote emits the text
// verbatim.
func encodeValue(value any, quote string) (string, error) {
	text, err := textOf(value)
	if err != nil {
		return "", err
	}
	if quote == "" {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text) + 2*len(quote))
	b.WriteString(quote)
	b.WriteString(strings.ReplaceAll(text, quote, quote+quote))
	b.WriteString(quote)
	return b.String(), nil
}

// textOf is the total value-to-text mapping used for every cell.
func textOf(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return numberText(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32), nil
	case float64:
		return formatFloat(v, 64), nil
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return "", fmt.Errorf("%w: cannot render value of type %T: %w", ErrConversion, value, err)
		}
		return string(b), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		// records, maps, slices and anything else: compact JSON
		b, err := marshalCompact(v)
		if err != nil {
			return "", fmt.Errorf("%w: cannot render value of type %T: %w", ErrConversion, value, err)
		}
		return string(b), nil
	}
}

// marshalCompact is json.Marshal without HTML escaping and without the
// trailing newline json.Encoder appends.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// numberText keeps integer literals as written so large IDs keep every
// digit. Fractions and exponents print like any other float.
func numberText(n json.Number) string {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		return text
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return text
	}
	return formatFloat(f, 64)
}

// formatFloat prints the shortest decimal that round-trips, switching to
// exponent form for very large or very small magnitudes.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'e', -1, bits)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
