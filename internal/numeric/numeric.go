// Package numeric holds optional number types that decode leniently from
// form-driven JSON. Decoding never fails: null, missing or non-numeric values
// leave the value unset, negative or non-finite values clamp to zero, and
// huge values saturate.
package numeric

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float is an optional non-negative float.
type Float struct {
	Value float64
	Set   bool
}

// F returns a set Float, clamped to be non-negative.
func F(v float64) Float {
	return Float{Value: Clamp(v), Set: true}
}

// Or returns the value when set, otherwise def. The value is clamped even
// when the Float was built as a literal.
func (f Float) Or(def float64) float64 {
	if !f.Set {
		return def
	}
	return Clamp(f.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(b []byte) error {
	v, ok := parse(b)
	if !ok {
		*f = Float{}
		return nil
	}
	*f = F(v)
	return nil
}

// MarshalJSON implements json.Marshaler. Unset values encode as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Int is an optional non-negative integer. Fractions are truncated.
type Int struct {
	Value int
	Set   bool
}

// I returns a set Int, clamped to be non-negative.
func I(v int) Int {
	if v < 0 {
		v = 0
	}
	return Int{Value: v, Set: true}
}

// Or returns the value when set, otherwise def.
func (i Int) Or(def int) int {
	if !i.Set {
		return def
	}
	if i.Value < 0 {
		return 0
	}
	return i.Value
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(b []byte) error {
	v, ok := parse(b)
	if !ok {
		*i = Int{}
		return nil
	}
	v = Clamp(v)
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	*i = Int{Value: int(v), Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler. Unset values encode as null.
func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Set {
		return []byte("null"), nil
	}
	return json.Marshal(i.Value)
}

// Max is the largest magnitude any decoded or clamped Float carries. Derived
// figures (cost * 6, size * 30) stay finite well below it.
const Max = 1e15

// Clamp maps negative, NaN and infinite values to zero and caps the rest at
// Max.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > Max {
		return Max
	}
	return v
}

// ParseLenient parses s as a number the way the decoders do. The second
// result is false when s is not numeric.
func ParseLenient(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parse(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false
		}
		return ParseLenient(s)
	}
	return ParseLenient(string(b))
}

// MulSat multiplies two non-negative ints, saturating at math.MaxInt.
func MulSat(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

// AddSat adds two non-negative ints, saturating at math.MaxInt.
func AddSat(a, b int) int {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
