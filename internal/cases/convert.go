package cases

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toCtyValue coerces a raw value into the wanted cty type. Raw values may be
// cty values already, strings from a command surface, or native Go values.
func toCtyValue(raw any, want cty.Type) (cty.Value, error) {
	switch v := raw.(type) {
	case cty.Value:
		return convert.Convert(v, want)
	case string:
		return stringToCtyValue(v, want)
	default:
		implied, err := gocty.ImpliedType(raw)
		if err != nil {
			return cty.NilVal, err
		}
		val, err := gocty.ToCtyValue(raw, implied)
		if err != nil {
			return cty.NilVal, err
		}
		return convert.Convert(val, want)
	}
}

// stringToCtyValue parses text into the wanted type. Numbers follow standard
// decimal literal rules, booleans accept true/false case-insensitively, and
// any other type goes through its own conversion from string.
func stringToCtyValue(s string, want cty.Type) (cty.Value, error) {
	switch {
	case want == cty.String:
		return cty.StringVal(s), nil
	case want == cty.Number:
		return cty.ParseNumberVal(strings.TrimSpace(s))
	case want == cty.Bool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return cty.True, nil
		case "false":
			return cty.False, nil
		default:
			return cty.NilVal, fmt.Errorf("%q is not a boolean", s)
		}
	default:
		return convert.Convert(cty.StringVal(s), want)
	}
}

// NativeValue converts a cty value to its closest native Go representation,
// for encoding into artifacts and history rows. Whole numbers come back as
// int64 so encoders do not render 3 as 3.0.
func NativeValue(v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Type() {
	case cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case cty.String:
		return v.AsString()
	case cty.Bool:
		return v.True()
	default:
		return valueString(v)
	}
}

// valueString renders a cty value for error messages and logs.
func valueString(v cty.Value) string {
	if v.IsNull() {
		return "<null>"
	}
	switch v.Type() {
	case cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	default:
		return v.GoString()
	}
}
