package cases

import (
	"github.com/zclconf/go-cty/cty"
)

// ParamSpec declares one named input on a case type: its semantic type, an
// optional default, and optional bounds. A spec with no default is required.
// Specs are immutable once declared and shared by every instance of the
// type; bound values live on the instances themselves.
type ParamSpec struct {
	Name    string
	Type    cty.Type
	Default *cty.Value
	Min     *cty.Value
	Max     *cty.Value
}

// Required reports whether a value must be supplied at construction.
func (s ParamSpec) Required() bool {
	return s.Default == nil
}

// bind coerces raw into the declared type and checks bounds. The caseType
// name is only used in error messages.
func (s ParamSpec) bind(caseType string, raw any) (cty.Value, error) {
	val, err := toCtyValue(raw, s.Type)
	if err != nil {
		return cty.NilVal, &ParameterTypeError{
			CaseType: caseType,
			Param:    s.Name,
			Raw:      raw,
			Want:     s.Type,
			Err:      err,
		}
	}
	if err := s.checkBounds(caseType, val); err != nil {
		return cty.NilVal, err
	}
	return val, nil
}

// checkBounds enforces Min/Max on the coerced value. Defaults are never
// passed through here; they are author-trusted.
func (s ParamSpec) checkBounds(caseType string, val cty.Value) error {
	if s.Min != nil && val.LessThan(*s.Min).True() {
		return &ParameterRangeError{
			CaseType: caseType,
			Param:    s.Name,
			Value:    val,
			Bound:    *s.Min,
			Violated: "minimum",
		}
	}
	if s.Max != nil && val.GreaterThan(*s.Max).True() {
		return &ParameterRangeError{
			CaseType: caseType,
			Param:    s.Name,
			Value:    val,
			Bound:    *s.Max,
			Violated: "maximum",
		}
	}
	return nil
}
