package cases

import (
	"fmt"
)

// Axis is one swept parameter: its name and the ordered candidate values.
type Axis struct {
	Param  string
	Values []any
}

// NewAxis builds a sweep axis. A single-value axis pins that parameter to
// the same value in every generated case.
func NewAxis(param string, values ...any) Axis {
	return Axis{Param: param, Values: values}
}

// AddSweep expands the cartesian product of the axes into instances of one
// case type and appends them to the list. Axis order defines iteration
// order: the first axis varies slowest and the last fastest, so
// axes (x=[1,2], y=[a,b]) yield (1,a) (1,b) (2,a) (2,b). Parameters not
// named by an axis take their declared defaults; a required parameter left
// uncovered fails with MissingParameterError. Expansion is all-or-nothing:
// when any combination fails to construct, nothing is added. The built
// instances are returned in generation order. An axis with no values makes
// the product empty; no axes at all yield a single all-defaults instance.
func (l *CaseList) AddSweep(ct *CaseType, axes ...Axis) ([]*Case, error) {
	seen := make(map[string]bool, len(axes))
	for _, ax := range axes {
		if ax.Param == "" {
			return nil, fmt.Errorf("%s: sweep axis has no parameter name", ct.name)
		}
		if seen[ax.Param] {
			return nil, fmt.Errorf("%s: sweep axis %q given twice", ct.name, ax.Param)
		}
		seen[ax.Param] = true
	}

	for _, ax := range axes {
		if len(ax.Values) == 0 {
			return nil, nil
		}
	}

	combos := 1
	for _, ax := range axes {
		combos *= len(ax.Values)
	}

	built := make([]*Case, 0, combos)
	idx := make([]int, len(axes))
	for {
		vals := make(Values, len(axes))
		for i, ax := range axes {
			vals[ax.Param] = ax.Values[idx[i]]
		}
		c, err := ct.New(vals)
		if err != nil {
			return nil, err
		}
		built = append(built, c)

		// odometer increment, last axis fastest
		k := len(axes) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(axes[k].Values) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			break
		}
	}

	l.cases = append(l.cases, built...)
	return built, nil
}
