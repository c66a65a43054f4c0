package cases

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// FlagSet returns a condition that is true when the named boolean parameter
// or result is true. Useful for opt-in steps gated by a flag parameter.
func FlagSet(name string) Condition {
	return func(c *Case) (bool, error) {
		return flagValue(c, name)
	}
}

// FlagClear returns a condition that is true when the named boolean
// parameter or result is false. The usual spelling for idempotency checks,
// e.g. skipping a step when its artifact already exists.
func FlagClear(name string) Condition {
	return func(c *Case) (bool, error) {
		v, err := flagValue(c, name)
		if err != nil {
			return false, err
		}
		return !v, nil
	}
}

func flagValue(c *Case, name string) (bool, error) {
	if v, ok := c.values[name]; ok {
		if v.Type() != cty.Bool {
			return false, fmt.Errorf("%s: parameter %q is %s, not bool",
				c.typ.name, name, v.Type().FriendlyName())
		}
		return v.True(), nil
	}

	_, cached := c.results[name]
	_, registered := c.typ.results[name]
	if cached || registered {
		v, err := c.Result(name)
		if err != nil {
			return false, err
		}
		if v.Type() != cty.Bool {
			return false, fmt.Errorf("%s: result %q is %s, not bool",
				c.typ.name, name, v.Type().FriendlyName())
		}
		return v.True(), nil
	}

	return false, fmt.Errorf("%s: no boolean parameter or result named %q", c.typ.name, name)
}
