package cases

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/harrison/casework/internal/schedule"
)

// Values holds raw parameter values for constructing a case instance, keyed
// by parameter name. Values may be native Go values, strings from a command
// surface, or cty values.
type Values map[string]any

// ResultFunc computes a named result from a case instance. Results are
// computed on first access and cached per instance.
type ResultFunc func(*Case) (cty.Value, error)

// CaseType is the shared metadata for one kind of case: its parameter and
// step declarations in declaration order, plus any registered results.
// Declarations are collected through the builder methods and are frozen once
// the first case of the type runs. All instances of the type share one
// CaseType; per-instance state lives on the Case.
type CaseType struct {
	name    string
	params  []ParamSpec
	steps   []StepSpec
	results map[string]ResultFunc

	mu     sync.Mutex
	order  []string
	sealed bool
}

// NewCaseType starts the declaration of a new case type. Declaration
// mistakes (duplicate names, invalid defaults or bounds, declaring after the
// type has run) are author errors and panic, the same way duplicate
// registrations do in net/http.
func NewCaseType(name string) *CaseType {
	if name == "" {
		panic("cases: case type name must not be empty")
	}
	return &CaseType{name: name, results: make(map[string]ResultFunc)}
}

// Name returns the case type's name.
func (ct *CaseType) Name() string {
	return ct.name
}

// ParamOption configures a parameter declaration.
type ParamOption func(*paramConfig)

type paramConfig struct {
	def        any
	hasDefault bool
	min        any
	hasMin     bool
	max        any
	hasMax     bool
}

// Default declares a default value. A parameter with a default is optional.
// Defaults are author-trusted and are not re-checked against bounds.
func Default(v any) ParamOption {
	return func(c *paramConfig) {
		c.def = v
		c.hasDefault = true
	}
}

// Min declares an inclusive lower bound. Only valid for number parameters.
func Min(v any) ParamOption {
	return func(c *paramConfig) {
		c.min = v
		c.hasMin = true
	}
}

// Max declares an inclusive upper bound. Only valid for number parameters.
func Max(v any) ParamOption {
	return func(c *paramConfig) {
		c.max = v
		c.hasMax = true
	}
}

// Param declares a named input. Passing cty.NilType infers the type from the
// declared default; a parameter with neither a type nor a default is
// rejected. Returns the receiver so declarations chain.
func (ct *CaseType) Param(name string, ty cty.Type, opts ...ParamOption) *CaseType {
	ct.mustDeclare("parameter", name)
	if name == "" {
		panic(fmt.Sprintf("cases: %s: parameter name must not be empty", ct.name))
	}
	for _, p := range ct.params {
		if p.Name == name {
			panic(fmt.Sprintf("cases: %s: parameter %q declared twice", ct.name, name))
		}
	}

	var cfg paramConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if ty == cty.NilType {
		if !cfg.hasDefault {
			panic(fmt.Sprintf("cases: %s: parameter %q needs a type or a default", ct.name, name))
		}
		ty = impliedType(ct.name, name, cfg.def)
	}

	spec := ParamSpec{Name: name, Type: ty}
	if cfg.hasDefault {
		val, err := toCtyValue(cfg.def, ty)
		if err != nil {
			panic(fmt.Sprintf("cases: %s: parameter %q: invalid default: %v", ct.name, name, err))
		}
		spec.Default = &val
	}
	if cfg.hasMin || cfg.hasMax {
		if ty != cty.Number {
			panic(fmt.Sprintf("cases: %s: parameter %q: bounds are only valid for number parameters", ct.name, name))
		}
		if cfg.hasMin {
			val, err := toCtyValue(cfg.min, cty.Number)
			if err != nil {
				panic(fmt.Sprintf("cases: %s: parameter %q: invalid minimum: %v", ct.name, name, err))
			}
			spec.Min = &val
		}
		if cfg.hasMax {
			val, err := toCtyValue(cfg.max, cty.Number)
			if err != nil {
				panic(fmt.Sprintf("cases: %s: parameter %q: invalid maximum: %v", ct.name, name, err))
			}
			spec.Max = &val
		}
		if spec.Min != nil && spec.Max != nil && spec.Min.GreaterThan(*spec.Max).True() {
			panic(fmt.Sprintf("cases: %s: parameter %q: minimum %s exceeds maximum %s",
				ct.name, name, valueString(*spec.Min), valueString(*spec.Max)))
		}
	}

	ct.params = append(ct.params, spec)
	return ct
}

// Step declares a named unit of work. Steps run in declaration order unless
// DependsOn says otherwise. Returns the receiver so declarations chain.
func (ct *CaseType) Step(name string, action Action, opts ...StepOption) *CaseType {
	ct.mustDeclare("step", name)
	if name == "" {
		panic(fmt.Sprintf("cases: %s: step name must not be empty", ct.name))
	}
	if action == nil {
		panic(fmt.Sprintf("cases: %s: step %q has no action", ct.name, name))
	}
	for _, s := range ct.steps {
		if s.Name == name {
			panic(fmt.Sprintf("cases: %s: step %q declared twice", ct.name, name))
		}
	}

	spec := StepSpec{Name: name, Index: len(ct.steps), Action: action}
	for _, opt := range opts {
		opt(&spec)
	}

	ct.steps = append(ct.steps, spec)
	return ct
}

// Result declares a named lazy result computed from a case instance on first
// access. Returns the receiver so declarations chain.
func (ct *CaseType) Result(name string, f ResultFunc) *CaseType {
	ct.mustDeclare("result", name)
	if name == "" {
		panic(fmt.Sprintf("cases: %s: result name must not be empty", ct.name))
	}
	if f == nil {
		panic(fmt.Sprintf("cases: %s: result %q has no function", ct.name, name))
	}
	if _, exists := ct.results[name]; exists {
		panic(fmt.Sprintf("cases: %s: result %q declared twice", ct.name, name))
	}
	ct.results[name] = f
	return ct
}

// Params returns the parameter declarations in declaration order.
func (ct *CaseType) Params() []ParamSpec {
	out := make([]ParamSpec, len(ct.params))
	copy(out, ct.params)
	return out
}

// Steps returns the step declarations in declaration order.
func (ct *CaseType) Steps() []StepSpec {
	out := make([]StepSpec, len(ct.steps))
	copy(out, ct.steps)
	return out
}

// Validate builds the step schedule without running anything, surfacing
// dependency definition and cycle errors. Run performs the same check
// lazily on first use.
func (ct *CaseType) Validate() error {
	_, err := ct.executionOrder()
	return err
}

// New constructs a case instance from raw parameter values. Every declared
// parameter is bound through its spec before the instance exists; a value
// for an undeclared parameter, a missing required value, a coercion failure
// or a bounds violation means no instance is created.
func (ct *CaseType) New(values Values) (*Case, error) {
	declared := make(map[string]bool, len(ct.params))
	for _, p := range ct.params {
		declared[p.Name] = true
	}

	var unknown []string
	for name := range values {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%s: unknown parameter %q", ct.name, unknown[0])
	}

	bound := make(map[string]cty.Value, len(ct.params))
	for _, p := range ct.params {
		raw, ok := values[p.Name]
		if !ok {
			if p.Default == nil {
				return nil, &MissingParameterError{CaseType: ct.name, Param: p.Name}
			}
			bound[p.Name] = *p.Default
			continue
		}
		val, err := p.bind(ct.name, raw)
		if err != nil {
			return nil, err
		}
		bound[p.Name] = val
	}

	status := make(map[string]Status, len(ct.steps))
	for _, s := range ct.steps {
		status[s.Name] = StatusPending
	}

	return &Case{
		typ:     ct,
		id:      uuid.NewString(),
		values:  bound,
		status:  status,
		results: make(map[string]cty.Value),
	}, nil
}

// executionOrder computes and caches the step schedule. The schedule is
// validated lazily on first use, not at declaration time.
func (ct *CaseType) executionOrder() ([]string, error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if ct.order != nil {
		return ct.order, nil
	}

	nodes := make([]schedule.Node, len(ct.steps))
	for i, s := range ct.steps {
		nodes[i] = schedule.Node{Name: s.Name, DependsOn: s.DependsOn, Index: s.Index}
	}
	order, err := schedule.Order(nodes)
	if err != nil {
		return nil, err
	}
	ct.order = order
	return order, nil
}

func (ct *CaseType) step(name string) *StepSpec {
	for i := range ct.steps {
		if ct.steps[i].Name == name {
			return &ct.steps[i]
		}
	}
	return nil
}

func (ct *CaseType) seal() {
	ct.mu.Lock()
	ct.sealed = true
	ct.mu.Unlock()
}

func (ct *CaseType) mustDeclare(kind, name string) {
	ct.mu.Lock()
	sealed := ct.sealed
	ct.mu.Unlock()
	if sealed {
		panic(fmt.Sprintf("cases: %s: cannot declare %s %q after a case of this type has run", ct.name, kind, name))
	}
}

func impliedType(caseType, param string, def any) cty.Type {
	if v, ok := def.(cty.Value); ok {
		return v.Type()
	}
	if _, ok := def.(string); ok {
		return cty.String
	}
	ty, err := gocty.ImpliedType(def)
	if err != nil {
		panic(fmt.Sprintf("cases: %s: parameter %q: cannot infer type from default: %v", caseType, param, err))
	}
	return ty
}
