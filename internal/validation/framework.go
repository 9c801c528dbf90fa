package validation

import (
	"fmt"
	"sync"

	"github.com/clifactory/clifactory/internal/errors"
	"github.com/clifactory/clifactory/internal/naming"
)

// Validator is one verification pass over the source description. Validators
// are registered explicitly at startup; the framework orders them by their
// declared dependencies before running any of them.
type Validator interface {
	// Name identifies the validator in dependency declarations and in
	// framework diagnostics.
	Name() string
	// Requires lists the names of validators whose Meta output this one
	// reads. The framework guarantees they run first.
	Requires() []string
	// Validate inspects the context and returns findings. It must not
	// return an error for problems in user data.
	Validate(ctx *Context) []Diagnostic
}

// Framework runs a fixed set of validators in dependency order. The order is
// computed once at construction and reused for every run.
type Framework struct {
	validators []Validator
	order      []int
}

// NewFramework orders the given validators topologically. Registration order
// breaks ties, so the execution order is deterministic for a fixed
// registration. A dependency cycle or a dependency on an unregistered
// validator is a configuration error.
func NewFramework(validators ...Validator) (*Framework, error) {
	index := make(map[string]int, len(validators))
	for i, v := range validators {
		if _, dup := index[v.Name()]; dup {
			return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("validator %q registered twice", v.Name()))
		}
		index[v.Name()] = i
	}

	indegree := make([]int, len(validators))
	dependents := make([][]int, len(validators))
	for i, v := range validators {
		for _, dep := range v.Requires() {
			j, ok := index[dep]
			if !ok {
				return nil, errors.NewConfigError(errors.ErrCodeValidatorMissing,
					fmt.Sprintf("validator %q requires unregistered validator %q", v.Name(), dep))
			}
			dependents[j] = append(dependents[j], i)
			indegree[i]++
		}
	}

	// Kahn's algorithm. The ready set is scanned in registration order each
	// round instead of kept as a queue, trading a little work for a stable,
	// easily reasoned-about order.
	order := make([]int, 0, len(validators))
	done := make([]bool, len(validators))
	for len(order) < len(validators) {
		progressed := false
		for i := range validators {
			if done[i] || indegree[i] != 0 {
				continue
			}
			done[i] = true
			order = append(order, i)
			for _, dep := range dependents[i] {
				indegree[dep]--
			}
			progressed = true
		}
		if !progressed {
			var stuck []string
			for i, v := range validators {
				if !done[i] {
					stuck = append(stuck, v.Name())
				}
			}
			return nil, errors.NewConfigError(errors.ErrCodeValidatorCycle,
				fmt.Sprintf("validator dependency cycle involving %v", stuck))
		}
	}

	return &Framework{validators: validators, order: order}, nil
}

// Order returns the validator names in execution order.
func (f *Framework) Order() []string {
	names := make([]string, len(f.order))
	for i, idx := range f.order {
		names[i] = f.validators[idx].Name()
	}
	return names
}

// Run executes every validator against the description and collects their
// findings into a Report. A panicking validator aborts the run; the panic is
// reported as a critical framework diagnostic naming the validator, so a
// broken validator can never silently drop findings.
func (f *Framework) Run(description map[string]any, target string, mode Mode) *Report {
	ctx := &Context{
		Description: description,
		Target:      target,
		Mode:        mode,
		Meta:        make(map[string]any),
	}

	var diags []Diagnostic
	for _, idx := range f.order {
		v := f.validators[idx]
		found, panicked := runOne(v, ctx)
		diags = append(diags, found...)
		if panicked {
			break
		}
	}
	return newReport(target, mode, diags)
}

func runOne(v Validator, ctx *Context) (diags []Diagnostic, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			diags = append(diags, Diagnostic{
				Location: "framework",
				Severity: SeverityCritical,
				Message:  fmt.Sprintf("validator %q failed unexpectedly: %v", v.Name(), r),
			})
		}
	}()
	return v.Validate(ctx), false
}

// defaultFramework builds the standard validator set once per process.
var defaultFramework = sync.OnceValues(func() (*Framework, error) {
	return NewFramework(DefaultValidators()...)
})

// ValidateAll runs the standard validator set over a description for one
// target. The returned error covers framework misconfiguration and an
// unsupported target; findings in the description live in the Report.
func ValidateAll(description map[string]any, target string, mode Mode) (*Report, error) {
	if _, ok := naming.ConventionFor(target); !ok {
		return nil, errors.ErrUnknownTarget(target, naming.Targets())
	}
	framework, err := defaultFramework()
	if err != nil {
		return nil, err
	}
	return framework.Run(description, target, mode), nil
}
