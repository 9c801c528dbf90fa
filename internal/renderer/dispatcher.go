package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/clifactory/clifactory/internal/config"
	"github.com/clifactory/clifactory/internal/errors"
	"github.com/clifactory/clifactory/internal/features"
	"github.com/clifactory/clifactory/internal/ir"
	"github.com/clifactory/clifactory/internal/logging"
	"github.com/clifactory/clifactory/internal/registry"
)

// State tracks where a render call is in its lifecycle.
type State string

const (
	StateResolving          State = "resolving"
	StateComponentsGathered State = "components-gathered"
	StateRendering          State = "rendering"
	StateSucceeded          State = "succeeded"
	StateDegradedSucceeded  State = "degraded-succeeded"
	StateFailed             State = "failed"
)

// RenderResult is the structured outcome of one render call. Degradations
// are part of the result rather than log lines: silent feature loss across
// targets is the failure mode this package exists to prevent.
type RenderResult struct {
	Target       string
	State        State
	Files        map[string]string
	Degradations []string
	// Err is set when State is StateFailed; it names the missing mandatory
	// component or the template failure, scoped to this target.
	Err error
}

// Dispatcher resolves a target's renderer, gathers its components from the
// shared registry, and renders. One dispatcher serves all targets; render
// calls only read the frozen IR and the append-only component cache, so
// calls for independent targets may run concurrently.
type Dispatcher struct {
	components *registry.Registry
	renderers  *Registry
	analyzer   *features.Analyzer
	logger     logging.Logger
	version    string

	// now is replaceable so tests can pin generation timestamps.
	now func() time.Time
}

// NewDispatcher wires a dispatcher. version is stamped into generated
// output as the generator version.
func NewDispatcher(components *registry.Registry, renderers *Registry, analyzer *features.Analyzer, logger logging.Logger, version string) *Dispatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if analyzer == nil {
		analyzer = features.NewAnalyzer(config.Default().Features)
	}
	return &Dispatcher{
		components: components,
		renderers:  renderers,
		analyzer:   analyzer,
		logger:     logger.WithComponent("dispatcher"),
		version:    version,
		now:        time.Now,
	}
}

// Render generates the file map for the IR's target. Missing optional
// components degrade the render and are reported in the result; a missing
// mandatory component fails this target only, leaving other targets in the
// same batch untouched. The returned error is non-nil exactly when the
// result state is StateFailed.
func (d *Dispatcher) Render(ctx context.Context, built *ir.IR) (*RenderResult, error) {
	result := &RenderResult{Target: built.Target, State: StateResolving}

	renderer, err := d.renderers.ForTarget(built.Target)
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result, err
	}

	requirements := d.analyzer.Analyze(built)

	var gathered []*registry.Component
	seen := make(map[string]bool)
	for _, name := range requirements.Components() {
		resolved, err := d.components.Resolve(ctx, name, built.Target)
		if err != nil {
			missing, isNotFound := registry.MissingComponent(err)
			if missing == "" {
				missing = name
			}
			if isNotFound && renderer.Optional(name) {
				note := fmt.Sprintf("target %s lacks component %s; rendered without it", built.Target, missing)
				if missing != name {
					note = fmt.Sprintf("target %s lacks component %s, required by %s; rendered without it",
						built.Target, missing, name)
				}
				result.Degradations = append(result.Degradations, note)
				d.logger.Warn(ctx, err, "optional component missing",
					"target", built.Target, "component", missing, "required_by", name)
				continue
			}
			if isNotFound {
				err = errors.ErrMissingMandatory(built.Target, missing)
			}
			result.State = StateFailed
			result.Err = err
			return result, err
		}
		for _, component := range resolved {
			if !seen[component.Name] {
				seen[component.Name] = true
				gathered = append(gathered, component)
			}
		}
	}
	result.State = StateComponentsGathered

	input := &Input{
		IR:       built,
		Features: requirements,
		Meta: ir.GenerationMetadata{
			GeneratedAt:      d.now(),
			GeneratorVersion: d.version,
			SourceFilename:   built.SourceFilename,
		},
		Components: gathered,
	}

	result.State = StateRendering
	files, err := renderer.Render(ctx, input)
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result, err
	}
	result.Files = files

	if len(result.Degradations) > 0 {
		result.State = StateDegradedSucceeded
	} else {
		result.State = StateSucceeded
	}
	d.logger.Info(ctx, "render finished",
		"target", built.Target, "state", string(result.State),
		"files", len(files), "degradations", len(result.Degradations))
	return result, nil
}
