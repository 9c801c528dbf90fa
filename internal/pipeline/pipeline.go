// Package pipeline wires the compilation stages together: validation, IR
// building, feature analysis, and renderer dispatch. It is the one place
// that owns the shared component registry and the per-target batch loop.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/clifactory/clifactory/internal/config"
	"github.com/clifactory/clifactory/internal/errors"
	"github.com/clifactory/clifactory/internal/features"
	"github.com/clifactory/clifactory/internal/ir"
	"github.com/clifactory/clifactory/internal/logging"
	"github.com/clifactory/clifactory/internal/registry"
	"github.com/clifactory/clifactory/internal/renderer"
	"github.com/clifactory/clifactory/internal/validation"
)

// Pipeline owns one process's compilation state: the component registry,
// the renderer registry, and the analyzer thresholds. It is safe to render
// several targets from one Pipeline concurrently.
type Pipeline struct {
	cfg        *config.Config
	logger     logging.Logger
	analyzer   *features.Analyzer
	components *registry.Registry
	dispatcher *renderer.Dispatcher
}

// New wires a pipeline from configuration. version is stamped into
// generated files.
func New(cfg *config.Config, logger logging.Logger, version string) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	components := registry.New(cfg.Components.Dir, logger)
	registry.RegisterBuiltins(components)
	analyzer := features.NewAnalyzer(cfg.Features)

	return &Pipeline{
		cfg:        cfg,
		logger:     logger.WithComponent("pipeline"),
		analyzer:   analyzer,
		components: components,
		dispatcher: renderer.NewDispatcher(components, renderer.NewRegistry(), analyzer, logger, version),
	}
}

// Components exposes the shared registry, mainly so callers can seed or
// inspect it in tests.
func (p *Pipeline) Components() *registry.Registry { return p.components }

// Start begins watching the component library when auto reload is
// configured. Rendering works without calling Start.
func (p *Pipeline) Start(ctx context.Context) error {
	if !p.cfg.Components.AutoReload {
		return nil
	}
	return p.components.Watch(ctx)
}

// Close releases the component watcher, if one was started.
func (p *Pipeline) Close() error { return p.components.Close() }

// Validate runs the full validator set for one target.
func (p *Pipeline) Validate(description map[string]any, target string, mode validation.Mode) (*validation.Report, error) {
	return validation.ValidateAll(description, target, mode)
}

// Compile validates a description and builds its IR for one target. The
// validation report is returned in both outcomes so callers can always show
// findings; the IR is nil when validation blocks the build.
func (p *Pipeline) Compile(ctx context.Context, description map[string]any, target, sourceFilename string, mode validation.Mode) (*ir.IR, *validation.Report, error) {
	report, err := validation.ValidateAll(description, target, mode)
	if err != nil {
		return nil, nil, err
	}
	if !report.IsValid() {
		return nil, report, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("description is not valid for target %s: %s", target, report.Summary()))
	}

	builder, err := ir.NewBuilder(target)
	if err != nil {
		return nil, report, err
	}
	built, err := builder.Build(description, sourceFilename)
	if err != nil {
		return nil, report, err
	}
	p.logger.Debug(ctx, "description compiled",
		"target", target, "commands", len(built.CLI.Commands))
	return built, report, nil
}

// Analyze derives the feature requirements of a compiled IR.
func (p *Pipeline) Analyze(built *ir.IR) features.Requirements {
	return p.analyzer.Analyze(built)
}

// Render dispatches one compiled IR to its target's renderer.
func (p *Pipeline) Render(ctx context.Context, built *ir.IR) (*renderer.RenderResult, error) {
	return p.dispatcher.Render(ctx, built)
}

// TargetResult is the outcome for one target in a batch.
type TargetResult struct {
	Target string
	Report *validation.Report
	// Result is nil when the target never reached rendering.
	Result *renderer.RenderResult
	Err    error
}

// RenderBatch compiles and renders a description for several targets.
// Validation and building are sequential; rendering runs concurrently when
// configured, since every render only reads the frozen IRs and the shared
// append-only registry cache. A failure in one target never aborts the
// others: each TargetResult stands alone.
func (p *Pipeline) RenderBatch(ctx context.Context, description map[string]any, targets []string, sourceFilename string, mode validation.Mode) []TargetResult {
	results := make([]TargetResult, len(targets))
	compiled := make([]*ir.IR, len(targets))

	for i, target := range targets {
		built, report, err := p.Compile(ctx, description, target, sourceFilename, mode)
		results[i] = TargetResult{Target: target, Report: report, Err: err}
		compiled[i] = built
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if !p.cfg.Render.Parallel {
		group.SetLimit(1)
	}
	for i := range targets {
		if compiled[i] == nil {
			continue
		}
		i := i
		group.Go(func() error {
			result, err := p.dispatcher.Render(groupCtx, compiled[i])
			results[i].Result = result
			results[i].Err = err
			// Render errors stay target-scoped; returning them would
			// cancel sibling renders through the group context.
			return nil
		})
	}
	_ = group.Wait()
	return results
}
