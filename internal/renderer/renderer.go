// Package renderer maps a compiled IR onto per-target generator backends
// and dispatches rendering with graceful degradation: a component gap for
// one target is surfaced as structured data, never a silent omission, and
// never affects another target in the same batch.
package renderer

import (
	"context"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/clifactory/clifactory/internal/errors"
	"github.com/clifactory/clifactory/internal/features"
	"github.com/clifactory/clifactory/internal/ir"
	"github.com/clifactory/clifactory/internal/naming"
	"github.com/clifactory/clifactory/internal/registry"
)

// Input is everything a renderer needs for one render call. Renderers read
// it; they never mutate the IR or the borrowed components.
type Input struct {
	IR         *ir.IR
	Meta       ir.GenerationMetadata
	Features   features.Requirements
	Components []*registry.Component
}

// Renderer generates the file map for one target language.
type Renderer interface {
	Target() string
	// Optional reports whether the renderer can produce correct output
	// without the named component. A missing optional component degrades
	// the render; a missing mandatory one fails it for this target.
	Optional(component string) bool
	Render(ctx context.Context, in *Input) (map[string]string, error)
}

// profile captures how one target lays out its generated sources.
type profile struct {
	target        string
	commentPrefix string
	sourceExt     string
	entryTemplate string
	entryPath     func(p ir.ProjectInfo) string
}

// targetRenderer is the shared renderer implementation; the four targets
// differ only by profile.
type targetRenderer struct {
	profile profile
	entry   *template.Template
}

func newTargetRenderer(p profile) (Renderer, error) {
	entry, err := template.New(p.target).Funcs(templateFuncs(p)).Parse(p.entryTemplate)
	if err != nil {
		return nil, errors.NewDefectError(errors.ErrCodeTemplateRender,
			fmt.Sprintf("entry template for target %q does not parse: %v", p.target, err))
	}
	return &targetRenderer{profile: p, entry: entry}, nil
}

func templateFuncs(p profile) template.FuncMap {
	return template.FuncMap{
		"snake":   naming.Snake,
		"camel":   naming.Camel,
		"pascal":  naming.Pascal,
		"kebab":   naming.Kebab,
		"comment": func() string { return p.commentPrefix },
		"join":    strings.Join,
	}
}

func (r *targetRenderer) Target() string { return r.profile.target }

// Optional is true for every component except the argument parser: a CLI
// that cannot parse its own arguments is not a degraded CLI, it is a broken
// one.
func (r *targetRenderer) Optional(component string) bool {
	return component != features.ComponentArgumentParser
}

func (r *targetRenderer) Render(ctx context.Context, in *Input) (map[string]string, error) {
	files := make(map[string]string, len(in.Components)+1)

	var entry strings.Builder
	if err := r.entry.Execute(&entry, in); err != nil {
		return nil, errors.NewRenderError(r.profile.target, errors.ErrCodeTemplateRender,
			fmt.Sprintf("rendering entry file: %v", err), err)
	}
	files[r.profile.entryPath(in.IR.Project)] = entry.String()

	for _, component := range in.Components {
		tmpl, err := template.New(component.Name).Funcs(templateFuncs(r.profile)).Parse(component.Content)
		if err != nil {
			return nil, errors.NewRenderError(r.profile.target, errors.ErrCodeTemplateRender,
				fmt.Sprintf("component %q does not parse: %v", component.Name, err), err)
		}
		var out strings.Builder
		if err := tmpl.Execute(&out, in); err != nil {
			return nil, errors.NewRenderError(r.profile.target, errors.ErrCodeTemplateRender,
				fmt.Sprintf("rendering component %q: %v", component.Name, err), err)
		}
		files[r.componentPath(component.Name)] = out.String()
	}
	return files, nil
}

func (r *targetRenderer) componentPath(name string) string {
	base := naming.Snake(name)
	if r.profile.target == "nodejs" || r.profile.target == "typescript" {
		base = naming.Camel(name)
	}
	return path.Join("src", "components", base+r.profile.sourceExt)
}

func packageName(p ir.ProjectInfo) string {
	for _, candidate := range []string{p.PackageName, p.CommandName, p.DisplayName} {
		if candidate != "" {
			return candidate
		}
	}
	return "cli"
}
