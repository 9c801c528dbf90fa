package registry

import "github.com/clifactory/clifactory/internal/naming"

// builtinArgumentParser is the baseline command-dispatch fragment used when
// a component library does not provide a target-specific argument parser.
// The argument parser is mandatory for every render, so shipping a fallback
// keeps a bare installation working; richer fragments in the library shadow
// it per target.
const builtinArgumentParser = `{{/* baseline argument parser */}}
{{- range $path, $cmd := .IR.CLI.Commands }}
{{ comment }} {{ $path }}: {{ $cmd.Description }}
{{ comment }}   handler {{ $cmd.HookName }}, {{ len $cmd.Arguments }} args, {{ len $cmd.Options }} options
{{- end }}
`

// RegisterBuiltins seeds the registry with the fallback fragments every
// target can rely on. Optional components are deliberately not seeded;
// their absence must stay visible as a degradation note.
func RegisterBuiltins(r *Registry) {
	for _, target := range naming.Targets() {
		r.RegisterFallback(&Component{
			Name:    "argument-parser",
			Target:  target,
			Content: builtinArgumentParser,
		})
	}
}
