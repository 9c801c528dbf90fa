package renderer

import (
	"path"

	"github.com/clifactory/clifactory/internal/ir"
	"github.com/clifactory/clifactory/internal/naming"
)

// The entry templates are deliberately small: the real per-target code
// fragments live in the component library, and the entry file only wires
// the generated header, the hook stubs, and the dispatch table together.

const pythonEntry = `{{ comment }} Code generated by clifactory {{ .Meta.GeneratorVersion }} from {{ .Meta.SourceFilename }}; DO NOT EDIT.
{{ comment }} Generated at {{ .Meta.GeneratedAt.UTC.Format "2006-01-02T15:04:05Z" }}
"""{{ .IR.CLI.Description }}"""

import sys
{{ if .Features.RichFormatting }}from rich.console import Console
{{ end }}

{{ range $path, $cmd := .IR.CLI.Commands }}
def {{ $cmd.HookName }}(args):
    """{{ $cmd.Description }}"""
    raise NotImplementedError({{ printf "%q" $path }})

{{ end }}
def main(argv=None):
    argv = sys.argv[1:] if argv is None else argv
    return dispatch(argv)
`

const nodeEntry = `{{ comment }} Code generated by clifactory {{ .Meta.GeneratorVersion }} from {{ .Meta.SourceFilename }}; DO NOT EDIT.
{{ comment }} Generated at {{ .Meta.GeneratedAt.UTC.Format "2006-01-02T15:04:05Z" }}
'use strict';

{{ range $path, $cmd := .IR.CLI.Commands }}
/** {{ $cmd.Description }} */
function {{ $cmd.HookName }}(args) {
  throw new Error('not implemented: {{ $path }}');
}

{{ end }}
module.exports = { {{ range $path, $cmd := .IR.CLI.Commands }}{{ $cmd.HookName }}, {{ end }}};
`

const typescriptEntry = `{{ comment }} Code generated by clifactory {{ .Meta.GeneratorVersion }} from {{ .Meta.SourceFilename }}; DO NOT EDIT.
{{ comment }} Generated at {{ .Meta.GeneratedAt.UTC.Format "2006-01-02T15:04:05Z" }}

export interface HookArgs {
  [key: string]: unknown;
}

{{ range $path, $cmd := .IR.CLI.Commands }}
/** {{ $cmd.Description }} */
export function {{ $cmd.HookName }}(args: HookArgs): void {
  throw new Error('not implemented: {{ $path }}');
}

{{ end }}
`

const rustEntry = `{{ comment }} Code generated by clifactory {{ .Meta.GeneratorVersion }} from {{ .Meta.SourceFilename }}; DO NOT EDIT.
{{ comment }} Generated at {{ .Meta.GeneratedAt.UTC.Format "2006-01-02T15:04:05Z" }}

{{ range $path, $cmd := .IR.CLI.Commands }}
/// {{ $cmd.Description }}
pub fn {{ $cmd.HookName }}() {
    unimplemented!({{ printf "%q" $path }});
}

{{ end }}
fn main() {
    std::process::exit(dispatch());
}
`

func pythonProfile() profile {
	return profile{
		target:        "python",
		commentPrefix: "#",
		sourceExt:     ".py",
		entryTemplate: pythonEntry,
		entryPath: func(p ir.ProjectInfo) string {
			return path.Join("src", naming.Snake(packageName(p)), "cli.py")
		},
	}
}

func nodeProfile() profile {
	return profile{
		target:        "nodejs",
		commentPrefix: "//",
		sourceExt:     ".js",
		entryTemplate: nodeEntry,
		entryPath: func(ir.ProjectInfo) string {
			return path.Join("src", "cli.js")
		},
	}
}

func typescriptProfile() profile {
	return profile{
		target:        "typescript",
		commentPrefix: "//",
		sourceExt:     ".ts",
		entryTemplate: typescriptEntry,
		entryPath: func(ir.ProjectInfo) string {
			return path.Join("src", "cli.ts")
		},
	}
}

func rustProfile() profile {
	return profile{
		target:        "rust",
		commentPrefix: "//",
		sourceExt:     ".rs",
		entryTemplate: rustEntry,
		entryPath: func(ir.ProjectInfo) string {
			return path.Join("src", "main.rs")
		},
	}
}
