// Package ir defines the frozen, language-neutral intermediate
// representation of a CLI and the builder that compiles a validated source
// description into it.
//
// Everything the builder returns is read-only by contract: the same IR value
// may be rendered for several targets in one process, so no renderer or
// analyzer may mutate it. Target-specific adjustments must produce new
// derived values.
package ir

import "time"

// Argument is one positional parameter of a command.
type Argument struct {
	Name        string
	Description string
	// Type is one of the closed argument type tags:
	// string, int, float, bool, path.
	Type     string
	Required bool
	Default  any
	// Multiple marks a variadic argument.
	Multiple bool
	// Nargs is the declared multiplicity specifier: "*", "+", "?" or "".
	Nargs string
}

// Option is one named flag of a command.
type Option struct {
	Name        string
	Short       string
	Description string
	// Type is one of the closed option type tags:
	// str, int, float, bool, choice, path.
	Type     string
	Default  any
	Required bool
	Multiple bool
	// Choices is non-empty iff Type is "choice".
	Choices []string
}

// Command is one node of the CLI's command tree.
type Command struct {
	Name        string
	Description string
	// Path is the command name path from root, e.g. ["project","build"].
	Path []string
	// HookName is the target-specific handler identifier derived from Path,
	// e.g. on_project_build or onProjectBuild.
	HookName    string
	Arguments   []Argument
	Options     []Option
	Subcommands []*Command
	// IsGroup marks commands that only exist to hold subcommands.
	IsGroup bool
	// Depth is 1 for top-level commands.
	Depth int
}

// DottedPath renders the command path as the flattened-table key.
func (c *Command) DottedPath() string {
	out := ""
	for i, seg := range c.Path {
		if i > 0 {
			out += "."
		}
		out += seg
	}
	return out
}

// ProjectInfo carries the project metadata renderers stamp into generated
// packaging files.
type ProjectInfo struct {
	DisplayName string
	Description string
	Version     string
	Author      string
	License     string
	PackageName string
	CommandName string
	// OutputPath is a hint for where generated sources should land,
	// relative to the project root.
	OutputPath string
}

// CompletionConfig describes the shell-completion support a CLI wants.
type CompletionConfig struct {
	Enabled bool
	Shells  []string
}

// InstallationInfo carries packaging metadata. It is not behaviorally
// load-bearing for the pipeline but is part of the frozen payload renderers
// receive.
type InstallationInfo struct {
	RegistryName    string
	SetupPath       string
	DevelopmentPath string
	Extras          map[string][]string
}

// FeatureFlags are the optional capabilities the description asks for
// explicitly. Derived requirements live in the features package.
type FeatureFlags struct {
	Interactive bool
	Completion  bool
	Plugins     bool
	ConfigFile  bool
}

// CLISchema is the whole command surface of one CLI.
type CLISchema struct {
	Root *Command
	// Commands is the flattened index of every command reachable from Root,
	// keyed by dotted path. Built together with the tree, so the index and
	// the tree can never disagree.
	Commands      map[string]*Command
	GlobalOptions []Option
	Completion    CompletionConfig
	Tagline       string
	Description   string
	Version       string
	// HeaderSections and FooterNote are free-form help text blocks some
	// descriptions declare.
	HeaderSections []string
	FooterNote     string
	MaxDepth       int
}

// IR is the complete compiled form of one source description for one
// target. Frozen after Build returns.
type IR struct {
	Target       string
	Project      ProjectInfo
	CLI          *CLISchema
	Flags        FeatureFlags
	Installation InstallationInfo
	// Dependencies maps a dependency category (python, system, npm, rust)
	// to package names.
	Dependencies map[string][]string
	// Source is a deep copy of the original description, kept for audit
	// and debugging output.
	Source         map[string]any
	SourceFilename string
}

// GenerationMetadata is stamped onto rendered output at render time, not
// build time, so one IR can be rendered repeatedly with fresh timestamps.
type GenerationMetadata struct {
	GeneratedAt      time.Time
	GeneratorVersion string
	SourceFilename   string
}
