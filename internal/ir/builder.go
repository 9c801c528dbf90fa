package ir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clifactory/clifactory/internal/errors"
	"github.com/clifactory/clifactory/internal/naming"
)

// Closed type vocabularies. The validation package enforces these against
// user input; the builder re-checks because an unknown tag reaching it means
// the validation/builder contract was broken, which must surface as a
// defect rather than be silently coerced.
var (
	argumentTypes = map[string]bool{
		"string": true, "int": true, "float": true, "bool": true, "path": true,
	}
	optionTypes = map[string]bool{
		"str": true, "int": true, "float": true, "bool": true, "choice": true, "path": true,
	}
)

// Builder compiles validated descriptions into IR for one target. The
// caller must have obtained a passing validation report for the same
// description and target; the builder trusts that and reports anything
// validation should have caught as a defect.
type Builder struct {
	target string
	conv   naming.Convention
}

// NewBuilder returns a builder for the given target language.
func NewBuilder(target string) (*Builder, error) {
	conv, ok := naming.ConventionFor(target)
	if !ok {
		return nil, errors.ErrUnknownTarget(target, naming.Targets())
	}
	return &Builder{target: strings.ToLower(target), conv: conv}, nil
}

// Build compiles a validated description. Two passes: the first indexes
// every command path, the second constructs the immutable Command graph
// bottom-up and the flattened lookup table alongside it, so no node is ever
// observable half-built. Build is deterministic: the same description and
// target always produce a structurally identical IR.
func Build(description map[string]any, target string) (*IR, error) {
	b, err := NewBuilder(target)
	if err != nil {
		return nil, err
	}
	return b.Build(description, "")
}

// Build compiles a validated description, recording sourceFilename in the
// IR for audit output. sourceFilename may be empty.
func (b *Builder) Build(description map[string]any, sourceFilename string) (*IR, error) {
	cli, _ := asMap(description["cli"])

	index, err := indexCommandPaths(cli["commands"], nil)
	if err != nil {
		return nil, err
	}
	maxDepth := 0
	for _, path := range index {
		if d := strings.Count(path, ".") + 1; d > maxDepth {
			maxDepth = d
		}
	}

	table := make(map[string]*Command, len(index))
	subcommands, err := b.buildCommandSet(cli["commands"], nil, 1, table)
	if err != nil {
		return nil, err
	}

	globalOptions, err := b.buildOptions(cli["options"], "cli.options")
	if err != nil {
		return nil, err
	}
	rootArguments, err := b.buildArguments(cli["args"], "cli.args")
	if err != nil {
		return nil, err
	}

	root := &Command{
		Name:        firstNonEmpty(getString(cli, "name"), getString(description, "command_name"), getString(description, "package_name")),
		Description: firstNonEmpty(getString(cli, "description"), getString(cli, "tagline")),
		Arguments:   rootArguments,
		Options:     globalOptions,
		Subcommands: subcommands,
		IsGroup:     len(subcommands) > 0,
	}

	schema := &CLISchema{
		Root:           root,
		Commands:       table,
		GlobalOptions:  globalOptions,
		Completion:     buildCompletion(description),
		Tagline:        firstNonEmpty(getString(cli, "tagline"), getString(cli, "description")),
		Description:    getString(cli, "description"),
		Version:        firstNonEmpty(getString(cli, "version"), getString(description, "version"), "1.0.0"),
		HeaderSections: stringSlice(cli["header_sections"]),
		FooterNote:     getString(cli, "footer_note"),
		MaxDepth:       maxDepth,
	}

	return &IR{
		Target:         b.target,
		Project:        buildProject(description, cli),
		CLI:            schema,
		Flags:          buildFlags(description),
		Installation:   buildInstallation(description),
		Dependencies:   buildDependencies(description),
		Source:         deepCopyMap(description),
		SourceFilename: sourceFilename,
	}, nil
}

// indexCommandPaths is the first pass: it records every dotted command path
// and rejects trees validation should never have let through.
func indexCommandPaths(raw any, parent []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(name string, spec map[string]any) error {
		if name == "" {
			return errors.NewDefectError(errors.ErrCodeBrokenTree,
				fmt.Sprintf("unnamed command under %q reached the builder", strings.Join(parent, ".")))
		}
		path := strings.Join(append(append([]string{}, parent...), name), ".")
		if seen[path] {
			return errors.NewDefectError(errors.ErrCodeBrokenTree,
				fmt.Sprintf("duplicate command path %q reached the builder", path))
		}
		seen[path] = true
		paths = append(paths, path)

		nested, err := indexCommandPaths(spec["subcommands"], append(append([]string{}, parent...), name))
		if err != nil {
			return err
		}
		paths = append(paths, nested...)
		return nil
	}

	switch commands := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		for _, name := range sortedKeys(commands) {
			spec, _ := asMap(commands[name])
			if spec == nil {
				spec = map[string]any{}
			}
			if err := add(name, spec); err != nil {
				return nil, err
			}
		}
	case []any:
		for _, entry := range commands {
			spec, ok := asMap(entry)
			if !ok {
				return nil, errors.NewDefectError(errors.ErrCodeBrokenTree,
					fmt.Sprintf("non-mapping command entry under %q reached the builder", strings.Join(parent, ".")))
			}
			if err := add(getString(spec, "name"), spec); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.NewDefectError(errors.ErrCodeBrokenTree,
			fmt.Sprintf("commands under %q are neither a mapping nor a list", strings.Join(parent, ".")))
	}
	return paths, nil
}

// buildCommandSet is the second pass. Children are built before their
// parent's Command value is assembled, and every command registers in the
// flattened table as it is completed, so the tree invariant holds by
// construction.
func (b *Builder) buildCommandSet(raw any, parent []string, depth int, table map[string]*Command) ([]*Command, error) {
	var out []*Command

	build := func(name string, spec map[string]any) error {
		cmd, err := b.buildCommand(name, spec, parent, depth, table)
		if err != nil {
			return err
		}
		out = append(out, cmd)
		table[cmd.DottedPath()] = cmd
		return nil
	}

	switch commands := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		for _, name := range sortedKeys(commands) {
			spec, _ := asMap(commands[name])
			if spec == nil {
				spec = map[string]any{}
			}
			if err := build(name, spec); err != nil {
				return nil, err
			}
		}
	case []any:
		for _, entry := range commands {
			spec, _ := asMap(entry)
			if err := build(getString(spec, "name"), spec); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (b *Builder) buildCommand(name string, spec map[string]any, parent []string, depth int, table map[string]*Command) (*Command, error) {
	path := append(append([]string{}, parent...), name)
	location := strings.Join(path, ".")

	subcommands, err := b.buildCommandSet(spec["subcommands"], path, depth+1, table)
	if err != nil {
		return nil, err
	}
	arguments, err := b.buildArguments(argList(spec), location+".args")
	if err != nil {
		return nil, err
	}
	options, err := b.buildOptions(spec["options"], location+".options")
	if err != nil {
		return nil, err
	}

	hook := firstNonEmpty(getString(spec, "hook"), getString(spec, "hook_name"))
	if hook == "" {
		hook = naming.HookName(path, b.conv)
	}
	if !naming.ValidHookName(hook, b.conv) {
		return nil, errors.NewDefectError(errors.ErrCodeBadHookName,
			fmt.Sprintf("hook %q for command %q does not match the %s convention of target %q", hook, location, b.conv, b.target))
	}

	return &Command{
		Name:        name,
		Description: firstNonEmpty(getString(spec, "description"), getString(spec, "desc")),
		Path:        path,
		HookName:    hook,
		Arguments:   arguments,
		Options:     options,
		Subcommands: subcommands,
		IsGroup:     len(subcommands) > 0,
		Depth:       depth,
	}, nil
}

func (b *Builder) buildArguments(raw any, location string) ([]Argument, error) {
	list, _ := asSlice(raw)
	var out []Argument
	for i, entry := range list {
		spec, ok := asMap(entry)
		if !ok {
			continue
		}
		typeTag := getString(spec, "type")
		if typeTag == "" {
			typeTag = "string"
		}
		if !argumentTypes[typeTag] {
			return nil, errors.ErrUnknownType(fmt.Sprintf("%s[%d]", location, i), typeTag)
		}
		required := true
		if r, ok := spec["required"].(bool); ok {
			required = r
		}
		nargs := getString(spec, "nargs")
		multiple, _ := spec["multiple"].(bool)
		out = append(out, Argument{
			Name:        getString(spec, "name"),
			Description: firstNonEmpty(getString(spec, "description"), getString(spec, "desc")),
			Type:        typeTag,
			Required:    required,
			Default:     spec["default"],
			Multiple:    multiple || nargs == "*" || nargs == "+",
			Nargs:       nargs,
		})
	}
	return out, nil
}

func (b *Builder) buildOptions(raw any, location string) ([]Option, error) {
	list, _ := asSlice(raw)
	var out []Option
	for i, entry := range list {
		spec, ok := asMap(entry)
		if !ok {
			continue
		}
		typeTag := getString(spec, "type")
		if typeTag == "" {
			typeTag = "str"
		}
		if !optionTypes[typeTag] {
			return nil, errors.ErrUnknownType(fmt.Sprintf("%s[%d]", location, i), typeTag)
		}
		required, _ := spec["required"].(bool)
		multiple, _ := spec["multiple"].(bool)
		// Choices only mean something for the choice type; a lenient run
		// may let a stray choices list through on another type, and the
		// frozen option must not carry it.
		var choices []string
		if typeTag == "choice" {
			choices = stringSlice(spec["choices"])
		}
		out = append(out, Option{
			Name:        getString(spec, "name"),
			Short:       getString(spec, "short"),
			Description: firstNonEmpty(getString(spec, "description"), getString(spec, "desc")),
			Type:        typeTag,
			Default:     spec["default"],
			Required:    required,
			Multiple:    multiple,
			Choices:     choices,
		})
	}
	return out, nil
}

func buildProject(description, cli map[string]any) ProjectInfo {
	return ProjectInfo{
		DisplayName: firstNonEmpty(getString(description, "display_name"), getString(description, "command_name")),
		Description: getString(description, "description"),
		Version:     firstNonEmpty(getString(cli, "version"), getString(description, "version"), "1.0.0"),
		Author:      getString(description, "author"),
		License:     getString(description, "license"),
		PackageName: getString(description, "package_name"),
		CommandName: getString(description, "command_name"),
		OutputPath:  getString(description, "output_path"),
	}
}

func buildCompletion(description map[string]any) CompletionConfig {
	// Completion defaults to enabled for the common shells; descriptions
	// opt out explicitly.
	completion := CompletionConfig{Enabled: true, Shells: []string{"bash", "zsh", "fish"}}
	spec, ok := asMap(description["completion"])
	if !ok {
		return completion
	}
	if enabled, ok := spec["enabled"].(bool); ok {
		completion.Enabled = enabled
	}
	if shells := stringSlice(spec["shells"]); len(shells) > 0 {
		completion.Shells = shells
	}
	return completion
}

func buildFlags(description map[string]any) FeatureFlags {
	features, _ := asMap(description["features"])
	flag := func(keys ...string) bool {
		for _, key := range keys {
			if v, ok := features[key].(bool); ok {
				return v
			}
		}
		return false
	}
	return FeatureFlags{
		Interactive: flag("interactive", "interactive_mode"),
		Completion:  flag("completion"),
		Plugins:     flag("plugins", "plugin_system"),
		ConfigFile:  flag("config", "config_file"),
	}
}

func buildInstallation(description map[string]any) InstallationInfo {
	spec, _ := asMap(description["installation"])
	extras := make(map[string][]string)
	if raw, ok := asMap(spec["extras"]); ok {
		for _, key := range sortedKeys(raw) {
			extras[key] = stringSlice(raw[key])
		}
	}
	return InstallationInfo{
		RegistryName:    firstNonEmpty(getString(spec, "registry_name"), getString(spec, "pypi_name"), getString(description, "package_name")),
		SetupPath:       getString(spec, "setup_path"),
		DevelopmentPath: firstNonEmpty(getString(spec, "development_path"), "."),
		Extras:          extras,
	}
}

// buildDependencies normalizes the declared dependencies into per-category
// lists. Plain strings and {name, type} entries are both accepted; entries
// of type "command" are system-level prerequisites rather than packages.
func buildDependencies(description map[string]any) map[string][]string {
	deps := map[string][]string{
		"python": {}, "system": {}, "npm": {}, "rust": {},
	}

	collect := func(raw any) {
		list, _ := asSlice(raw)
		for _, entry := range list {
			switch dep := entry.(type) {
			case string:
				deps["python"] = append(deps["python"], dep)
			case map[string]any:
				name := getString(dep, "name")
				if name == "" {
					continue
				}
				if getString(dep, "type") == "command" {
					deps["system"] = append(deps["system"], name)
				} else {
					deps["python"] = append(deps["python"], name)
				}
			}
		}
	}

	if spec, ok := asMap(description["dependencies"]); ok {
		collect(spec["required"])
		collect(spec["optional"])
	}

	if installation, ok := asMap(description["installation"]); ok {
		if extras, ok := asMap(installation["extras"]); ok {
			deps["system"] = append(deps["system"], stringSlice(extras["apt"])...)
			deps["npm"] = append(deps["npm"], stringSlice(extras["npm"])...)
			deps["rust"] = append(deps["rust"], stringSlice(extras["cargo"])...)
		}
	}
	return deps
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func argList(spec map[string]any) any {
	if _, ok := spec["args"]; ok {
		return spec["args"]
	}
	return spec["arguments"]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stringSlice(raw any) []string {
	list, _ := asSlice(raw)
	var out []string
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// deepCopyMap clones the description so the IR's audit copy cannot alias
// caller-owned data.
func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}
