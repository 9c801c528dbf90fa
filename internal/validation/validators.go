package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clifactory/clifactory/internal/naming"
)

// Closed vocabularies shared with the source description format.
var (
	argumentTypes = map[string]bool{
		"string": true, "int": true, "float": true, "bool": true, "path": true,
	}
	optionTypes = map[string]bool{
		"str": true, "int": true, "float": true, "bool": true, "choice": true, "path": true,
	}
	completionShells = map[string]bool{
		"bash": true, "zsh": true, "fish": true,
	}
)

// Exit codes above 125 collide with shell-reserved values (126, 127, and the
// 128+signal range).
const maxExitCode = 125

// knownTopLevelKeys are the description sections the pipeline understands.
var knownTopLevelKeys = map[string]bool{
	"package_name": true, "command_name": true, "display_name": true,
	"description": true, "version": true, "author": true, "license": true,
	"cli": true, "installation": true, "dependencies": true,
	"features": true, "completion": true, "error_codes": true,
}

// DefaultValidators returns the standard validator set in registration
// order. The framework reorders them by declared dependencies.
func DefaultValidators() []Validator {
	return []Validator{
		configValidator{},
		commandValidator{},
		typeValidator{},
		argumentValidator{},
		optionValidator{},
		hookValidator{},
		errorCodeValidator{},
		completionValidator{},
	}
}

// commandValidator checks the command tree's structural rules and publishes
// the deterministic tree walk for the validators that depend on it.
type commandValidator struct{}

func (commandValidator) Name() string       { return "command" }
func (commandValidator) Requires() []string { return nil }

func (commandValidator) Validate(ctx *Context) []Diagnostic {
	entries := walkCommands(ctx.Description)
	ctx.Meta[metaCommands] = entries

	var diags []Diagnostic

	// Sibling groups share a parent path.
	type group struct {
		seen     map[string]bool
		defaults int
	}
	groups := make(map[string]*group)
	for _, e := range entries {
		parent := strings.Join(e.Path[:len(e.Path)-1], ".")
		g := groups[parent]
		if g == nil {
			g = &group{seen: make(map[string]bool)}
			groups[parent] = g
		}

		name := e.Path[len(e.Path)-1]
		if name == "" {
			diags = append(diags, Diagnostic{
				Location: e.Location,
				Severity: SeverityError,
				Message:  "command is missing a name",
			})
			continue
		}
		if g.seen[name] {
			diags = append(diags, Diagnostic{
				Location: e.Location,
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate command name %q within its sibling group", name),
				Suggestion: "rename one of the conflicting commands; sibling " +
					"names must be unique",
			})
		}
		g.seen[name] = true

		if e.description() == "" {
			diags = append(diags, Diagnostic{
				Location:   e.Location,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("command %q has no description", name),
				Suggestion: "add a description so generated help text is useful",
			})
		}

		if isDefault, _ := getBool(e.Spec, "default"); isDefault {
			g.defaults++
			if g.defaults > 1 {
				diags = append(diags, Diagnostic{
					Location: e.Location,
					Severity: SeverityError,
					Message:  fmt.Sprintf("command %q is marked default but its sibling group already has a default command", name),
				})
			}
		}
	}

	return diags
}

// argumentValidator checks per-command argument lists: ordering, variadic
// count, and type/default agreement.
type argumentValidator struct{}

func (argumentValidator) Name() string       { return "argument" }
func (argumentValidator) Requires() []string { return []string{"command"} }

func (argumentValidator) Validate(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for _, e := range ctx.commands() {
		seenOptional := false
		variadics := 0
		for i, raw := range e.args() {
			arg, ok := asMap(raw)
			if !ok {
				continue
			}
			loc := fmt.Sprintf("%s.args[%d]", e.Location, i)
			name := getString(arg, "name")

			required := true
			if r, ok := getBool(arg, "required"); ok {
				required = r
			}
			if required && seenOptional {
				diags = append(diags, Diagnostic{
					Location:   loc,
					Severity:   SeverityError,
					Message:    fmt.Sprintf("required argument %q follows an optional argument", name),
					Suggestion: "declare required arguments before optional ones",
				})
			}
			if !required {
				seenOptional = true
			}

			if isVariadic(arg) {
				variadics++
				if variadics > 1 {
					diags = append(diags, Diagnostic{
						Location: loc,
						Severity: SeverityError,
						Message:  fmt.Sprintf("argument %q is variadic but the command already has a variadic argument", name),
					})
				}
			}

			if def, present := arg["default"]; present && def != nil {
				if msg := defaultMismatch(getString(arg, "type"), def); msg != "" {
					diags = append(diags, Diagnostic{
						Location: loc,
						Severity: SeverityError,
						Message:  fmt.Sprintf("argument %q: %s", name, msg),
					})
				}
			}
		}
	}
	return diags
}

func isVariadic(arg map[string]any) bool {
	if m, _ := getBool(arg, "multiple"); m {
		return true
	}
	nargs := getString(arg, "nargs")
	return nargs == "*" || nargs == "+"
}

// defaultMismatch reports a human message when a default value's shape
// contradicts the declared type tag. Unknown tags are the type validator's
// problem and are ignored here.
func defaultMismatch(typeTag string, def any) string {
	switch typeTag {
	case "bool":
		if _, ok := def.(bool); !ok {
			return fmt.Sprintf("default %v is not a boolean", def)
		}
	case "int":
		if _, ok := asInt(def); !ok {
			return fmt.Sprintf("default %v is not an integer", def)
		}
	case "float":
		switch def.(type) {
		case float64, float32, int, int64:
		default:
			return fmt.Sprintf("default %v is not a number", def)
		}
	case "string", "path", "str":
		if _, ok := def.(string); !ok {
			return fmt.Sprintf("default %v is not a string", def)
		}
	}
	return ""
}

// hookValidator derives each command's expected hook identifier for the
// requested target and checks declared overrides against the target's
// naming convention. It is the one validator whose findings depend on the
// target language.
type hookValidator struct{}

func (hookValidator) Name() string       { return "hook" }
func (hookValidator) Requires() []string { return []string{"command"} }

func (hookValidator) Validate(ctx *Context) []Diagnostic {
	conv, ok := naming.ConventionFor(ctx.Target)
	if !ok {
		// ValidateAll screens targets before running; a framework caller
		// with a bad target still gets a finding instead of silence.
		return []Diagnostic{{
			Location: "target",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("unsupported target language %q", ctx.Target),
		}}
	}

	var diags []Diagnostic
	for _, e := range ctx.commands() {
		expected := naming.HookName(e.Path, conv)
		if !naming.ValidHookName(expected, conv) {
			diags = append(diags, Diagnostic{
				Location:   e.Location,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("command path %v yields hook %q, which is not valid for target %q", e.Path, expected, ctx.Target),
				Suggestion: "command names must be lowercase kebab-case",
			})
			continue
		}

		declared := getString(e.Spec, "hook")
		if declared == "" {
			declared = getString(e.Spec, "hook_name")
		}
		if declared == "" {
			continue
		}
		if !naming.ValidHookName(declared, conv) {
			diags = append(diags, Diagnostic{
				Location:   e.Location,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("hook %q does not match the %s naming convention for target %q", declared, conv, ctx.Target),
				Suggestion: fmt.Sprintf("use %q", expected),
			})
		} else if declared != expected {
			diags = append(diags, Diagnostic{
				Location:   e.Location,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("hook %q differs from the derived hook for this command path", declared),
				Suggestion: fmt.Sprintf("the derived hook is %q", expected),
			})
		}
	}
	return diags
}

// optionValidator checks per-command and global option declarations.
type optionValidator struct{}

func (optionValidator) Name() string       { return "option" }
func (optionValidator) Requires() []string { return []string{"command"} }

func (optionValidator) Validate(ctx *Context) []Diagnostic {
	var diags []Diagnostic

	if cli, ok := asMap(ctx.Description["cli"]); ok {
		if opts, ok := asSlice(cli["options"]); ok {
			diags = append(diags, checkOptions(opts, "cli.options")...)
		}
	}
	for _, e := range ctx.commands() {
		diags = append(diags, checkOptions(e.options(), e.Location+".options")...)
	}
	return diags
}

func checkOptions(options []any, location string) []Diagnostic {
	var diags []Diagnostic
	shorts := make(map[string]string)
	for i, raw := range options {
		opt, ok := asMap(raw)
		if !ok {
			continue
		}
		loc := fmt.Sprintf("%s[%d]", location, i)
		name := getString(opt, "name")

		choices, _ := asSlice(opt["choices"])
		typeTag := getString(opt, "type")
		if typeTag == "choice" && len(choices) == 0 {
			diags = append(diags, Diagnostic{
				Location:   loc,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("option %q declares type choice but provides no choices", name),
				Suggestion: "add a non-empty choices list or change the type",
			})
		}
		if typeTag != "choice" && len(choices) > 0 {
			diags = append(diags, Diagnostic{
				Location:   loc,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("option %q lists choices but its type is %q; the choices will be ignored", name, typeTag),
				Suggestion: "set type to choice",
			})
		}

		if short := getString(opt, "short"); short != "" {
			if prev, taken := shorts[short]; taken {
				diags = append(diags, Diagnostic{
					Location: loc,
					Severity: SeverityError,
					Message:  fmt.Sprintf("short form %q of option %q is already used by option %q", short, name, prev),
				})
			}
			shorts[short] = name
		}

		if name != "" && !naming.IsKebab(name) {
			diags = append(diags, Diagnostic{
				Location:   loc,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("option name %q is not kebab-case", name),
				Suggestion: fmt.Sprintf("use %q", naming.Kebab(name)),
			})
		}
	}
	return diags
}

// typeValidator enforces the closed argument and option type vocabularies.
type typeValidator struct{}

func (typeValidator) Name() string       { return "type" }
func (typeValidator) Requires() []string { return []string{"command"} }

func (typeValidator) Validate(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for _, e := range ctx.commands() {
		for i, raw := range e.args() {
			arg, ok := asMap(raw)
			if !ok {
				continue
			}
			if t := getString(arg, "type"); t != "" && !argumentTypes[t] {
				diags = append(diags, Diagnostic{
					Location:   fmt.Sprintf("%s.args[%d]", e.Location, i),
					Severity:   SeverityError,
					Message:    fmt.Sprintf("unknown argument type %q", t),
					Suggestion: "allowed types: " + joinVocab(argumentTypes),
				})
			}
		}
		for i, raw := range e.options() {
			opt, ok := asMap(raw)
			if !ok {
				continue
			}
			if t := getString(opt, "type"); t != "" && !optionTypes[t] {
				diags = append(diags, Diagnostic{
					Location:   fmt.Sprintf("%s.options[%d]", e.Location, i),
					Severity:   SeverityError,
					Message:    fmt.Sprintf("unknown option type %q", t),
					Suggestion: "allowed types: " + joinVocab(optionTypes),
				})
			}
		}
	}
	return diags
}

func joinVocab(vocab map[string]bool) string {
	words := make([]string, 0, len(vocab))
	for w := range vocab {
		words = append(words, w)
	}
	sort.Strings(words)
	return strings.Join(words, ", ")
}

// errorCodeValidator checks explicit exit-code annotations against the range
// a shell can faithfully report.
type errorCodeValidator struct{}

func (errorCodeValidator) Name() string       { return "error-code" }
func (errorCodeValidator) Requires() []string { return []string{"command"} }

func (errorCodeValidator) Validate(ctx *Context) []Diagnostic {
	var diags []Diagnostic

	if codes, ok := asMap(ctx.Description["error_codes"]); ok {
		names := make([]string, 0, len(codes))
		for name := range codes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			diags = append(diags, checkExitCode(codes[name], "error_codes."+name)...)
		}
	}

	for _, e := range ctx.commands() {
		if code, present := e.Spec["exit_code"]; present {
			diags = append(diags, checkExitCode(code, e.Location+".exit_code")...)
		}
	}
	return diags
}

func checkExitCode(v any, location string) []Diagnostic {
	code, ok := asInt(v)
	if !ok {
		return []Diagnostic{{
			Location: location,
			Severity: SeverityError,
			Message:  fmt.Sprintf("exit code %v is not an integer", v),
		}}
	}
	if code < 0 || code > maxExitCode {
		return []Diagnostic{{
			Location:   location,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("exit code %d is outside the portable range 0-%d", code, maxExitCode),
			Suggestion: "codes 126 and above collide with shell-reserved values",
		}}
	}
	return nil
}

// configValidator checks the description's top-level shape.
type configValidator struct{}

func (configValidator) Name() string       { return "config" }
func (configValidator) Requires() []string { return nil }

func (configValidator) Validate(ctx *Context) []Diagnostic {
	var diags []Diagnostic

	cli, hasCLI := asMap(ctx.Description["cli"])
	if !hasCLI {
		diags = append(diags, Diagnostic{
			Location:   "cli",
			Severity:   SeverityCritical,
			Message:    "description has no cli section",
			Suggestion: "add a cli section with a name and commands",
		})
	} else if getString(cli, "name") == "" {
		diags = append(diags, Diagnostic{
			Location: "cli.name",
			Severity: SeverityWarning,
			Message:  "cli has no name; the package command name will be used",
		})
	}

	keys := make([]string, 0, len(ctx.Description))
	for key := range ctx.Description {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !knownTopLevelKeys[key] {
			diags = append(diags, Diagnostic{
				Location: key,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("unknown top-level section %q will be ignored", key),
			})
		}
	}
	return diags
}

// completionValidator checks the shell-completion declaration.
type completionValidator struct{}

func (completionValidator) Name() string       { return "completion" }
func (completionValidator) Requires() []string { return []string{"config"} }

func (completionValidator) Validate(ctx *Context) []Diagnostic {
	completion, ok := asMap(ctx.Description["completion"])
	if !ok {
		return nil
	}

	var diags []Diagnostic
	if enabled, present := completion["enabled"]; present {
		if _, isBool := enabled.(bool); !isBool {
			diags = append(diags, Diagnostic{
				Location: "completion.enabled",
				Severity: SeverityError,
				Message:  fmt.Sprintf("completion.enabled must be a boolean, got %v", enabled),
			})
		}
	}
	if shells, present := completion["shells"]; present {
		list, isList := asSlice(shells)
		if !isList {
			diags = append(diags, Diagnostic{
				Location: "completion.shells",
				Severity: SeverityError,
				Message:  "completion.shells must be a list of shell names",
			})
			return diags
		}
		for i, raw := range list {
			shell, _ := raw.(string)
			if !completionShells[shell] {
				diags = append(diags, Diagnostic{
					Location:   fmt.Sprintf("completion.shells[%d]", i),
					Severity:   SeverityError,
					Message:    fmt.Sprintf("unsupported completion shell %q", shell),
					Suggestion: "supported shells: " + joinVocab(completionShells),
				})
			}
		}
	}
	return diags
}
