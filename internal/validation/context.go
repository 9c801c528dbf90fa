package validation

import (
	"fmt"
	"sort"
)

// Mode controls how warnings affect a run's outcome.
type Mode string

const (
	// ModeStrict treats warnings as blocking.
	ModeStrict Mode = "strict"
	// ModeLenient blocks only on error and critical findings.
	ModeLenient Mode = "lenient"
)

// ParseMode maps a mode string onto a Mode, defaulting to lenient.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "strict":
		return ModeStrict, nil
	case "lenient", "":
		return ModeLenient, nil
	default:
		return ModeLenient, fmt.Errorf("unknown validation mode %q (want strict or lenient)", s)
	}
}

// Context is the input bundle handed to every validator in a run. Meta is a
// scratch map validators use to pass derived facts forward; a validator may
// only read keys written by validators it declares a dependency on.
type Context struct {
	Description map[string]any
	Target      string
	Mode        Mode
	Meta        map[string]any
}

// Meta keys shared between validators.
const (
	// metaCommands holds []commandEntry, the deterministic walk of the
	// command tree produced by the command validator.
	metaCommands = "commands"
)

// commandEntry is one command in the deterministic walk of the description's
// command tree.
type commandEntry struct {
	// Path is the command name path from root, e.g. ["project","build"].
	Path []string
	// Location is the dotted description path for diagnostics.
	Location string
	Spec     map[string]any
}

// commands returns the walk produced by the command validator, or walks the
// tree directly when no earlier validator has cached it.
func (c *Context) commands() []commandEntry {
	if cached, ok := c.Meta[metaCommands].([]commandEntry); ok {
		return cached
	}
	entries := walkCommands(c.Description)
	c.Meta[metaCommands] = entries
	return entries
}

// walkCommands flattens the command tree depth-first. Map-form command sets
// are visited in sorted name order so every run sees the same sequence;
// list-form sets keep their declared order (and may contain duplicates,
// which validators must detect rather than collapse).
func walkCommands(description map[string]any) []commandEntry {
	cli, _ := asMap(description["cli"])
	var entries []commandEntry
	walkCommandSet(cli["commands"], nil, "cli.commands", &entries)
	return entries
}

func walkCommandSet(raw any, parent []string, location string, out *[]commandEntry) {
	switch commands := raw.(type) {
	case map[string]any:
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec, _ := asMap(commands[name])
			if spec == nil {
				spec = map[string]any{}
			}
			walkCommand(name, spec, parent, location+"."+name, out)
		}
	case []any:
		for i, raw := range commands {
			spec, _ := asMap(raw)
			if spec == nil {
				continue
			}
			name, _ := spec["name"].(string)
			walkCommand(name, spec, parent, fmt.Sprintf("%s[%d]", location, i), out)
		}
	}
}

func walkCommand(name string, spec map[string]any, parent []string, location string, out *[]commandEntry) {
	path := append(append([]string{}, parent...), name)
	*out = append(*out, commandEntry{Path: path, Location: location, Spec: spec})
	if sub, ok := spec["subcommands"]; ok {
		walkCommandSet(sub, path, location+".subcommands", out)
	}
}

// asMap narrows an untyped description value to a string-keyed map.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asSlice narrows an untyped description value to a list.
func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// getString returns the string at key, or "" when absent or not a string.
func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// getBool returns the bool at key along with whether it was present as a
// bool at all.
func getBool(m map[string]any, key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// asInt accepts the integer shapes YAML and JSON decoders produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// description returns the command's help text, accepting both the long and
// the abbreviated key.
func (e commandEntry) description() string {
	if d := getString(e.Spec, "description"); d != "" {
		return d
	}
	return getString(e.Spec, "desc")
}

// args returns the command's declared arguments in order.
func (e commandEntry) args() []any {
	if s, ok := asSlice(e.Spec["args"]); ok {
		return s
	}
	s, _ := asSlice(e.Spec["arguments"])
	return s
}

// options returns the command's declared options in order.
func (e commandEntry) options() []any {
	s, _ := asSlice(e.Spec["options"])
	return s
}
