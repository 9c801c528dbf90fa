// Package naming centralizes the identifier transforms used when deriving
// per-target names from a command path. Every target's hook derivation goes
// through this package so the contract is tested once instead of being
// re-implemented inside each renderer.
package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Convention is the identifier style a target expects for hook names.
type Convention int

const (
	// SnakeCase produces hooks like on_project_build.
	SnakeCase Convention = iota
	// CamelCase produces hooks like onProjectBuild.
	CamelCase
)

func (c Convention) String() string {
	if c == CamelCase {
		return "camelCase"
	}
	return "snake_case"
}

var (
	snakeHookPattern = regexp.MustCompile(`^on_[a-z][a-z0-9_]*$`)
	camelHookPattern = regexp.MustCompile(`^on[A-Z][A-Za-z0-9]*$`)

	camelBoundary  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymLead    = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	multiSeparator = regexp.MustCompile(`_+`)

	titler = cases.Title(language.English, cases.NoLower)
)

// conventions maps each supported target to its hook convention. The target
// set is closed; it is established at startup, never discovered at runtime.
var conventions = map[string]Convention{
	"python":     SnakeCase,
	"rust":       SnakeCase,
	"nodejs":     CamelCase,
	"typescript": CamelCase,
}

// ConventionFor returns the hook convention for a target language. The
// second result is false for targets outside the supported set.
func ConventionFor(target string) (Convention, bool) {
	conv, ok := conventions[strings.ToLower(target)]
	return conv, ok
}

// Targets returns the supported target identifiers in sorted order.
func Targets() []string {
	return []string{"nodejs", "python", "rust", "typescript"}
}

// Snake converts a name to snake_case. Hyphens become underscores and
// camelCase boundaries are split.
func Snake(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = acronymLead.ReplaceAllString(name, "${1}_${2}")
	name = camelBoundary.ReplaceAllString(name, "${1}_${2}")
	name = strings.ToLower(name)
	name = multiSeparator.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// Camel converts a name to camelCase.
func Camel(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(titler.String(strings.ToLower(w)))
	}
	return b.String()
}

// Pascal converts a name to PascalCase.
func Pascal(name string) string {
	var b strings.Builder
	for _, w := range splitWords(name) {
		b.WriteString(titler.String(strings.ToLower(w)))
	}
	return b.String()
}

// Kebab converts a name to kebab-case.
func Kebab(name string) string {
	return strings.ReplaceAll(Snake(name), "_", "-")
}

// IsKebab reports whether name is already valid kebab-case: lowercase words
// separated by single hyphens.
var kebabPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

func IsKebab(name string) bool {
	return kebabPattern.MatchString(name)
}

// HookName derives the hook identifier for a command path root-to-node.
// Paths of one or two segments map exactly; deeper paths are abbreviated so
// generated identifiers stay readable: three or four segments drop the middle
// ones, five or more keep the first plus the last two.
func HookName(path []string, conv Convention) string {
	segments := abbreviate(path)
	switch conv {
	case CamelCase:
		var b strings.Builder
		b.WriteString("on")
		for _, seg := range segments {
			b.WriteString(Pascal(seg))
		}
		return b.String()
	default:
		parts := make([]string, len(segments))
		for i, seg := range segments {
			parts[i] = Snake(seg)
		}
		return "on_" + strings.Join(parts, "_")
	}
}

// ValidHookName reports whether name matches the hook pattern of the
// convention.
func ValidHookName(name string, conv Convention) bool {
	if conv == CamelCase {
		return camelHookPattern.MatchString(name)
	}
	return snakeHookPattern.MatchString(name)
}

// abbreviate selects which path segments participate in the hook name.
func abbreviate(path []string) []string {
	n := len(path)
	switch {
	case n <= 2:
		return path
	case n == 3:
		return []string{path[0], path[2]}
	case n == 4:
		return []string{path[0], path[2], path[3]}
	default:
		return []string{path[0], path[n-2], path[n-1]}
	}
}

func splitWords(name string) []string {
	name = acronymLead.ReplaceAllString(name, "${1}_${2}")
	name = camelBoundary.ReplaceAllString(name, "${1}_${2}")
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
}
