// Package registry holds the catalogue of reusable generation fragments
// ("components") per target and hands them to renderers on demand.
//
// Components are loaded lazily from the component library directory on first
// request and cached for the process lifetime, keyed by (name, target). The
// cache is append-only; entries change only through explicit invalidation,
// so renderers for different targets can share one registry without locking
// beyond the lazy-load guard.
package registry

import (
	"regexp"
	"strings"
)

// Component is one named, target-scoped generation fragment. Components are
// owned by the registry; renderers only borrow references and must not
// modify them.
type Component struct {
	Name   string
	Target string
	// Content is the opaque template text the renderer feeds to its
	// templating layer.
	Content string
	// DependsOn lists components that must be available alongside this
	// one, declared inside the content with a requires directive.
	DependsOn []string
}

// Key returns the cache key for a (name, target) pair.
func Key(name, target string) string {
	return target + "/" + name
}

func (c *Component) key() string {
	return Key(c.Name, c.Target)
}

// requiresDirective matches a dependency declaration at the top of a
// component file, e.g. {{/* requires: rich-output, config-manager */}}.
var requiresDirective = regexp.MustCompile(`\{\{/\*\s*requires:\s*([a-z0-9, -]+?)\s*\*/\}\}`)

// parseDependencies extracts the declared component dependencies from
// template content.
func parseDependencies(content string) []string {
	match := requiresDirective.FindStringSubmatch(content)
	if match == nil {
		return nil
	}
	var deps []string
	for _, part := range strings.Split(match[1], ",") {
		if dep := strings.TrimSpace(part); dep != "" {
			deps = append(deps, dep)
		}
	}
	return deps
}
