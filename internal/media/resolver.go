// Package media turns symbolic project-local asset names into playable byte
// sources at playback time.
package media

import "strings"

// Resolver maps symbolic media references to concrete locations (URLs or
// file paths). Lookup falls back from exact match to case-insensitive match
// to returning the input unchanged; an unresolved reference is an external
// one, not an error.
type Resolver struct {
	byName map[string]string
}

// NewResolver builds a resolver over a name -> location table.
func NewResolver(assets map[string]string) *Resolver {
	byName := make(map[string]string, len(assets))
	for name, loc := range assets {
		byName[name] = loc
	}
	return &Resolver{byName: byName}
}

// Register adds or replaces one symbolic name.
func (r *Resolver) Register(name, location string) {
	r.byName[name] = location
}

// isDirect reports whether a reference already names its bytes: absolute
// URLs, inline data, and explicit paths pass through untouched.
func isDirect(src string) bool {
	for _, prefix := range []string{"http://", "https://", "data:", "blob:", "file://", "/", "./"} {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}
	return false
}

// Resolve maps a symbolic reference to its location. Unresolvable input is
// returned unchanged and treated as an external reference downstream.
func (r *Resolver) Resolve(src string) string {
	if isDirect(src) {
		return src
	}
	if loc, ok := r.byName[src]; ok {
		return loc
	}
	lower := strings.ToLower(src)
	for name, loc := range r.byName {
		if strings.ToLower(name) == lower {
			return loc
		}
	}
	return src
}

// CanResolve reports whether Resolve would find a concrete location,
// counting direct references as resolvable.
func (r *Resolver) CanResolve(src string) bool {
	if isDirect(src) {
		return true
	}
	if _, ok := r.byName[src]; ok {
		return true
	}
	lower := strings.ToLower(src)
	for name := range r.byName {
		if strings.ToLower(name) == lower {
			return true
		}
	}
	return false
}
