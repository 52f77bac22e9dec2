package target

import "sort"

// Factory constructs a fresh BackendTarget instance. Every call must return
// an independent backend so concurrent compilations (or repeated runs in one
// process) never share mutable state returns
// a fresh backend for the requested architecture").
type Factory func() BackendTarget

var registry = make(map[string]Factory)

// RegisterFactory registers a backend factory under name.
// Concrete targets call this from an init() function — see
// internal/isa/arm64's init, grounded on Go's own idiomatic side-effecting
// registration pattern (the same one image/png etc. use).
func RegisterFactory(name string, f Factory) {
	registry[name] = f
}

// Lookup returns a fresh backend for the requested triple/name, or ok=false
// if nothing is registered under that name.
func Lookup(name string) (BackendTarget, bool) {
	f, ok := registry[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Names returns every registered target name, sorted for deterministic CLI
// listing output.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
