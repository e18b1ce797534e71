// Package source loads ontology modules from files, module directories and
// remote locations.
package source

import (
	"sort"

	"github.com/c360studio/semshape/graph"
)

// Mode describes how a source is organised.
type Mode string

const (
	// ModeSingle is one ontology fragment.
	ModeSingle Mode = "single"

	// ModeModular is a directory of module subdirectories.
	ModeModular Mode = "modular"
)

// Module is one named, independently loaded ontology fragment.
type Module struct {
	// Name identifies the module (directory name, ontology local name or
	// file/URL basename).
	Name string `json:"name"`

	// Path is the file path or URL the module was read from.
	Path string `json:"path"`

	// Format is the serialization the module was decoded from.
	Format Format `json:"format"`

	// Graph holds the decoded triples.
	Graph *graph.Graph `json:"-"`
}

// Result is the outcome of loading a source.
type Result struct {
	// Locator is the input as given by the caller.
	Locator string `json:"locator"`

	// Mode is single for files and URLs, modular for module directories.
	Mode Mode `json:"mode"`

	// Modules are sorted by name.
	Modules []Module `json:"modules"`
}

// Module returns the named module.
func (r *Result) Module(name string) (Module, bool) {
	for _, m := range r.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// ModuleNames returns the module names in order.
func (r *Result) ModuleNames() []string {
	names := make([]string, len(r.Modules))
	for i, m := range r.Modules {
		names[i] = m.Name
	}
	return names
}

// TripleCount returns the number of triples across all modules.
func (r *Result) TripleCount() int {
	n := 0
	for _, m := range r.Modules {
		if m.Graph != nil {
			n += m.Graph.Len()
		}
	}
	return n
}

func sortModules(modules []Module) {
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Name < modules[j].Name
	})
}
