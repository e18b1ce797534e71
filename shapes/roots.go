package shapes

import (
	"fmt"
	"strings"

	"github.com/c360studio/semshape/config"
	"github.com/c360studio/semshape/namespace"
)

// DetectRoots returns the classes never referenced as a target by another
// class. references maps each class to the resolved IRIs of its class
// targets; literal and datatype targets must not be included. A class
// referencing itself stays a root.
func DetectRoots(classes []string, references map[string][]string) map[string]bool {
	referenced := make(map[string]bool)
	for from, targets := range references {
		for _, to := range targets {
			if to != from {
				referenced[to] = true
			}
		}
	}

	roots := make(map[string]bool)
	for _, c := range classes {
		if !referenced[c] {
			roots[c] = true
		}
	}
	return roots
}

// FixedRoots resolves the configured root classes of one module. Entries are
// CURIEs resolved with the module's resolver, or full IRIs. An entry no table
// resolves is a ConfigurationError.
func FixedRoots(module string, entries []string, r *namespace.Resolver) (map[string]bool, error) {
	roots := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if isAbsoluteIRI(entry) {
			roots[entry] = true
			continue
		}
		iri, _, ok := r.Resolve(entry)
		if !ok {
			return nil, &config.ConfigurationError{
				Reason: fmt.Sprintf("root class %q of module %q cannot be resolved", entry, module),
			}
		}
		roots[iri] = true
	}
	return roots, nil
}

func isAbsoluteIRI(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "urn:")
}
