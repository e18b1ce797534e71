package shapes

import (
	"strings"

	"github.com/c360studio/semshape/source"
)

// Allocator decides the namespace shapes are minted under.
type Allocator struct {
	// Override replaces the computed base when set.
	Override string
	// ModularBase is the base of per-module namespaces.
	ModularBase string
	// FallbackBase is used by single fragments without an ontology IRI.
	FallbackBase string
	// OntologySuffix is appended to a single fragment's ontology IRI.
	OntologySuffix string
}

// Namespace returns the shape namespace of a module.
//
// Modular sources get base + module + "/", where base is the override if set.
// Single fragments use the override as is, else their ontology IRI with
// trailing separators stripped plus OntologySuffix, else FallbackBase.
func (a Allocator) Namespace(mode source.Mode, module, ontologyIRI string) string {
	if mode == source.ModeModular {
		base := a.ModularBase
		if a.Override != "" {
			base = a.Override
		}
		return withSeparator(base) + module + "/"
	}

	if a.Override != "" {
		return a.Override
	}
	if stem := strings.TrimRight(ontologyIRI, "/#"); stem != "" {
		return stem + a.OntologySuffix
	}
	return a.FallbackBase
}

// ShapeIRI mints the shape IRI of a class local name.
func ShapeIRI(namespace, local, suffix string) string {
	return namespace + local + suffix
}

func withSeparator(base string) string {
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, "#") {
		return base
	}
	return base + "/"
}
