package shapes

import (
	"strings"
	"testing"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/source"
	"github.com/c360studio/semshape/vocabulary/shacl"
)

const (
	exNS       = "http://example.org/"
	foafNS     = "http://xmlns.com/foaf/0.1/"
	dataciteNS = "http://purl.org/spar/datacite/"
	marker     = "The properties that can be used with this class are:"
)

// moduleBuilder assembles a module graph triple by triple.
type moduleBuilder struct {
	t        *testing.T
	name     string
	triples  []rdf.Triple
	prefixes map[string]string
}

func newModule(t *testing.T, name string, prefixes map[string]string) *moduleBuilder {
	t.Helper()
	return &moduleBuilder{t: t, name: name, prefixes: prefixes}
}

func (b *moduleBuilder) iri(s string) rdf.IRI {
	b.t.Helper()
	v, err := rdf.NewIRI(s)
	require.NoError(b.t, err)
	return v
}

func (b *moduleBuilder) add(s, p, o string) *moduleBuilder {
	b.triples = append(b.triples, rdf.Triple{Subj: b.iri(s), Pred: b.iri(p), Obj: b.iri(o)})
	return b
}

// class declares an owl:Class; a non-empty description is attached as dc:description.
func (b *moduleBuilder) class(iri, desc string) *moduleBuilder {
	b.add(iri, shacl.RDFType, shacl.OWLClass)
	if desc != "" {
		lit, err := rdf.NewLiteral(desc)
		require.NoError(b.t, err)
		b.triples = append(b.triples, rdf.Triple{Subj: b.iri(iri), Pred: b.iri(shacl.DCDescription), Obj: lit})
	}
	return b
}

func (b *moduleBuilder) ontology(iri string) *moduleBuilder {
	return b.add(iri, shacl.RDFType, shacl.OWLOntology)
}

func (b *moduleBuilder) build() source.Module {
	return source.Module{Name: b.name, Path: b.name + ".ttl", Format: source.FormatTurtle, Graph: graph.New(b.triples, b.prefixes)}
}

// propertyList renders a property-list description from bullet lines.
func propertyList(lines ...string) string {
	var sb strings.Builder
	sb.WriteString(marker)
	sb.WriteString("\n")
	for _, l := range lines {
		sb.WriteString("\n* ")
		sb.WriteString(l)
	}
	return sb.String()
}

func single(m source.Module) *source.Result {
	return &source.Result{Locator: m.Path, Mode: source.ModeSingle, Modules: []source.Module{m}}
}

func modular(modules ...source.Module) *source.Result {
	return &source.Result{Locator: "ontology/", Mode: source.ModeModular, Modules: modules}
}
