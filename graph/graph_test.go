package graph

import (
	"strings"
	"testing"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semshape/vocabulary/shacl"
)

func iri(t *testing.T, s string) rdf.IRI {
	t.Helper()
	v, err := rdf.NewIRI(s)
	require.NoError(t, err)
	return v
}

func literal(t *testing.T, s string) rdf.Literal {
	t.Helper()
	v, err := rdf.NewLiteral(s)
	require.NoError(t, err)
	return v
}

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	typ := iri(t, shacl.RDFType)
	desc := iri(t, shacl.DCDescription)
	class := iri(t, shacl.OWLClass)

	triples := []rdf.Triple{
		{Subj: iri(t, "http://example.org/Person"), Pred: typ, Obj: class},
		{Subj: iri(t, "http://example.org/Address"), Pred: typ, Obj: class},
		{Subj: iri(t, "http://example.org/Person"), Pred: desc, Obj: literal(t, "zeta")},
		{Subj: iri(t, "http://example.org/Person"), Pred: desc, Obj: literal(t, "alpha")},
		{Subj: iri(t, "http://example.org/onto"), Pred: typ, Obj: iri(t, shacl.OWLOntology)},
		{Subj: iri(t, "http://other.org/terms#name"), Pred: typ, Obj: iri(t, "http://www.w3.org/2002/07/owl#DatatypeProperty")},
	}
	blank, err := rdf.NewBlank("b0")
	require.NoError(t, err)
	triples = append(triples, rdf.Triple{Subj: blank, Pred: typ, Obj: class})

	return New(triples, map[string]string{"ex": "http://example.org/"})
}

func TestGraph_SubjectsOfType(t *testing.T) {
	g := sampleGraph(t)

	classes := g.SubjectsOfType(shacl.OWLClass)
	assert.Equal(t, []string{"http://example.org/Address", "http://example.org/Person"}, classes,
		"blank subjects are skipped and IRIs are sorted")
	assert.Empty(t, g.SubjectsOfType("http://example.org/Nothing"))
}

func TestGraph_LiteralValues(t *testing.T) {
	g := sampleGraph(t)

	assert.Equal(t, []string{"alpha", "zeta"}, g.LiteralValues("http://example.org/Person", shacl.DCDescription))
	assert.Empty(t, g.LiteralValues("http://example.org/Address", shacl.DCDescription))
	assert.Empty(t, g.LiteralValues("http://example.org/Person", shacl.RDFType), "IRI objects are not literals")
}

func TestGraph_IRIsAndLiterals(t *testing.T) {
	g := sampleGraph(t)

	iris := g.IRIs()
	assert.Contains(t, iris, "http://other.org/terms#name")
	assert.Contains(t, iris, shacl.RDFType)
	assert.NotContains(t, iris, "b0")
	assert.True(t, sortedStrings(iris))

	assert.ElementsMatch(t, []string{"zeta", "alpha"}, g.Literals())
}

func TestGraph_OntologyIRI(t *testing.T) {
	assert.Equal(t, "http://example.org/onto", sampleGraph(t).OntologyIRI())
	assert.Equal(t, "", New(nil, nil).OntologyIRI())
}

func TestGraph_PrefixesAreCopied(t *testing.T) {
	src := map[string]string{"ex": "http://example.org/"}
	g := New(nil, src)
	src["ex"] = "http://changed.org/"

	ns, ok := g.Namespace("ex")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/", ns)

	out := g.Prefixes()
	out["ex"] = "http://changed.org/"
	ns, _ = g.Namespace("ex")
	assert.Equal(t, "http://example.org/", ns)
}

func TestGraph_DecodedTurtle(t *testing.T) {
	ttl := `@prefix ex: <http://example.org/> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
ex:Person a owl:Class .
`
	triples, err := rdf.NewTripleDecoder(strings.NewReader(ttl), rdf.Turtle).DecodeAll()
	require.NoError(t, err)

	g := New(triples, nil)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, []string{"http://example.org/Person"}, g.SubjectsOfType(shacl.OWLClass))
}

func TestSplitIRI(t *testing.T) {
	tests := []struct {
		iri   string
		stem  string
		local string
	}{
		{"http://example.org/Person", "http://example.org/", "Person"},
		{"http://www.w3.org/2002/07/owl#Class", "http://www.w3.org/2002/07/owl#", "Class"},
		{"http://example.org/a#b/c", "http://example.org/a#", "b/c"},
		{"http://example.org/", "http://example.org/", ""},
		{"urn-no-separator", "", "urn-no-separator"},
	}

	for _, tt := range tests {
		t.Run(tt.iri, func(t *testing.T) {
			stem, local := SplitIRI(tt.iri)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.local, local)
			assert.Equal(t, tt.local, LocalName(tt.iri))
		})
	}
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
