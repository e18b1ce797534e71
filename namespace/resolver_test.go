package namespace

import (
	"testing"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/vocabulary/shacl"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		in   string
		want Token
	}{
		{"foaf:name", Token{Prefix: "foaf", Local: "name", Qualified: true}},
		{"name", Token{Local: "name"}},
		{":name", Token{Prefix: "", Local: "name", Qualified: true}},
		{"a:b:c", Token{Prefix: "a", Local: "b:c", Qualified: true}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tok := ParseToken(tt.in)
			assert.Equal(t, tt.want, tok)
			assert.Equal(t, tt.in, tok.String())
		})
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	tables := Tables{
		Declared: Table{"ex": "http://declared.org/"},
		Observed: StemTable{"name": {"http://observed.org/"}, "thing": {"http://observed.org/"}},
		Embedded: Table{"ex": "http://embedded.org/", "doc": "http://embedded.org/doc#"},
	}

	tests := []struct {
		name     string
		token    string
		iri      string
		strategy Strategy
		ok       bool
	}{
		{"declared beats everything", "ex:name", "http://declared.org/name", Declared, true},
		{"observed beats embedded", "doc:thing", "http://observed.org/thing", Observed, true},
		{"embedded last", "doc:other", "http://embedded.org/doc#other", Embedded, true},
		{"bare uses observed", "thing", "http://observed.org/thing", Observed, true},
		{"bare ignores prefix tables", "ex", "", Unresolved, false},
		{"unknown prefix", "unknownprefix:property", "", Unresolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iri, strategy, ok := Resolve(tables, ParseToken(tt.token))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.iri, iri)
			assert.Equal(t, tt.strategy, strategy)
		})
	}
}

func TestResolve_EmptyTables(t *testing.T) {
	_, strategy, ok := Resolve(Tables{}, ParseToken("ex:a"))
	assert.False(t, ok)
	assert.Equal(t, "unresolved", strategy.String())
}

func TestBuildTables(t *testing.T) {
	mk := func(s string) rdf.IRI {
		v, err := rdf.NewIRI(s)
		require.NoError(t, err)
		return v
	}
	lit := func(s string) rdf.Literal {
		v, err := rdf.NewLiteral(s)
		require.NoError(t, err)
		return v
	}

	desc := mk(shacl.DCDescription)
	triples := []rdf.Triple{
		{Subj: mk("http://b.org/ns#Widget"), Pred: mk(shacl.RDFType), Obj: mk(shacl.OWLClass)},
		{Subj: mk("http://a.org/Widget"), Pred: mk(shacl.RDFType), Obj: mk(shacl.OWLClass)},
		{Subj: mk("http://a.org/Widget"), Pred: desc, Obj: lit("Uses @prefix frapo: <http://purl.org/cerif/frapo/> and dcat: <http://www.w3.org/ns/dcat#>.")},
		{Subj: mk("http://b.org/ns#Widget"), Pred: desc, Obj: lit("PREFIX frapo: <http://wrong.example/>")},
	}
	g := graph.New(triples, map[string]string{"owl": shacl.OWLNamespace})

	tables := BuildTables(g)

	assert.Equal(t, shacl.OWLNamespace, tables.Declared["owl"])
	assert.Equal(t, []string{"http://a.org/", "http://b.org/ns#"}, tables.Observed["Widget"])
	assert.Equal(t, []string{shacl.RDFNamespace}, tables.Observed["type"])
	assert.Equal(t, "http://www.w3.org/ns/dcat#", tables.Embedded["dcat"])
	assert.Equal(t, "http://wrong.example/", tables.Embedded["frapo"], "first declaration in sorted literal order wins")
}

func TestStemTable_Stem(t *testing.T) {
	stems := StemTable{
		"Work":  {"http://a.org/", "http://purl.org/spar/fabio/", "http://z.org/FaBiO-ext#"},
		"Thing": {"http://a.org/", "http://b.org/"},
	}

	tests := []struct {
		name   string
		local  string
		prefix string
		want   string
		ok     bool
	}{
		{"prefix names a segment", "Work", "fabio", "http://purl.org/spar/fabio/", true},
		{"case-insensitive segment", "Work", "FABIO", "http://purl.org/spar/fabio/", true},
		{"partial match is not a segment", "Work", "fab", "http://a.org/", true},
		{"hyphenated segment", "Work", "fabio-ext", "http://z.org/FaBiO-ext#", true},
		{"bare token takes smallest", "Work", "", "http://a.org/", true},
		{"no segment match takes smallest", "Thing", "ex", "http://a.org/", true},
		{"unknown local", "Missing", "ex", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stems.Stem(tt.local, tt.prefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ObservedPrefersStemNamingPrefix(t *testing.T) {
	tables := Tables{Observed: StemTable{"Work": {"http://a.org/", "http://purl.org/spar/fabio/"}}}

	iri, strategy, ok := Resolve(tables, ParseToken("fabio:Work"))
	require.True(t, ok)
	assert.Equal(t, "http://purl.org/spar/fabio/Work", iri)
	assert.Equal(t, Observed, strategy)

	iri, _, _ = Resolve(tables, ParseToken("Work"))
	assert.Equal(t, "http://a.org/Work", iri)
}

func TestEmbeddedTable(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		prefix  string
		want    string
	}{
		{"turtle directive", "@prefix ex: <http://example.org/> .", "ex", "http://example.org/"},
		{"sparql directive", "PREFIX ex: <http://example.org/>", "ex", "http://example.org/"},
		{"informal", "namespace ex:<http://example.org/x#> used below", "ex", "http://example.org/x#"},
		{"dotted prefix", "my.ns: <http://example.org/dot/>", "my.ns", "http://example.org/dot/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := embeddedTable([]string{tt.literal})
			assert.Equal(t, tt.want, table[tt.prefix])
		})
	}

	assert.Empty(t, embeddedTable([]string{"no declarations here", "mailto: not an iri"}))
}

func TestResolver_Expand(t *testing.T) {
	r := NewResolverFromTables("agent", Tables{
		Declared: Table{"foaf": "http://xmlns.com/foaf/0.1/"},
		Observed: StemTable{"Identifier": {"http://purl.org/spar/datacite/"}},
	})
	assert.Equal(t, "agent", r.Module())

	got, err := r.Expand("foaf:name", "http://xmlns.com/foaf/0.1/Agent", "foaf:name -[1]-> rdfs:Literal")
	require.NoError(t, err)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/name", got)

	got, err = r.Expand("Identifier", "http://xmlns.com/foaf/0.1/Agent", "x -[1]-> Identifier")
	require.NoError(t, err)
	assert.Equal(t, "http://purl.org/spar/datacite/Identifier", got)
}

func TestResolver_ExpandUnresolved(t *testing.T) {
	r := NewResolverFromTables("agent", Tables{})
	line := "unknownprefix:property -[1]-> rdfs:Literal"

	_, err := r.Expand("unknownprefix:property", "http://xmlns.com/foaf/0.1/Agent", line)
	require.Error(t, err)
	assert.True(t, IsUnresolvedPrefix(err))

	var unresolved *UnresolvedPrefixError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "unknownprefix", unresolved.Prefix)
	assert.False(t, unresolved.Bare)
	assert.Contains(t, err.Error(), "unknownprefix")
	assert.Contains(t, err.Error(), "http://xmlns.com/foaf/0.1/Agent")
	assert.Contains(t, err.Error(), line)

	_, err = r.Expand("bareName", "http://example.org/C", "bareName -[1]-> rdfs:Literal")
	require.ErrorAs(t, err, &unresolved)
	assert.True(t, unresolved.Bare)
	assert.Contains(t, err.Error(), "bareName")
}
