// Package graph holds the in-memory triple set of one ontology module and
// publishes compiled shape graphs to NATS.
package graph

import (
	"sort"
	"strings"

	"github.com/knakk/rdf"

	"github.com/c360studio/semshape/vocabulary/shacl"
)

// Graph is an immutable, indexed set of triples with the namespace bindings
// declared by its source document.
type Graph struct {
	triples  []rdf.Triple
	prefixes map[string]string

	// indexes keyed by the N-Triples serialization of a term
	bySubject map[string][]int
	byObject  map[string][]int
}

// New builds a graph from decoded triples. Prefixes are copied.
func New(triples []rdf.Triple, prefixes map[string]string) *Graph {
	g := &Graph{
		triples:   triples,
		prefixes:  make(map[string]string, len(prefixes)),
		bySubject: make(map[string][]int),
		byObject:  make(map[string][]int),
	}
	for p, ns := range prefixes {
		g.prefixes[p] = ns
	}
	for i, t := range triples {
		sk := termKey(t.Subj)
		g.bySubject[sk] = append(g.bySubject[sk], i)
		ok := termKey(t.Obj)
		g.byObject[ok] = append(g.byObject[ok], i)
	}
	return g
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the triples in decode order. The slice must not be modified.
func (g *Graph) Triples() []rdf.Triple {
	return g.triples
}

// Prefixes returns a copy of the declared namespace bindings.
func (g *Graph) Prefixes() map[string]string {
	out := make(map[string]string, len(g.prefixes))
	for p, ns := range g.prefixes {
		out[p] = ns
	}
	return out
}

// Namespace returns the IRI bound to prefix, if declared.
func (g *Graph) Namespace(prefix string) (string, bool) {
	ns, ok := g.prefixes[prefix]
	return ns, ok
}

// SubjectsOfType returns the IRIs of all subjects typed as class, sorted.
// Blank node subjects are skipped.
func (g *Graph) SubjectsOfType(class string) []string {
	seen := make(map[string]bool)
	for _, i := range g.byObject[iriKey(class)] {
		t := g.triples[i]
		if t.Pred.String() != shacl.RDFType || t.Subj.Type() != rdf.TermIRI {
			continue
		}
		seen[t.Subj.String()] = true
	}
	return sortedKeys(seen)
}

// LiteralValues returns the lexical forms of the literal objects of
// (subject, predicate), sorted.
func (g *Graph) LiteralValues(subject, predicate string) []string {
	var values []string
	for _, i := range g.bySubject[iriKey(subject)] {
		t := g.triples[i]
		if t.Pred.String() != predicate || t.Obj.Type() != rdf.TermLiteral {
			continue
		}
		values = append(values, t.Obj.String())
	}
	sort.Strings(values)
	return values
}

// Literals returns the lexical form of every literal object in the graph.
func (g *Graph) Literals() []string {
	var values []string
	for _, t := range g.triples {
		if t.Obj.Type() == rdf.TermLiteral {
			values = append(values, t.Obj.String())
		}
	}
	return values
}

// IRIs returns every IRI used as subject, predicate or object, deduplicated
// and sorted.
func (g *Graph) IRIs() []string {
	seen := make(map[string]bool)
	for _, t := range g.triples {
		for _, term := range []rdf.Term{t.Subj, t.Pred, t.Obj} {
			if term.Type() == rdf.TermIRI {
				seen[term.String()] = true
			}
		}
	}
	return sortedKeys(seen)
}

// OntologyIRI returns the self-declared owl:Ontology identifier, or "" when
// the graph declares none. With several, the lexically first wins.
func (g *Graph) OntologyIRI() string {
	ontologies := g.SubjectsOfType(shacl.OWLOntology)
	if len(ontologies) == 0 {
		return ""
	}
	return ontologies[0]
}

// LocalName returns the part of an IRI after its last '#' or '/'.
// Returns "" when the IRI ends with a separator.
func LocalName(iri string) string {
	_, local := SplitIRI(iri)
	return local
}

// SplitIRI splits an IRI into namespace stem and local name at the last '#',
// or at the last '/' when there is no '#'.
func SplitIRI(iri string) (stem, local string) {
	idx := strings.LastIndexByte(iri, '#')
	if idx < 0 {
		idx = strings.LastIndexByte(iri, '/')
	}
	if idx < 0 {
		return "", iri
	}
	return iri[:idx+1], iri[idx+1:]
}

func termKey(t rdf.Term) string {
	return t.Serialize(rdf.NTriples)
}

func iriKey(iri string) string {
	return "<" + iri + ">"
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
