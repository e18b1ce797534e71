package shapes

import (
	"fmt"

	"github.com/knakk/rdf"

	"github.com/c360studio/semshape/vocabulary/shacl"
)

// Triples flattens the graph into RDF triples in shape order. Property shapes
// become blank nodes labelled by shape and property position, so equal graphs
// produce identical triples.
func (g *Graph) Triples() ([]rdf.Triple, error) {
	b := &tripleBuilder{}

	for i, s := range g.Shapes {
		shape := b.iri(s.IRI)
		b.add(shape, b.iri(shacl.RDFType), b.iri(shacl.ClassNodeShape))
		if s.Root {
			b.add(shape, b.iri(shacl.PropTargetClass), b.iri(s.Class))
		}

		for j, p := range s.Properties {
			node := b.blank(fmt.Sprintf("s%dp%d", i, j))
			b.add(shape, b.iri(shacl.PropProperty), node)
			b.add(node, b.iri(shacl.PropPath), b.iri(p.Path))
			if p.Min.Set {
				b.add(node, b.iri(shacl.PropMinCount), b.integer(p.Min.Value))
			}
			if p.Max.Set {
				b.add(node, b.iri(shacl.PropMaxCount), b.integer(p.Max.Value))
			}

			switch p.Kind {
			case KindLiteral:
				b.add(node, b.iri(shacl.PropNodeKind), b.iri(shacl.NodeKindLiteral))
			case KindDatatype:
				b.add(node, b.iri(shacl.PropDatatype), b.iri(p.Datatype))
			case KindNode:
				b.add(node, b.iri(shacl.PropNode), b.iri(p.Node))
			default:
				b.add(node, b.iri(shacl.PropNodeKind), b.iri(shacl.NodeKindBlankNodeOrIRI))
			}
		}
	}

	if b.err != nil {
		return nil, fmt.Errorf("build shape triples: %w", b.err)
	}
	return b.triples, nil
}

// tripleBuilder accumulates triples and keeps the first term error.
type tripleBuilder struct {
	triples []rdf.Triple
	err     error
}

func (b *tripleBuilder) iri(s string) rdf.IRI {
	v, err := rdf.NewIRI(s)
	if err != nil && b.err == nil {
		b.err = err
	}
	return v
}

func (b *tripleBuilder) blank(id string) rdf.Blank {
	v, err := rdf.NewBlank(id)
	if err != nil && b.err == nil {
		b.err = err
	}
	return v
}

func (b *tripleBuilder) integer(n int) rdf.Literal {
	v, err := rdf.NewLiteral(n)
	if err != nil && b.err == nil {
		b.err = err
	}
	return v
}

func (b *tripleBuilder) add(s rdf.Subject, p rdf.Predicate, o rdf.Object) {
	b.triples = append(b.triples, rdf.Triple{Subj: s, Pred: p, Obj: o})
}
