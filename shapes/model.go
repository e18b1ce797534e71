// Package shapes compiles parsed class descriptions into a SHACL shape graph.
//
// A Compiler turns every class carrying a property-list description into one
// node shape. Each property line becomes a property shape whose value
// constraint is one of: a plain literal, a datatype, a reference to another
// class's shape, or an open blank-node-or-IRI reference. Only root classes
// get a target class binding.
package shapes

import (
	"sort"

	"github.com/c360studio/semshape/description"
)

// Kind is the value constraint of a property shape.
type Kind int

const (
	// KindBlankNodeOrIRI is an unconstrained object reference.
	KindBlankNodeOrIRI Kind = iota
	// KindLiteral requires a plain literal.
	KindLiteral
	// KindDatatype requires a literal of PropertyShape.Datatype.
	KindDatatype
	// KindNode requires conformance to the shape PropertyShape.Node.
	KindNode
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindDatatype:
		return "datatype"
	case KindNode:
		return "node"
	default:
		return "blank-node-or-iri"
	}
}

// PropertyShape constrains one property of a class.
type PropertyShape struct {
	// Path is the resolved property IRI.
	Path string
	Min  description.Bound
	Max  description.Bound
	Kind Kind
	// Datatype is set for KindDatatype.
	Datatype string
	// Node is the referenced shape IRI for KindNode.
	Node string
}

// NodeShape is the compiled shape of one class.
type NodeShape struct {
	IRI    string
	Class  string
	Module string
	// Root shapes carry a sh:targetClass binding.
	Root       bool
	Properties []PropertyShape
}

// Graph is a compiled shape graph.
type Graph struct {
	// Prefixes are the namespace bindings to use when serializing.
	Prefixes map[string]string
	// Shapes are sorted by IRI.
	Shapes []NodeShape
}

// Shape returns the shape with the given IRI.
func (g *Graph) Shape(iri string) (NodeShape, bool) {
	i := sort.Search(len(g.Shapes), func(i int) bool { return g.Shapes[i].IRI >= iri })
	if i < len(g.Shapes) && g.Shapes[i].IRI == iri {
		return g.Shapes[i], true
	}
	return NodeShape{}, false
}

// ShapeForClass returns the first shape targeting or describing class.
func (g *Graph) ShapeForClass(class string) (NodeShape, bool) {
	for _, s := range g.Shapes {
		if s.Class == class {
			return s, true
		}
	}
	return NodeShape{}, false
}

// Roots returns the IRIs of classes bound by a target.
func (g *Graph) Roots() []string {
	var roots []string
	for _, s := range g.Shapes {
		if s.Root {
			roots = append(roots, s.Class)
		}
	}
	sort.Strings(roots)
	return roots
}

// PropertyCount returns the number of property shapes.
func (g *Graph) PropertyCount() int {
	n := 0
	for _, s := range g.Shapes {
		n += len(s.Properties)
	}
	return n
}
