package shacl

// Namespace is the base IRI of the SHACL vocabulary.
const Namespace = "http://www.w3.org/ns/shacl#"

// Standard namespace IRIs.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	// DCNamespace is Dublin Core elements 1.1, used for class descriptions.
	DCNamespace = "http://purl.org/dc/elements/1.1/"
)

// Ontology IRIs read from the source graph.
const (
	// RDFType links a resource to its class.
	RDFType = RDFNamespace + "type"

	// OWLClass marks a subject as an ontology class.
	OWLClass = OWLNamespace + "Class"

	// OWLOntology marks the ontology's self-declared identifier.
	OWLOntology = OWLNamespace + "Ontology"

	// DCDescription carries the property-list description of a class.
	DCDescription = DCNamespace + "description"

	// XSDInteger types the count literals.
	XSDInteger = XSDNamespace + "integer"
)

// Shape classes.
const (
	// ClassNodeShape types every emitted shape.
	ClassNodeShape = Namespace + "NodeShape"
)

// Shape predicates.
const (
	// PropTargetClass binds a root shape to the class it validates.
	PropTargetClass = Namespace + "targetClass"

	// PropProperty links a node shape to a property constraint.
	PropProperty = Namespace + "property"

	// PropPath is the property a constraint applies to.
	PropPath = Namespace + "path"

	// PropMinCount is the minimum number of values.
	PropMinCount = Namespace + "minCount"

	// PropMaxCount is the maximum number of values.
	PropMaxCount = Namespace + "maxCount"

	// PropNodeKind restricts the kind of value node.
	PropNodeKind = Namespace + "nodeKind"

	// PropDatatype restricts literal values to a datatype.
	PropDatatype = Namespace + "datatype"

	// PropNode requires values to conform to another node shape.
	PropNode = Namespace + "node"
)

// Node kinds.
const (
	NodeKindLiteral        = Namespace + "Literal"
	NodeKindBlankNodeOrIRI = Namespace + "BlankNodeOrIRI"
)

// DefaultPrefixes returns the prefixes always bound in a shape graph.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"sh":   Namespace,
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"owl":  OWLNamespace,
		"xsd":  XSDNamespace,
	}
}
