// Package shacl provides IRI constants for the vocabularies the shape compiler
// reads and writes.
//
// Input side: ontology classes are found through rdf:type owl:Class and their
// property-list descriptions through dc:description (Dublin Core elements).
//
// Output side: shapes use the W3C SHACL core vocabulary:
//
//	ex:PersonShape a sh:NodeShape ;
//	    sh:targetClass ex:Person ;
//	    sh:property [
//	        sh:path ex:hasName ;
//	        sh:minCount 1 ;
//	        sh:maxCount 1 ;
//	        sh:nodeKind sh:Literal
//	    ] .
//
// Counts are typed xsd:integer.
package shacl
