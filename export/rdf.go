// Package export serializes compiled shape graphs to RDF.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"

	"github.com/c360studio/semshape/shapes"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// Export serializes g in the given format. Every format is built from the
// same triples, so an IRI that cannot be represented fails all of them.
func Export(g *shapes.Graph, format Format) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("export: nil shape graph")
	}
	triples, err := g.Triples()
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatTurtle:
		return toTurtle(g), nil
	case FormatNTriples:
		return toNTriples(triples)
	case FormatJSONLD:
		return toJSONLD(g, triples)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// toTurtle serializes to Turtle format.
func toTurtle(g *shapes.Graph) []byte {
	w := NewTurtleWriter()
	for _, prefix := range slices.Sorted(maps.Keys(g.Prefixes)) {
		w.SetPrefix(prefix, g.Prefixes[prefix])
	}
	w.WritePrefixes()

	for i, s := range g.Shapes {
		if i > 0 {
			w.WriteBlank()
		}
		w.WriteShape(s)
	}
	return []byte(w.String())
}

// toNTriples serializes to N-Triples format.
func toNTriples(triples []rdf.Triple) ([]byte, error) {
	var buf bytes.Buffer
	enc := rdf.NewTripleEncoder(&buf, rdf.NTriples)
	for _, t := range triples {
		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("encode n-triples: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode n-triples: %w", err)
	}
	return buf.Bytes(), nil
}

// toJSONLD serializes to JSON-LD, compacted against the graph's prefixes.
func toJSONLD(g *shapes.Graph, triples []rdf.Triple) ([]byte, error) {
	nquads, err := toNTriples(triples)
	if err != nil {
		return nil, err
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.UseNativeTypes = true

	expanded, err := proc.FromRDF(string(nquads), opts)
	if err != nil {
		return nil, fmt.Errorf("convert to json-ld: %w", err)
	}

	context := make(map[string]any, len(g.Prefixes))
	for prefix, ns := range g.Prefixes {
		if prefix == "" {
			continue
		}
		context[prefix] = ns
	}

	compactOpts := ld.NewJsonLdOptions("")
	compacted, err := proc.Compact(expanded, map[string]any{"@context": context}, compactOpts)
	if err != nil {
		return nil, fmt.Errorf("compact json-ld: %w", err)
	}

	out, err := json.MarshalIndent(compacted, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json-ld: %w", err)
	}
	return append(out, '\n'), nil
}
