package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

var (
	// turtlePrefixPattern matches "@prefix p: <iri> ." and "PREFIX p: <iri>".
	turtlePrefixPattern = regexp.MustCompile(`(?im)^[ \t]*(?:@prefix|prefix)[ \t]+([A-Za-z][\w.-]*)?:[ \t]*<([^<>"\s]*)>`)

	// xmlnsPattern matches xmlns:p="iri" attributes.
	xmlnsPattern = regexp.MustCompile(`xmlns:([A-Za-z_][\w.-]*)\s*=\s*["']([^"']*)["']`)
)

// decode parses data in the given format. It returns the triples and the
// prefix bindings the document declares.
func decode(data []byte, format Format) ([]rdf.Triple, map[string]string, error) {
	switch format {
	case FormatTurtle, FormatN3:
		triples, err := decodeTriples(data, rdf.Turtle)
		return triples, turtlePrefixes(data), err
	case FormatRDFXML, FormatOWLXML:
		triples, err := decodeTriples(data, rdf.RDFXML)
		return triples, xmlPrefixes(data), err
	case FormatNTriples:
		triples, err := decodeTriples(data, rdf.NTriples)
		return triples, map[string]string{}, err
	case FormatJSONLD:
		return decodeJSONLD(data)
	default:
		return nil, nil, fmt.Errorf("unsupported format %q", format)
	}
}

func decodeTriples(data []byte, format rdf.Format) ([]rdf.Triple, error) {
	dec := rdf.NewTripleDecoder(bytes.NewReader(data), format)
	triples, err := dec.DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", formatName(format), err)
	}
	return triples, nil
}

// decodeJSONLD expands a JSON-LD document to N-Quads and decodes those.
// Named graphs are merged into one triple set.
func decodeJSONLD(data []byte) ([]rdf.Triple, map[string]string, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse JSON-LD: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"

	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("convert JSON-LD to RDF: %w", err)
	}
	nquads, ok := out.(string)
	if !ok {
		return nil, nil, fmt.Errorf("convert JSON-LD to RDF: unexpected result %T", out)
	}

	quads, err := rdf.NewQuadDecoder(strings.NewReader(nquads), rdf.NQuads).DecodeAll()
	if err != nil {
		return nil, nil, fmt.Errorf("decode N-Quads: %w", err)
	}
	triples := make([]rdf.Triple, len(quads))
	for i, q := range quads {
		triples[i] = q.Triple
	}
	return triples, contextPrefixes(doc), nil
}

// turtlePrefixes collects the prefix directives of a Turtle document.
// Directives written inside string literals or comments are not bindings.
func turtlePrefixes(data []byte) map[string]string {
	prefixes := make(map[string]string)
	for _, m := range turtlePrefixPattern.FindAllSubmatch(maskLiterals(data), -1) {
		prefixes[string(m[1])] = string(m[2])
	}
	return prefixes
}

// maskLiterals returns a copy of a Turtle document with the contents of
// string literals and comments blanked. Line breaks are kept.
func maskLiterals(data []byte) []byte {
	out := append([]byte(nil), data...)
	blank := func(from, to int) {
		for k := from; k < to && k < len(out); k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}

	for i := 0; i < len(out); {
		switch c := out[i]; c {
		case '<':
			end := bytes.IndexByte(out[i:], '>')
			if end < 0 {
				return out
			}
			i += end + 1
		case '#':
			end := bytes.IndexByte(out[i:], '\n')
			if end < 0 {
				end = len(out) - i
			}
			blank(i, i+end)
			i += end
		case '"', '\'':
			delim := []byte{c}
			if i+2 < len(out) && out[i+1] == c && out[i+2] == c {
				delim = []byte{c, c, c}
			}
			start := i + len(delim)
			j := start
			for j < len(out) {
				if out[j] == '\\' {
					j += 2
					continue
				}
				if bytes.HasPrefix(out[j:], delim) || (len(delim) == 1 && out[j] == '\n') {
					break
				}
				j++
			}
			blank(start, j)
			i = j + len(delim)
		default:
			i++
		}
	}
	return out
}

func xmlPrefixes(data []byte) map[string]string {
	prefixes := make(map[string]string)
	for _, m := range xmlnsPattern.FindAllSubmatch(data, -1) {
		prefixes[string(m[1])] = string(m[2])
	}
	return prefixes
}

// contextPrefixes collects the string-valued terms of a top-level @context
// whose value is an absolute IRI.
func contextPrefixes(doc interface{}) map[string]string {
	prefixes := make(map[string]string)
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return prefixes
	}

	var contexts []interface{}
	switch ctx := obj["@context"].(type) {
	case map[string]interface{}:
		contexts = append(contexts, ctx)
	case []interface{}:
		contexts = ctx
	}

	for _, c := range contexts {
		terms, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		for term, v := range terms {
			iri, ok := v.(string)
			if !ok || strings.HasPrefix(term, "@") || !strings.Contains(iri, "://") {
				continue
			}
			if strings.HasSuffix(iri, "/") || strings.HasSuffix(iri, "#") {
				prefixes[term] = iri
			}
		}
	}
	return prefixes
}

func formatName(f rdf.Format) string {
	switch f {
	case rdf.Turtle:
		return "Turtle"
	case rdf.RDFXML:
		return "RDF/XML"
	case rdf.NTriples:
		return "N-Triples"
	default:
		return "RDF"
	}
}
