package export

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/c360studio/semshape/shapes"
	"github.com/c360studio/semshape/vocabulary/shacl"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unsupported output format %q", s)
	}
	return f, nil
}

var (
	prefixNamePattern = regexp.MustCompile(`^(?:[A-Za-z](?:[A-Za-z0-9_.-]*[A-Za-z0-9_-])?)?$`)
	localNamePattern  = regexp.MustCompile(`^(?:[A-Za-z0-9_](?:[A-Za-z0-9_.-]*[A-Za-z0-9_-])?)?$`)
)

// TurtleWriter writes shape graphs in Turtle.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a new Turtle writer with the standard prefixes.
func NewTurtleWriter() *TurtleWriter {
	return &TurtleWriter{
		prefixes: shacl.DefaultPrefixes(),
	}
}

// SetPrefix sets a namespace prefix. Names that are not valid Turtle prefix
// names are ignored.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	if !prefixNamePattern.MatchString(prefix) || iri == "" {
		return
	}
	w.prefixes[prefix] = iri
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, w.prefixes[prefix]))
	}
	w.sb.WriteString("\n")
}

// WriteShape writes a node shape with its property shapes nested as blank
// nodes.
func (w *TurtleWriter) WriteShape(s shapes.NodeShape) {
	w.sb.WriteString(w.term(s.IRI))
	w.sb.WriteString("\n    a ")
	w.sb.WriteString(w.term(shacl.ClassNodeShape))

	if s.Root {
		w.sb.WriteString(" ;\n    ")
		w.sb.WriteString(w.term(shacl.PropTargetClass))
		w.sb.WriteString(" ")
		w.sb.WriteString(w.term(s.Class))
	}

	if len(s.Properties) > 0 {
		w.sb.WriteString(" ;\n    ")
		w.sb.WriteString(w.term(shacl.PropProperty))
		w.sb.WriteString(" ")
		for i, p := range s.Properties {
			if i > 0 {
				w.sb.WriteString(", ")
			}
			w.writeProperty(p)
		}
	}
	w.sb.WriteString(" .\n")
}

func (w *TurtleWriter) writeProperty(p shapes.PropertyShape) {
	pairs := [][2]string{{w.term(shacl.PropPath), w.term(p.Path)}}
	if p.Min.Set {
		pairs = append(pairs, [2]string{w.term(shacl.PropMinCount), strconv.Itoa(p.Min.Value)})
	}
	if p.Max.Set {
		pairs = append(pairs, [2]string{w.term(shacl.PropMaxCount), strconv.Itoa(p.Max.Value)})
	}
	switch p.Kind {
	case shapes.KindLiteral:
		pairs = append(pairs, [2]string{w.term(shacl.PropNodeKind), w.term(shacl.NodeKindLiteral)})
	case shapes.KindDatatype:
		pairs = append(pairs, [2]string{w.term(shacl.PropDatatype), w.term(p.Datatype)})
	case shapes.KindNode:
		pairs = append(pairs, [2]string{w.term(shacl.PropNode), w.term(p.Node)})
	default:
		pairs = append(pairs, [2]string{w.term(shacl.PropNodeKind), w.term(shacl.NodeKindBlankNodeOrIRI)})
	}

	w.sb.WriteString("[\n")
	for i, pair := range pairs {
		w.sb.WriteString("        ")
		w.sb.WriteString(pair[0])
		w.sb.WriteString(" ")
		w.sb.WriteString(pair[1])
		if i < len(pairs)-1 {
			w.sb.WriteString(" ;")
		}
		w.sb.WriteString("\n")
	}
	w.sb.WriteString("    ]")
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

// term renders an IRI as a prefixed name when a bound namespace yields a
// valid local name, preferring the longest namespace, else as <iri>.
func (w *TurtleWriter) term(iri string) string {
	best, bestNS := "", ""
	found := false
	for prefix, ns := range w.prefixes {
		if !strings.HasPrefix(iri, ns) || !localNamePattern.MatchString(iri[len(ns):]) {
			continue
		}
		if !found || len(ns) > len(bestNS) || (len(ns) == len(bestNS) && prefix < best) {
			best, bestNS, found = prefix, ns, true
		}
	}
	if !found {
		return "<" + iri + ">"
	}
	return best + ":" + iri[len(bestNS):]
}
