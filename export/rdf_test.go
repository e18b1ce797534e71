package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/c360studio/semshape/description"
	"github.com/c360studio/semshape/export"
	"github.com/c360studio/semshape/shapes"
	"github.com/c360studio/semshape/vocabulary/shacl"
)

func sampleGraph() *shapes.Graph {
	prefixes := shacl.DefaultPrefixes()
	prefixes["ex"] = "http://example.org/"
	prefixes["shapes"] = "http://example.org/shapes/"

	return &shapes.Graph{
		Prefixes: prefixes,
		Shapes: []shapes.NodeShape{
			{
				IRI:   "http://example.org/shapes/AddressShape",
				Class: "http://example.org/Address",
				Properties: []shapes.PropertyShape{
					{Path: "http://example.org/street", Kind: shapes.KindLiteral},
				},
			},
			{
				IRI:   "http://example.org/shapes/PersonShape",
				Class: "http://example.org/Person",
				Root:  true,
				Properties: []shapes.PropertyShape{
					{Path: "http://example.org/hasName", Min: description.Exactly(1), Max: description.Exactly(1), Kind: shapes.KindLiteral},
					{Path: "http://example.org/hasAddress", Kind: shapes.KindNode, Node: "http://example.org/shapes/AddressShape"},
					{Path: "http://example.org/age", Kind: shapes.KindDatatype, Datatype: shacl.XSDInteger},
					{Path: "http://other.example/v/knows", Min: description.Exactly(0), Kind: shapes.KindBlankNodeOrIRI},
				},
			},
		},
	}
}

func TestExportTurtle(t *testing.T) {
	out, err := export.Export(sampleGraph(), export.FormatTurtle)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	output := string(out)

	// Prefixes are sorted
	exIdx := strings.Index(output, "@prefix ex: <http://example.org/> .")
	shIdx := strings.Index(output, "@prefix sh: <http://www.w3.org/ns/shacl#> .")
	if exIdx < 0 || shIdx < 0 || exIdx > shIdx {
		t.Errorf("expected sorted prefix declarations, got:\n%s", output)
	}

	for _, want := range []string{
		"shapes:PersonShape\n    a sh:NodeShape ;\n    sh:targetClass ex:Person ;",
		"sh:path ex:hasName ;",
		"sh:minCount 1 ;",
		"sh:maxCount 1 ;",
		"sh:nodeKind sh:Literal",
		"sh:node shapes:AddressShape",
		"sh:datatype xsd:integer",
		"sh:path <http://other.example/v/knows> ;",
		"sh:minCount 0 ;",
		"sh:nodeKind sh:BlankNodeOrIRI",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Turtle output should contain %q, got:\n%s", want, output)
		}
	}

	if strings.Contains(output, "sh:targetClass ex:Address") {
		t.Error("non-root shape must not carry a target class")
	}
	if !strings.HasSuffix(output, " .\n") {
		t.Error("Turtle output should end with a terminated statement")
	}
}

func TestExportTurtle_CompactsOnlyValidNames(t *testing.T) {
	g := &shapes.Graph{
		Prefixes: map[string]string{
			"sh":       shacl.Namespace,
			"ex":       "http://example.org/",
			"ex-long":  "http://example.org/deep/",
			"bad name": "http://bad.example/",
		},
		Shapes: []shapes.NodeShape{{
			IRI:   "http://example.org/deep/Thing",
			Class: "http://example.org/Thing",
			Root:  true,
			Properties: []shapes.PropertyShape{
				{Path: "http://example.org/has/slash", Kind: shapes.KindLiteral},
			},
		}},
	}

	out, err := export.Export(g, export.FormatTurtle)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	output := string(out)

	if !strings.Contains(output, "ex-long:Thing") {
		t.Errorf("expected longest namespace to win, got:\n%s", output)
	}
	if !strings.Contains(output, "sh:path <http://example.org/has/slash>") {
		t.Errorf("expected local name with slash to stay a full IRI, got:\n%s", output)
	}
	if strings.Contains(output, "bad name") {
		t.Error("invalid prefix names must not be declared")
	}
}

func TestExportNTriples(t *testing.T) {
	out, err := export.Export(sampleGraph(), export.FormatNTriples)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	// Address: type + property + 2. Person: type + target + 4 properties
	// with 3 triples each + 3 counts.
	if len(lines) != 4+2+12+3 {
		t.Errorf("expected 21 triples, got %d:\n%s", len(lines), out)
	}

	// Each line should end with " ."
	for _, line := range lines {
		if !strings.HasSuffix(line, " .") {
			t.Errorf("N-Triple line should end with ' .': %s", line)
		}
	}

	want := "<http://example.org/shapes/PersonShape> <http://www.w3.org/ns/shacl#targetClass> <http://example.org/Person> ."
	if !strings.Contains(string(out), want) {
		t.Errorf("N-Triples output should contain %q", want)
	}
}

func TestExportJSONLD(t *testing.T) {
	out, err := export.Export(sampleGraph(), export.FormatJSONLD)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("JSON-LD output is not valid JSON: %v", err)
	}

	ctx, ok := doc["@context"].(map[string]any)
	if !ok {
		t.Fatal("JSON-LD output should contain @context")
	}
	if ctx["sh"] != shacl.Namespace {
		t.Errorf("expected sh prefix in context, got %v", ctx["sh"])
	}
	if _, ok := doc["@graph"]; !ok {
		t.Error("JSON-LD output should contain @graph")
	}
	if !strings.Contains(string(out), "sh:NodeShape") {
		t.Error("JSON-LD output should use compacted SHACL terms")
	}
}

func TestExport_Deterministic(t *testing.T) {
	for _, format := range []export.Format{export.FormatTurtle, export.FormatNTriples, export.FormatJSONLD} {
		t.Run(string(format), func(t *testing.T) {
			first, err := export.Export(sampleGraph(), format)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			second, err := export.Export(sampleGraph(), format)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if string(first) != string(second) {
				t.Error("repeated exports should be byte-identical")
			}
		})
	}
}

func TestExport_Errors(t *testing.T) {
	if _, err := export.Export(nil, export.FormatTurtle); err == nil {
		t.Error("expected error for nil graph")
	}
	if _, err := export.Export(sampleGraph(), export.Format("rdfxml")); err == nil {
		t.Error("expected error for unsupported format")
	}

	bad := &shapes.Graph{Shapes: []shapes.NodeShape{{IRI: "http://example.org/bad iri", Class: "http://example.org/X"}}}
	if _, err := export.Export(bad, export.FormatTurtle); err == nil {
		t.Error("expected error for invalid IRI")
	}
}

func TestExportEmptyGraph(t *testing.T) {
	out, err := export.Export(&shapes.Graph{Prefixes: shacl.DefaultPrefixes()}, export.FormatTurtle)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(string(out), "@prefix sh:") {
		t.Error("empty graph should still declare prefixes")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"turtle", export.FormatTurtle, false},
		{" NTriples ", export.FormatNTriples, false},
		{"jsonld", export.FormatJSONLD, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := export.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestGetFormatInfo(t *testing.T) {
	info, ok := export.GetFormatInfo(export.FormatTurtle)
	if !ok {
		t.Fatal("expected turtle to be registered")
	}
	if info.MIMEType != "text/turtle" || info.Extension != ".ttl" {
		t.Errorf("unexpected turtle info %+v", info)
	}
	if _, ok := export.GetFormatInfo(export.Format("trig")); ok {
		t.Error("expected trig to be unregistered")
	}
}
