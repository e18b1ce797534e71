package source

import (
	"fmt"
	"mime"
	"path"
	"strings"
)

// Format is an RDF serialization the loader can decode.
type Format string

// Supported formats.
const (
	FormatTurtle   Format = "turtle"
	FormatRDFXML   Format = "rdfxml"
	FormatOWLXML   Format = "owlxml"
	FormatN3       Format = "n3"
	FormatNTriples Format = "ntriples"
	FormatJSONLD   Format = "jsonld"
)

// FormatInfo describes how a format is recognised.
type FormatInfo struct {
	Format     Format
	Extensions []string
	MIMETypes  []string
}

// DefaultFormats returns the recognised formats in module-file preference
// order. The slice is freshly allocated on each call.
func DefaultFormats() []FormatInfo {
	return []FormatInfo{
		{Format: FormatTurtle, Extensions: []string{".ttl"}, MIMETypes: []string{"text/turtle", "application/x-turtle"}},
		{Format: FormatRDFXML, Extensions: []string{".rdf", ".xml"}, MIMETypes: []string{"application/rdf+xml"}},
		{Format: FormatOWLXML, Extensions: []string{".owl"}, MIMETypes: []string{"application/owl+xml"}},
		{Format: FormatN3, Extensions: []string{".n3"}, MIMETypes: []string{"text/n3", "text/rdf+n3"}},
		{Format: FormatNTriples, Extensions: []string{".nt"}, MIMETypes: []string{"application/n-triples"}},
		{Format: FormatJSONLD, Extensions: []string{".jsonld", ".json"}, MIMETypes: []string{"application/ld+json", "application/json"}},
	}
}

// formatForExtension returns the format of a file name by extension.
func formatForExtension(formats []FormatInfo, name string) (Format, bool) {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return "", false
	}
	for _, f := range formats {
		for _, e := range f.Extensions {
			if e == ext {
				return f.Format, true
			}
		}
	}
	return "", false
}

// formatForContentType returns the format of a Content-Type header value.
func formatForContentType(formats []FormatInfo, contentType string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	for _, f := range formats {
		for _, m := range f.MIMETypes {
			if m == mediaType {
				return f.Format, true
			}
		}
	}
	return "", false
}

// acceptHeader lists the MIME types of formats in preference order with
// decreasing quality.
func acceptHeader(formats []FormatInfo) string {
	var parts []string
	for i, f := range formats {
		q := 9 - i
		if q < 2 {
			q = 2
		}
		for _, m := range f.MIMETypes {
			if i == 0 {
				parts = append(parts, m)
				continue
			}
			parts = append(parts, fmt.Sprintf("%s;q=0.%d", m, q))
		}
	}
	parts = append(parts, "*/*;q=0.1")
	return strings.Join(parts, ", ")
}

// Extensions returns every file extension the formats recognise.
func Extensions(formats []FormatInfo) []string {
	var exts []string
	for _, f := range formats {
		exts = append(exts, f.Extensions...)
	}
	return exts
}
