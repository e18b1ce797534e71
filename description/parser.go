// Package description parses the property-list descriptions attached to
// ontology classes.
//
// A property-list description starts with a marker phrase followed by one
// bullet per usable property:
//
//	The properties that can be used with this class are:
//	* foaf:name -[0..1]-> rdfs:Literal
//	* datacite:hasIdentifier -[0..N]-> datacite:Identifier
//
// Each bullet has the form "<name> -[<min>(..<max>)?]-> <target>", where the
// bounds are integers or a wildcard ("*" or "N" by default).
package description

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMarker identifies a description as a property list.
const DefaultMarker = "The properties that can be used"

// DefaultWildcards are the bound tokens meaning "no limit".
var DefaultWildcards = []string{"*", "N"}

// bulletPattern matches a line break followed by a bullet marker at line start.
// A bullet with nothing after it still splits, producing an empty segment.
var bulletPattern = regexp.MustCompile(`(?m)\r?\n[ \t]*[*-](?:[ \t]+|\r?$)`)

// tokenPattern is a bare or prefix-qualified identifier made of letters,
// digits, underscores and hyphens in any script.
const tokenPattern = `(?:[\p{L}\p{N}_-]*:)?[\p{L}\p{N}_-]+`

// Options configure a Parser.
type Options struct {
	Marker    string
	Wildcards []string
}

// Parser parses property-list descriptions. It is safe for concurrent use.
type Parser struct {
	marker    string
	wildcards map[string]bool
	line      *regexp.Regexp
}

// NewParser compiles the line grammar for the given options.
func NewParser(opts Options) *Parser {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if len(opts.Wildcards) == 0 {
		opts.Wildcards = DefaultWildcards
	}

	wildcards := make(map[string]bool, len(opts.Wildcards))
	alts := make([]string, 0, len(opts.Wildcards)+1)
	alts = append(alts, `\d+`)
	for _, w := range opts.Wildcards {
		wildcards[w] = true
		alts = append(alts, regexp.QuoteMeta(w))
	}
	bound := "(" + strings.Join(alts, "|") + ")"

	line := regexp.MustCompile(`^(` + tokenPattern + `)\s+-\[` + bound + `(?:\.\.` + bound + `)?\]->\s+(` + tokenPattern + `)$`)

	return &Parser{
		marker:    opts.Marker,
		wildcards: wildcards,
		line:      line,
	}
}

// IsPropertyList reports whether text carries the marker phrase.
func (p *Parser) IsPropertyList(text string) bool {
	return strings.Contains(text, p.marker)
}

// Parse parses the description of class. ok is false when the description is
// not a property list, in which case the class produces no shape. A segment
// that does not match the grammar fails with a GrammarError.
func (p *Parser) Parse(class, text string) (entries []Entry, ok bool, err error) {
	if text == "" || !p.IsPropertyList(text) {
		return nil, false, nil
	}

	for _, segment := range Segments(text) {
		entry, err := p.ParseLine(class, segment)
		if err != nil {
			return nil, true, err
		}
		entries = append(entries, entry)
	}
	return entries, true, nil
}

// ParseLine parses one trimmed bullet segment. The whole segment must match
// the grammar; trailing text after the target is a GrammarError.
func (p *Parser) ParseLine(class, segment string) (Entry, error) {
	m := p.line.FindStringSubmatch(segment)
	if m == nil {
		return Entry{}, &GrammarError{Class: class, Line: segment}
	}
	property, first, second, target := m[1], m[2], m[3], m[4]

	entry := Entry{Property: property, Target: target, Line: segment}

	firstBound, err := p.bound(first)
	if err != nil {
		return Entry{}, &GrammarError{Class: class, Line: segment, Reason: err.Error()}
	}

	// "-[n]->" is an exact cardinality; "-[*]->" leaves both ends open.
	if second == "" {
		entry.Min = firstBound
		entry.Max = firstBound
		return entry, nil
	}

	secondBound, err := p.bound(second)
	if err != nil {
		return Entry{}, &GrammarError{Class: class, Line: segment, Reason: err.Error()}
	}
	entry.Min = firstBound
	entry.Max = secondBound
	return entry, nil
}

func (p *Parser) bound(token string) (Bound, error) {
	if p.wildcards[token] {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return Unbounded, fmt.Errorf("bound %q out of range", token)
	}
	return Exactly(n), nil
}

// Segments splits a description at bullet markers, drops the header segment
// and returns the remaining segments trimmed, without blank ones.
func Segments(text string) []string {
	parts := dropHeader(bulletPattern.Split(text, -1))

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// dropHeader discards the first segment, which holds the introductory prose
// before the first bullet.
func dropHeader(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	return parts[1:]
}
