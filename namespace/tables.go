package namespace

import (
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/c360studio/semshape/graph"
)

// Table maps a prefix to a namespace.
type Table map[string]string

// Tables are the three lookup tables of one module, consulted in field order.
type Tables struct {
	// Declared holds the prefix bindings declared by the source document.
	Declared Table
	// Observed maps local names to the stems of IRIs used in the module's triples.
	Observed StemTable
	// Embedded holds prefix declarations found inside literal text.
	Embedded Table
}

// embeddedPrefixPattern matches "p: <iri>", "@prefix p: <iri>" and "PREFIX p: <iri>".
var embeddedPrefixPattern = regexp.MustCompile(`(?i)(?:@?prefix\s+)?\b([a-z][\w.-]*):\s*<([^<>\s"]+)>`)

// BuildTables builds the lookup tables of a module graph.
func BuildTables(g *graph.Graph) Tables {
	return Tables{
		Declared: Table(g.Prefixes()),
		Observed: observedTable(g.IRIs()),
		Embedded: embeddedTable(g.Literals()),
	}
}

// StemTable maps a local name to every stem it was observed under, sorted.
type StemTable map[string][]string

// Stem returns the stem for local. A stem with a path or host segment equal
// to prefix (case-insensitively) is preferred; otherwise, and for bare
// tokens, the lexically smallest stem is used.
func (t StemTable) Stem(local, prefix string) (string, bool) {
	stems := t[local]
	if len(stems) == 0 {
		return "", false
	}
	if prefix != "" {
		for _, stem := range stems {
			if hasSegment(stem, prefix) {
				return stem, true
			}
		}
	}
	return stems[0], true
}

func hasSegment(stem, prefix string) bool {
	segments := strings.FieldsFunc(strings.ToLower(stem), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	})
	return slices.Contains(segments, strings.ToLower(prefix))
}

// observedTable indexes IRIs by local name, keeping every distinct stem.
func observedTable(iris []string) StemTable {
	t := make(StemTable)
	for _, iri := range iris {
		stem, local := graph.SplitIRI(iri)
		if local == "" || stem == "" {
			continue
		}
		if !slices.Contains(t[local], stem) {
			t[local] = append(t[local], stem)
		}
	}
	for _, stems := range t {
		sort.Strings(stems)
	}
	return t
}

// embeddedTable collects prefix declarations from free text. The first
// declaration of a prefix, in sorted literal order, wins.
func embeddedTable(literals []string) Table {
	sorted := append([]string(nil), literals...)
	sort.Strings(sorted)

	t := make(Table)
	for _, lit := range sorted {
		for _, m := range embeddedPrefixPattern.FindAllStringSubmatch(lit, -1) {
			if _, ok := t[m[1]]; !ok {
				t[m[1]] = m[2]
			}
		}
	}
	return t
}
