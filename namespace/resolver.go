// Package namespace resolves prefixed and bare tokens from property-list
// descriptions to full IRIs.
//
// Each module gets three lookup tables, consulted in a fixed order:
//
//  1. prefixes declared by the source document
//  2. the stems of IRIs observed in the module's triples, keyed by local name;
//     among several stems, one naming the token's prefix wins
//  3. prefix declarations written inside literal text
//
// The first table with an entry wins. Bare tokens (no colon) only consult the
// observed table.
package namespace

import (
	"strings"

	"github.com/c360studio/semshape/graph"
)

// Strategy identifies the table a resolution came from.
type Strategy int

const (
	// Unresolved means no table had an entry.
	Unresolved Strategy = iota
	// Declared means the prefix is a declared binding.
	Declared
	// Observed means the local name matched an IRI used in the graph.
	Observed
	// Embedded means the prefix was declared inside a literal.
	Embedded
)

func (s Strategy) String() string {
	switch s {
	case Declared:
		return "declared"
	case Observed:
		return "observed"
	case Embedded:
		return "embedded"
	default:
		return "unresolved"
	}
}

// Token is a split description token.
type Token struct {
	Prefix    string
	Local     string
	Qualified bool
}

// ParseToken splits "prefix:local" at the first colon. A token without a
// colon is bare.
func ParseToken(s string) Token {
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return Token{Local: s}
	}
	return Token{Prefix: prefix, Local: local, Qualified: true}
}

func (t Token) String() string {
	if !t.Qualified {
		return t.Local
	}
	return t.Prefix + ":" + t.Local
}

// Resolve resolves a token against the tables. It returns the full IRI and
// the strategy that produced it; ok is false when no table matched.
func Resolve(tables Tables, tok Token) (iri string, strategy Strategy, ok bool) {
	if tok.Qualified {
		if ns, found := tables.Declared[tok.Prefix]; found {
			return ns + tok.Local, Declared, true
		}
	}
	if tok.Local != "" {
		if stem, found := tables.Observed.Stem(tok.Local, tok.Prefix); found {
			return stem + tok.Local, Observed, true
		}
	}
	if tok.Qualified {
		if ns, found := tables.Embedded[tok.Prefix]; found {
			return ns + tok.Local, Embedded, true
		}
	}
	return "", Unresolved, false
}

// Resolver resolves tokens for one module.
type Resolver struct {
	module string
	tables Tables
}

// NewResolver builds the lookup tables of g.
func NewResolver(module string, g *graph.Graph) *Resolver {
	return &Resolver{module: module, tables: BuildTables(g)}
}

// NewResolverFromTables wraps prebuilt tables.
func NewResolverFromTables(module string, tables Tables) *Resolver {
	return &Resolver{module: module, tables: tables}
}

// Module returns the module the resolver belongs to.
func (r *Resolver) Module() string {
	return r.module
}

// Tables returns the resolver's lookup tables.
func (r *Resolver) Tables() Tables {
	return r.tables
}

// Resolve resolves a token string.
func (r *Resolver) Resolve(token string) (string, Strategy, bool) {
	return Resolve(r.tables, ParseToken(token))
}

// Expand resolves token, returning an UnresolvedPrefixError naming class and
// line when no table matches.
func (r *Resolver) Expand(token, class, line string) (string, error) {
	tok := ParseToken(token)
	iri, _, ok := Resolve(r.tables, tok)
	if !ok {
		return "", &UnresolvedPrefixError{
			Token:  token,
			Prefix: tok.Prefix,
			Bare:   !tok.Qualified,
			Module: r.module,
			Class:  class,
			Line:   line,
		}
	}
	return iri, nil
}
