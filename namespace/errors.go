package namespace

import (
	"errors"
	"fmt"
)

// UnresolvedPrefixError reports a description token no lookup table could
// resolve.
type UnresolvedPrefixError struct {
	Token  string
	Prefix string
	Bare   bool
	Module string
	Class  string
	Line   string
}

func (e *UnresolvedPrefixError) Error() string {
	if e.Bare {
		return fmt.Sprintf("cannot resolve unqualified token %q in module %q (class <%s>, line %q)",
			e.Token, e.Module, e.Class, e.Line)
	}
	return fmt.Sprintf("cannot resolve prefix %q of %q in module %q (class <%s>, line %q)",
		e.Prefix, e.Token, e.Module, e.Class, e.Line)
}

// IsUnresolvedPrefix returns true if err is or wraps an UnresolvedPrefixError.
func IsUnresolvedPrefix(err error) bool {
	var unresolved *UnresolvedPrefixError
	return errors.As(err, &unresolved)
}
