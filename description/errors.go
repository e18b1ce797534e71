package description

import (
	"errors"
	"fmt"
)

// GrammarError reports a property-list segment that does not match the
// property line grammar.
type GrammarError struct {
	Class  string
	Line   string
	Reason string
}

func (e *GrammarError) Error() string {
	msg := fmt.Sprintf("malformed property line in description of <%s>: %q", e.Class, e.Line)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// IsGrammarError returns true if err is or wraps a GrammarError.
func IsGrammarError(err error) bool {
	var grammarErr *GrammarError
	return errors.As(err, &grammarErr)
}
