package source

import (
	"errors"
	"fmt"
)

// SourceError reports an input that does not exist, cannot be read or
// decoded, or holds no recognised ontology file.
type SourceError struct {
	Locator string
	Reason  string
	Err     error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("source %s: %s", e.Locator, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsSourceError returns true if err is or wraps a SourceError.
func IsSourceError(err error) bool {
	var sourceErr *SourceError
	return errors.As(err, &sourceErr)
}
