package description

import "strconv"

// Bound is one end of a cardinality range. An unset bound means no limit.
type Bound struct {
	Value int
	Set   bool
}

// Exactly returns a set bound.
func Exactly(n int) Bound {
	return Bound{Value: n, Set: true}
}

// Unbounded is the unset bound.
var Unbounded = Bound{}

func (b Bound) String() string {
	if !b.Set {
		return "*"
	}
	return strconv.Itoa(b.Value)
}

// Entry is one parsed property line of a class description.
type Entry struct {
	// Property is the raw property token (prefix:local or bare).
	Property string
	// Target is the raw target token; classification happens at compile time.
	Target string
	Min    Bound
	Max    Bound
	// Line is the trimmed segment the entry was parsed from.
	Line string
}

// Class is a class IRI with its parsed property entries.
type Class struct {
	IRI     string
	Entries []Entry
}
