package shapes

import (
	"sort"

	"github.com/c360studio/semshape/graph"
)

// classIndex records which modules model each class, by IRI and by local name.
type classIndex struct {
	owners  map[string][]string
	byLocal map[string][]string
}

func newClassIndex(classes []modelClass) *classIndex {
	idx := &classIndex{
		owners:  make(map[string][]string),
		byLocal: make(map[string][]string),
	}
	for _, c := range classes {
		idx.owners[c.iri] = appendUnique(idx.owners[c.iri], c.module)
		local := graph.LocalName(c.iri)
		idx.byLocal[local] = appendUnique(idx.byLocal[local], c.module)
	}
	for _, modules := range idx.owners {
		sort.Strings(modules)
	}
	for _, modules := range idx.byLocal {
		sort.Strings(modules)
	}
	return idx
}

// Owner returns the module whose shape of class is referenced from current.
func (x *classIndex) Owner(class, current string) (string, bool) {
	return pickOwner(x.owners[class], current)
}

// OwnerOfLocal is Owner for a bare local name.
func (x *classIndex) OwnerOfLocal(local, current string) (string, bool) {
	return pickOwner(x.byLocal[local], current)
}

// Len returns the number of distinct modeled classes.
func (x *classIndex) Len() int {
	return len(x.owners)
}

// pickOwner prefers current when it owns the class, else the lexically first
// owner. modules must be sorted.
func pickOwner(modules []string, current string) (string, bool) {
	if len(modules) == 0 {
		return "", false
	}
	for _, m := range modules {
		if m == current {
			return m, true
		}
	}
	return modules[0], true
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
