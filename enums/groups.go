package enums

import (
	"github.com/bearlytools/bitfield/errors"
)

// Groups is a collection of Groups looked up by name. Schemas that are loaded from their JSON
// description use it so that fields declared with the same enum share one *Group.
// Groups is not safe for concurrent mutation.
type Groups struct {
	list   []*Group
	lookup map[string]*Group
}

// NewGroups returns an empty Groups.
func NewGroups() *Groups {
	return &Groups{lookup: map[string]*Group{}}
}

// Len reports the number of enum groups.
func (gs *Groups) Len() int {
	return len(gs.list)
}

// Get returns the ith Group in the order they were added. It panics if out of bounds.
func (gs *Groups) Get(i int) *Group {
	return gs.list[i]
}

// ByName returns the Group named s or nil if it is not found.
func (gs *Groups) ByName(s string) *Group {
	return gs.lookup[s]
}

// Add adds g and returns the *Group callers should use. If a Group with the same name and
// variants is already present, that one is returned. A different Group with the same name is
// an error.
func (gs *Groups) Add(g *Group) (*Group, error) {
	if have, ok := gs.lookup[g.Name()]; ok {
		if !have.Equal(g) {
			return nil, errors.New(errors.PhaseSchema, errors.KindDuplicate).
				Path(g.Name()).
				Detail("a different enum with this name was already added").
				Build()
		}
		return have, nil
	}
	gs.list = append(gs.list, g)
	gs.lookup[g.Name()] = g
	return g, nil
}
