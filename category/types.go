package category

import "fmt"

// Types is a bitset of the datatypes flowing from the WHEN side of a rule to
// the DO side.
type Types uint16

const (
	Boolean Types = 1 << iota
	Number
	Object
	Position
	Direction
	Text
	Color
)

var typeNames = []struct {
	t    Types
	name string
}{
	{Boolean, "boolean"},
	{Number, "number"},
	{Object, "object"},
	{Position, "position"},
	{Direction, "direction"},
	{Text, "text"},
	{Color, "color"},
}

// Has checks if the set contains every type in other.
func (t Types) Has(other Types) bool {
	return t&other == other
}

// Intersects reports whether the sets share any type.
func (t Types) Intersects(other Types) bool {
	return t&other != 0
}

// Add adds types to the set.
func (t Types) Add(other Types) Types {
	return t | other
}

// Remove removes types from the set.
func (t Types) Remove(other Types) Types {
	return t &^ other
}

// ParseTypes builds a datatype set from catalog names.
func ParseTypes(names []string) (Types, error) {
	var t Types
	for _, n := range names {
		found := false
		for _, tn := range typeNames {
			if tn.name == n {
				t |= tn.t
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown datatype %q", n)
		}
	}
	return t, nil
}

// Names returns the catalog names of the types in the set.
func (t Types) Names() []string {
	var out []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			out = append(out, tn.name)
		}
	}
	return out
}
