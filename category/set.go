package category

import (
	"fmt"
	"math/bits"
	"strings"
)

// SetBits is the capacity of a Set.
const SetBits = 128

// Compile-time guard: Count must fit in a Set.
var _ [SetBits - int(Count)]struct{}

// Set is a fixed-width bitset of categories. It is a value type so that
// compatibility checks can build scratch masks on the stack.
type Set [SetBits / 64]uint64

// Of builds a set from the given categories.
func Of(cs ...Category) Set {
	var s Set
	for _, c := range cs {
		s = s.Add(c)
	}
	return s
}

// Has reports whether c is in the set.
func (s Set) Has(c Category) bool {
	return s[c/64]&(1<<(c%64)) != 0
}

// Add returns the set with c included.
func (s Set) Add(c Category) Set {
	s[c/64] |= 1 << (c % 64)
	return s
}

// Remove returns the set with c excluded.
func (s Set) Remove(c Category) Set {
	s[c/64] &^= 1 << (c % 64)
	return s
}

// Union returns s | o.
func (s Set) Union(o Set) Set {
	for i := range s {
		s[i] |= o[i]
	}
	return s
}

// Intersect returns s & o.
func (s Set) Intersect(o Set) Set {
	for i := range s {
		s[i] &= o[i]
	}
	return s
}

// Without returns s &^ o.
func (s Set) Without(o Set) Set {
	for i := range s {
		s[i] &^= o[i]
	}
	return s
}

// Intersects reports whether s and o share any category.
func (s Set) Intersects(o Set) bool {
	for i := range s {
		if s[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

// Empty reports whether no category is set.
func (s Set) Empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of categories in the set.
func (s Set) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// Each calls fn for every category in ascending order.
func (s Set) Each(fn func(Category)) {
	for i, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			fn(Category(i*64 + b))
			w &^= 1 << b
		}
	}
}

// Names returns the catalog names of the categories in the set.
func (s Set) Names() []string {
	out := make([]string, 0, s.Len())
	s.Each(func(c Category) { out = append(out, c.String()) })
	return out
}

func (s Set) String() string {
	return "{" + strings.Join(s.Names(), ",") + "}"
}

// Parse builds a set from catalog names.
func Parse(names []string) (Set, error) {
	var s Set
	for _, n := range names {
		c, ok := Lookup(n)
		if !ok {
			return Set{}, fmt.Errorf("unknown category %q", n)
		}
		s = s.Add(c)
	}
	return s, nil
}
