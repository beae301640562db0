package category

// Mask accumulates what the tiles already placed in a rule contribute. It is
// a plain value: callers keep one on the stack per compatibility check, so
// concurrent checks never share scratch state.
type Mask struct {
	cats    Set
	negs    Set
	outputs Types
	negOuts Types
}

// Contribute folds one placed tile into the category mask.
func (m *Mask) Contribute(categories, negations Set) {
	m.cats = m.cats.Union(categories)
	m.negs = m.negs.Union(negations)
}

// Output folds a WHEN-side tile's produced datatypes into the datatype mask.
func (m *Mask) Output(t Types) {
	m.outputs |= t
}

// Negate folds a DO-side tile's negated datatypes into the datatype mask.
func (m *Mask) Negate(t Types) {
	m.negOuts |= t
}

// Categories returns the union of contributed categories minus every
// category cancelled by a contributed negation.
func (m *Mask) Categories() Set {
	return m.cats.Without(m.negs)
}

// Types returns the produced datatypes minus the negated ones.
func (m *Mask) Types() Types {
	return m.outputs &^ m.negOuts
}

// Admits applies the inclusion/exclusion test: a tile passes if it requires
// nothing or something it requires is present, and nothing it refuses is
// present.
func Admits(present, inclusions, exclusions Set) bool {
	if !inclusions.Empty() && !present.Intersects(inclusions) {
		return false
	}
	return !present.Intersects(exclusions)
}

// AcceptsInput applies the datatype test: a tile without required inputs
// always passes, otherwise some required type must be available.
func AcceptsInput(available, required Types) bool {
	if required == 0 {
		return true
	}
	return available.Intersects(required)
}
