package sense

// TargetSet is the per-rule working collection of targets for one tick.
// Members are unique by candidate identity and kept sorted by range lazily.
type TargetSet struct {
	targets []*Target
	index   map[targetKey]struct{}
	dirty   bool
	sorts   int

	// AnyAction is the aggregate verdict of sensor and filters.
	AnyAction bool
	// Param is a value captured while composing the set (a count, a score).
	Param    float64
	HasParam bool
}

// NewTargetSet creates an empty set.
func NewTargetSet() *TargetSet {
	return &TargetSet{index: make(map[targetKey]struct{})}
}

// Add inserts t, taking a reference. Duplicates are rejected and false is
// returned.
func (s *TargetSet) Add(t *Target) bool {
	k := t.key()
	if _, dup := s.index[k]; dup {
		return false
	}
	s.index[k] = struct{}{}
	s.targets = append(s.targets, t.Retain())
	s.dirty = true
	return true
}

// Remove drops t from the set and releases the set's reference.
func (s *TargetSet) Remove(t *Target) bool {
	k := t.key()
	if _, ok := s.index[k]; !ok {
		return false
	}
	delete(s.index, k)
	for i, m := range s.targets {
		if m.key() == k {
			copy(s.targets[i:], s.targets[i+1:])
			s.targets[len(s.targets)-1] = nil
			s.targets = s.targets[:len(s.targets)-1]
			m.Release()
			break
		}
	}
	s.dirty = true
	return true
}

// Clear releases every member and resets the verdict. Clearing an empty set
// leaves the sort state untouched.
func (s *TargetSet) Clear() {
	s.AnyAction = false
	s.Param = 0
	s.HasParam = false
	if len(s.targets) == 0 {
		return
	}
	for i, t := range s.targets {
		t.Release()
		s.targets[i] = nil
	}
	s.targets = s.targets[:0]
	clear(s.index)
	s.dirty = false
}

// Count returns the number of members.
func (s *TargetSet) Count() int {
	return len(s.targets)
}

// Empty reports whether the set has no members.
func (s *TargetSet) Empty() bool {
	return len(s.targets) == 0
}

func (s *TargetSet) sort() {
	if !s.dirty {
		return
	}
	sortTargets(s.targets)
	s.dirty = false
	s.sorts++
}

// Nearest returns the member with the smallest range, or nil.
func (s *TargetSet) Nearest() *Target {
	if len(s.targets) == 0 {
		return nil
	}
	s.sort()
	return s.targets[0]
}

// NearestTargets returns the members ordered by range. The slice is owned by
// the set and valid until the next mutation.
func (s *TargetSet) NearestTargets() []*Target {
	s.sort()
	return s.targets
}

// Each calls fn for every member in range order until fn returns false.
func (s *TargetSet) Each(fn func(*Target) bool) {
	s.sort()
	for _, t := range s.targets {
		if !fn(t) {
			return
		}
	}
}
