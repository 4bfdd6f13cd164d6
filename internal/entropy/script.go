package entropy

// Script is a Source that replays a fixed sequence of values, for tests that
// must force a particular branch. Each value is clamped into the requested
// range. Once the sequence is exhausted Range returns Fallback clamped the
// same way.
type Script struct {
	values   []int
	next     int
	Fallback int
}

// NewScript creates a Script replaying values in order.
func NewScript(values ...int) *Script {
	return &Script{values: values}
}

// Constant returns a Script that always yields v.
func Constant(v int) *Script {
	return &Script{Fallback: v}
}

// Range returns the next scripted value clamped into [lo, hi].
func (s *Script) Range(lo, hi int) int {
	v := s.Fallback
	if s.next < len(s.values) {
		v = s.values[s.next]
		s.next++
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// Remaining returns how many scripted values have not been consumed.
func (s *Script) Remaining() int {
	return len(s.values) - s.next
}
