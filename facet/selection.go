package facet

import "sort"

// Selection maps a facet key to its selected values. A facet with no
// selected values is inactive.
type Selection map[string]map[string]struct{}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{}
}

// Add selects value under key.
func (s Selection) Add(key, value string) {
	set, ok := s[key]
	if !ok {
		set = make(map[string]struct{})
		s[key] = set
	}
	set[value] = struct{}{}
}

// Remove deselects value and drops key once its set is empty.
func (s Selection) Remove(key, value string) {
	set, ok := s[key]
	if !ok {
		return
	}
	delete(set, value)
	if len(set) == 0 {
		delete(s, key)
	}
}

// Toggle flips value under key and reports whether it is now selected.
func (s Selection) Toggle(key, value string) bool {
	if s.Has(key, value) {
		s.Remove(key, value)
		return false
	}
	s.Add(key, value)
	return true
}

// Has reports whether value is selected under key.
func (s Selection) Has(key, value string) bool {
	_, ok := s[key][value]
	return ok
}

// Active reports whether key has any selected value.
func (s Selection) Active(key string) bool {
	return len(s[key]) > 0
}

// Len is the number of selected values across every facet.
func (s Selection) Len() int {
	n := 0
	for _, set := range s {
		n += len(set)
	}
	return n
}

// Values returns the selected values of key in sorted order.
func (s Selection) Values(key string) []string {
	set := s[key]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Keys returns the active facet keys in sorted order.
func (s Selection) Keys() []string {
	out := make([]string, 0, len(s))
	for k, set := range s {
		if len(set) > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, set := range s {
		if len(set) == 0 {
			continue
		}
		cp := make(map[string]struct{}, len(set))
		for v := range set {
			cp[v] = struct{}{}
		}
		out[k] = cp
	}
	return out
}

// Equal reports whether both selections hold the same active values.
func (s Selection) Equal(other Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	for k, set := range s {
		for v := range set {
			if !other.Has(k, v) {
				return false
			}
		}
	}
	return true
}
