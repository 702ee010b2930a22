// Package diff computes structural differences between two settings
// snapshots. It is pure: no I/O, no side effects, and it never fails on
// well-formed input.
package diff

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Result partitions the union of both key sets. Added, Modified and Unchanged
// cover the keys of the other map; Removed, Modified and Unchanged cover the
// keys of the current map. All slices are key-sorted so repeated runs over
// identical inputs are byte-identical.
type Result struct {
	Added     []string
	Modified  []string
	Removed   []string
	Unchanged []string
}

// Diff compares the current snapshot against another one.
//
//	Added:     keys present in other but not current
//	Removed:   keys present in current but not other
//	Modified:  keys in both with unequal values
//	Unchanged: keys in both with equal values
//
// Values are compared by canonical serialized form, so structurally equal
// maps and slices compare equal regardless of in-memory representation, and
// a key that is nil on both sides is unchanged.
func Diff(current, other map[string]any) Result {
	var r Result

	for key, otherValue := range other {
		currentValue, ok := current[key]
		if !ok {
			r.Added = append(r.Added, key)
			continue
		}

		if canonical(currentValue) == canonical(otherValue) {
			r.Unchanged = append(r.Unchanged, key)
		} else {
			r.Modified = append(r.Modified, key)
		}
	}

	for key := range current {
		if _, ok := other[key]; !ok {
			r.Removed = append(r.Removed, key)
		}
	}

	sort.Strings(r.Added)
	sort.Strings(r.Modified)
	sort.Strings(r.Removed)
	sort.Strings(r.Unchanged)

	return r
}

// canonical renders a value in a stable comparable form. encoding/json sorts
// map keys, which makes structurally equal maps serialize identically.
func canonical(v any) string {
	if v == nil {
		return "null"
	}

	data, err := json.Marshal(v)
	if err != nil {
		// unmarshalable values (channels, funcs) never come from a settings
		// store; compare by formatted value rather than failing
		return fmt.Sprintf("%#v", v)
	}

	return string(data)
}
