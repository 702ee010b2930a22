package diff

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	testCases := []struct {
		name              string
		current           map[string]any
		other             map[string]any
		expectedAdded     []string
		expectedModified  []string
		expectedRemoved   []string
		expectedUnchanged []string
	}{
		{
			name:    "both empty",
			current: map[string]any{},
			other:   map[string]any{},
		},
		{
			name:          "all added",
			current:       map[string]any{},
			other:         map[string]any{"b": "2", "a": "1"},
			expectedAdded: []string{"a", "b"},
		},
		{
			name:            "all removed",
			current:         map[string]any{"a": "1", "b": "2"},
			other:           map[string]any{},
			expectedRemoved: []string{"a", "b"},
		},
		{
			name:              "modified and unchanged",
			current:           map[string]any{"a": "1", "b": "2", "c": "3"},
			other:             map[string]any{"a": "1", "b": "changed", "c": "3"},
			expectedModified:  []string{"b"},
			expectedUnchanged: []string{"a", "c"},
		},
		{
			name:              "nil on both sides is unchanged",
			current:           map[string]any{"a": nil},
			other:             map[string]any{"a": nil},
			expectedUnchanged: []string{"a"},
		},
		{
			name:             "nil versus value is modified",
			current:          map[string]any{"a": nil},
			other:            map[string]any{"a": "x"},
			expectedModified: []string{"a"},
		},
		{
			name: "structured values compared by serialized form",
			current: map[string]any{
				"theme": map[string]any{"primary": "#000", "accent": "#f00"},
				"tags":  []any{"a", "b"},
			},
			other: map[string]any{
				"theme": map[string]any{"accent": "#f00", "primary": "#000"},
				"tags":  []any{"b", "a"},
			},
			expectedModified:  []string{"tags"},
			expectedUnchanged: []string{"theme"},
		},
		{
			name:             "differing declared types do not panic",
			current:          map[string]any{"a": 42},
			other:            map[string]any{"a": "42"},
			expectedModified: []string{"a"},
		},
		{
			name:              "mixed",
			current:           map[string]any{"keep": "v", "change": "old", "gone": "x"},
			other:             map[string]any{"keep": "v", "change": "new", "fresh": "y"},
			expectedAdded:     []string{"fresh"},
			expectedModified:  []string{"change"},
			expectedRemoved:   []string{"gone"},
			expectedUnchanged: []string{"keep"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := Diff(tc.current, tc.other)

			assert.Equal(t, sliceOrEmpty(tc.expectedAdded), sliceOrEmpty(r.Added))
			assert.Equal(t, sliceOrEmpty(tc.expectedModified), sliceOrEmpty(r.Modified))
			assert.Equal(t, sliceOrEmpty(tc.expectedRemoved), sliceOrEmpty(r.Removed))
			assert.Equal(t, sliceOrEmpty(tc.expectedUnchanged), sliceOrEmpty(r.Unchanged))
		})
	}
}

// TestDiffPartition checks that added∪modified∪unchanged covers exactly the
// other map's keys, and removed∪modified∪unchanged exactly the current map's.
func TestDiffPartition(t *testing.T) {
	current := map[string]any{
		"a": "1", "b": "2", "c": nil, "d": map[string]any{"x": 1},
	}
	other := map[string]any{
		"b": "2", "c": "now set", "d": map[string]any{"x": 2}, "e": "new",
	}

	r := Diff(current, other)

	otherKeys := append(append(append([]string{}, r.Added...), r.Modified...), r.Unchanged...)
	sort.Strings(otherKeys)
	assert.Equal(t, sortedKeys(other), otherKeys)

	currentKeys := append(append(append([]string{}, r.Removed...), r.Modified...), r.Unchanged...)
	sort.Strings(currentKeys)
	assert.Equal(t, sortedKeys(current), currentKeys)
}

func TestDiffSelf(t *testing.T) {
	m := map[string]any{"a": "1", "b": nil, "c": []any{"x"}}

	r := Diff(m, m)

	assert.Empty(t, r.Added)
	assert.Empty(t, r.Modified)
	assert.Empty(t, r.Removed)
	assert.Equal(t, sortedKeys(m), r.Unchanged)
}

// TestDiffSymmetry checks diff(A,B).added == diff(B,A).removed and vice versa.
func TestDiffSymmetry(t *testing.T) {
	a := map[string]any{"shared": "1", "only_a": "x", "differs": "a"}
	b := map[string]any{"shared": "1", "only_b": "y", "differs": "b"}

	ab := Diff(a, b)
	ba := Diff(b, a)

	assert.Equal(t, ab.Added, ba.Removed)
	assert.Equal(t, ab.Removed, ba.Added)
	assert.Equal(t, ab.Modified, ba.Modified)
	assert.Equal(t, ab.Unchanged, ba.Unchanged)
}

func TestDiffIsDeterministic(t *testing.T) {
	a := map[string]any{"z": "1", "y": "2", "x": "3", "w": "4"}
	b := map[string]any{"z": "1", "y": "mod", "v": "new"}

	first := Diff(a, b)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Diff(a, b))
	}
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
