package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	require.ErrorIs(t, r.Register(Definition{}), ErrKeyEmpty)

	require.NoError(t, r.Register(Definition{Key: "app.name", Type: models.TypeText}))
	require.ErrorIs(t, r.Register(Definition{Key: "app.name"}), ErrDefinitionExists)

	def, ok := r.Lookup("app.name")
	assert.True(t, ok)
	assert.Equal(t, models.TypeText, def.Type)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistryAllIsKeySorted(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Definition{Key: "c.third"})
	r.MustRegister(Definition{Key: "a.first"})
	r.MustRegister(Definition{Key: "b.second"})

	defs := r.All()
	require.Len(t, defs, 3)
	assert.Equal(t, "a.first", defs[0].Key)
	assert.Equal(t, "b.second", defs[1].Key)
	assert.Equal(t, "c.third", defs[2].Key)
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()

	testCases := []struct {
		name    string
		def     Definition
		raw     string
		wantErr bool
	}{
		{
			name: "number accepts digits",
			def:  Definition{Key: "k", Type: models.TypeNumber},
			raw:  "42",
		},
		{
			name:    "number rejects text",
			def:     Definition{Key: "k", Type: models.TypeNumber},
			raw:     "forty-two",
			wantErr: true,
		},
		{
			name: "email accepts empty",
			def:  Definition{Key: "k", Type: models.TypeEmail},
			raw:  "",
		},
		{
			name:    "email rejects garbage",
			def:     Definition{Key: "k", Type: models.TypeEmail},
			raw:     "nope",
			wantErr: true,
		},
		{
			name: "url accepts https",
			def:  Definition{Key: "k", Type: models.TypeURL},
			raw:  "https://example.com",
		},
		{
			name:    "boolean rejects yes",
			def:     Definition{Key: "k", Type: models.TypeBoolean},
			raw:     "yes",
			wantErr: true,
		},
		{
			name: "boolean accepts false",
			def:  Definition{Key: "k", Type: models.TypeBoolean},
			raw:  "false",
		},
		{
			name: "color accepts hex",
			def:  Definition{Key: "k", Type: models.TypeColor},
			raw:  "#a0b1c2",
		},
		{
			name:    "color rejects names",
			def:     Definition{Key: "k", Type: models.TypeColor},
			raw:     "red",
			wantErr: true,
		},
		{
			name: "select accepts listed option",
			def:  Definition{Key: "k", Type: models.TypeSelect, Options: []string{"light", "dark"}},
			raw:  "dark",
		},
		{
			name:    "select rejects unlisted option",
			def:     Definition{Key: "k", Type: models.TypeSelect, Options: []string{"light", "dark"}},
			raw:     "sepia",
			wantErr: true,
		},
		{
			name: "multiselect accepts subset",
			def:  Definition{Key: "k", Type: models.TypeMultiselect, Options: []string{"a", "b", "c"}},
			raw:  `["a","c"]`,
		},
		{
			name:    "multiselect rejects non-array",
			def:     Definition{Key: "k", Type: models.TypeMultiselect, Options: []string{"a"}},
			raw:     `"a"`,
			wantErr: true,
		},
		{
			name:    "multiselect rejects unlisted member",
			def:     Definition{Key: "k", Type: models.TypeMultiselect, Options: []string{"a"}},
			raw:     `["a","z"]`,
			wantErr: true,
		},
		{
			name: "json accepts valid document",
			def:  Definition{Key: "k", Type: models.TypeJSON},
			raw:  `{"a":1}`,
		},
		{
			name:    "json rejects broken document",
			def:     Definition{Key: "k", Type: models.TypeJSON},
			raw:     "{broken",
			wantErr: true,
		},
		{
			// max on a string constrains its length
			name: "extra rules apply",
			def:  Definition{Key: "k", Type: models.TypeNumber, Rules: "max=3"},
			raw:  "999",
		},
		{
			name:    "extra rules reject",
			def:     Definition{Key: "k", Type: models.TypeText, Rules: "max=5"},
			raw:     "toolongvalue",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Validate(tc.def, tc.raw)

			if tc.wantErr {
				require.ErrorIs(t, err, ErrValueInvalid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
