package settings

import (
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// Definition is the typed schema of one setting: its key, input type,
// validation rules and default value. Definitions are registered once at
// startup; the store is seeded from them.
type Definition struct {
	Key         string
	Type        models.SettingType
	Category    string
	Default     string
	Description string

	// Options constrains select and multiselect values.
	Options []string

	// Rules is an extra go-playground/validator tag applied on top of the
	// type-implied rule (e.g. "min=1,max=65535").
	Rules string

	IsSystem    bool
	IsEncrypted bool
}

// typeRules maps setting types to their implied validator tag. Types absent
// here accept any text.
var typeRules = map[models.SettingType]string{ //nolint:gochecknoglobals
	models.TypeNumber:  "omitempty,numeric",
	models.TypeEmail:   "omitempty,email",
	models.TypeURL:     "omitempty,url",
	models.TypeBoolean: "oneof=true false",
	models.TypeColor:   "omitempty,hexcolor",
}

// Registry holds all known setting definitions.
type Registry struct {
	defs     map[string]Definition
	validate *validator.Validate
}

// NewRegistry creates an empty definition registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:     make(map[string]Definition),
		validate: validator.New(),
	}
}

// Register adds a definition. Keys are unique.
func (r *Registry) Register(def Definition) error {
	if def.Key == "" {
		return ErrKeyEmpty
	}
	if _, ok := r.defs[def.Key]; ok {
		return errors.Wrap(ErrDefinitionExists, def.Key)
	}

	r.defs[def.Key] = def

	return nil
}

// MustRegister adds a definition and panics on a duplicate key. Intended for
// the static definition tables wired up at startup.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for a key.
func (r *Registry) Lookup(key string) (Definition, bool) {
	def, ok := r.defs[key]
	return def, ok
}

// All returns every registered definition, key-sorted.
func (r *Registry) All() []Definition {
	defs := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })

	return defs
}

// Validate checks a raw value against the definition's type-implied rule,
// its extra rules and its options list.
func (r *Registry) Validate(def Definition, raw string) error {
	if rule, ok := typeRules[def.Type]; ok {
		if err := r.validate.Var(raw, rule); err != nil {
			return errors.Wrapf(ErrValueInvalid, "%s: %v", def.Key, err)
		}
	}

	if def.Rules != "" {
		if err := r.validate.Var(raw, def.Rules); err != nil {
			return errors.Wrapf(ErrValueInvalid, "%s: %v", def.Key, err)
		}
	}

	switch def.Type {
	case models.TypeSelect:
		if len(def.Options) > 0 && !contains(def.Options, raw) {
			return errors.Wrapf(ErrValueInvalid, "%s: %q is not an allowed option", def.Key, raw)
		}
	case models.TypeMultiselect:
		var selected []string
		if err := json.Unmarshal([]byte(raw), &selected); err != nil {
			return errors.Wrapf(ErrValueInvalid, "%s: multiselect value must be a JSON string array", def.Key)
		}
		for _, s := range selected {
			if len(def.Options) > 0 && !contains(def.Options, s) {
				return errors.Wrapf(ErrValueInvalid, "%s: %q is not an allowed option", def.Key, s)
			}
		}
	case models.TypeJSON:
		if !json.Valid([]byte(raw)) {
			return errors.Wrapf(ErrValueInvalid, "%s: value must be valid JSON", def.Key)
		}
	}

	return nil
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}

	return false
}
