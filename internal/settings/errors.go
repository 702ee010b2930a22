package settings

import (
	"errors"
)

var (
	// ErrKeyEmpty is returned when a change command has no setting key.
	ErrKeyEmpty = errors.New("setting key cannot be empty")

	// ErrUnknownKey is returned when a mutation targets a key the store does
	// not have and no definition or metadata was supplied to create it.
	ErrUnknownKey = errors.New("unknown setting key")

	// ErrSystemSettingProtected is returned when a non-privileged actor
	// attempts to mutate a system-protected setting.
	ErrSystemSettingProtected = errors.New("system setting requires elevated privileges")

	// ErrValueInvalid is returned when a value fails the definition's
	// validation rules.
	ErrValueInvalid = errors.New("setting value failed validation")

	// ErrDefinitionExists is returned when registering a duplicate key.
	ErrDefinitionExists = errors.New("setting definition already registered")
)
