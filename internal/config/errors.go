package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrBadTimezone error if config audit.timezone is not a valid IANA zone name.
	ErrBadTimezone = errors.New("toml config audit.timezone is not a valid timezone")

	// ErrBadEncryptionKey error if config secrets.encryptionkey is not 32 hex-encoded bytes.
	ErrBadEncryptionKey = errors.New("toml config secrets.encryptionkey must be 64 hex characters (32 bytes)")
)
