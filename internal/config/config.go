// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

const (
	defaultShutDownTime  = 5
	defaultMaxNameLength = 255
	encryptionKeyHexLen  = 64
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("GO_SETTINGS_ADMIN_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings and fill defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Backup.MaxNameLength == 0 {
		c.Backup.MaxNameLength = defaultMaxNameLength
	}

	if c.Audit.Timezone != "" {
		if _, err := time.LoadLocation(c.Audit.Timezone); err != nil {
			return errors.Wrap(ErrBadTimezone, invalidErrMessage)
		}
	}

	if c.Secrets.EncryptionKey != "" {
		raw, err := hex.DecodeString(c.Secrets.EncryptionKey)
		if err != nil || len(raw) != encryptionKeyHexLen/2 {
			return errors.Wrap(ErrBadEncryptionKey, invalidErrMessage)
		}
	}

	return nil
}

// AuditLocation resolves the configured audit timezone; UTC when unset.
// The config is validated at load time, so a bad zone name falls back to UTC
// instead of failing here.
func (c Config) AuditLocation() *time.Location {
	if c.Audit.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(c.Audit.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}
