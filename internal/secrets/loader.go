// Package secrets resolves API keys and passwords from files, configuration
// or the environment.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Source lists the places a secret may come from, in order of precedence:
// File, Value, Env.
type Source struct {
	// Name appears in error messages.
	Name  string
	Value string
	File  string
	Env   string
}

func (s Source) label() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return "secret"
}

// Load resolves src against the OS filesystem and environment.
func Load(src Source) (string, error) {
	return LoadFrom(afero.NewOsFs(), src)
}

// LoadFrom resolves src reading files from fs. The secret is trimmed; a blank
// secret is an error.
func LoadFrom(fs afero.Fs, src Source) (string, error) {
	name := src.label()

	if path := strings.TrimSpace(src.File); path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, path, err)
		}
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s file %q is empty", name, path)
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	env := strings.TrimSpace(src.Env)
	if env == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}
	if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
		return secret, nil
	}
	return "", fmt.Errorf("%s is not configured (set %s)", name, env)
}
