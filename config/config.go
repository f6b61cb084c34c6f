// Package config loads the marker's tunable flags from a YAML file, the
// way a heap would be tuned from a startup config rather than
// compiled-in defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/rwwiv/trimark/gc"
)

// Load reads a YAML flags file at path, starting from gc.DefaultFlags()
// so an absent or partial file still yields a usable flag set.
func Load(path string) (gc.Flags, error) {
	flags := gc.DefaultFlags()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return flags, nil
		}
		return flags, err
	}
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return flags, err
	}
	return flags, nil
}

// Save writes flags to path as YAML.
func Save(path string, flags gc.Flags) error {
	data, err := yaml.Marshal(flags)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
