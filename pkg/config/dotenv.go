package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
)

// LoadDotEnv exports variables from the given .env files. Variables already
// present in the environment win. Missing files are skipped.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := gotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("failed to load env file %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
