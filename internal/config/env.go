package config

import (
	"os"
	"regexp"
)

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} references with the environment value. An unset
// variable is left untouched so validation can surface it instead of a
// silent empty string.
func expandEnv(content []byte) []byte {
	return envRefPattern.ReplaceAllFunc(content, func(ref []byte) []byte {
		name := string(envRefPattern.FindSubmatch(ref)[1])
		value, ok := os.LookupEnv(name)
		if !ok {
			return ref
		}
		return []byte(value)
	})
}
