package config

import (
	"os"
	"strings"
)

// EnvironmentExpander expands environment placeholders in raw configuration bytes.
type EnvironmentExpander interface {
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander resolves ${VAR} and ${VAR:-default} against the process environment.
// An unset variable without a default expands to the empty string.
type OsEnvironmentExpander struct {
	lookup func(string) (string, bool)
}

// NewOsEnvironmentExpander creates an expander backed by os.LookupEnv.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{lookup: os.LookupEnv}
}

// Expand implements EnvironmentExpander.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.Expand(string(input), e.resolve)), nil
}

func (e *OsEnvironmentExpander) resolve(placeholder string) string {
	name, def, hasDefault := strings.Cut(placeholder, ":-")
	if v, ok := e.lookup(name); ok && v != "" {
		return v
	}
	if hasDefault {
		return def
	}
	return ""
}
