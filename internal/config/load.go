package config

import (
	"bytes"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Load reads and strictly decodes the cog.toml at path. Unknown top-level
// fields are a load error, per §3/§6.1; defaults are applied field-by-field
// by merging onto Default() rather than requiring every section to be
// present.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data)
}

// Decode strictly decodes raw TOML bytes into a Settings value seeded with
// Default(), so omitted sections keep their defaults while unknown fields
// still fail the decode.
func Decode(data []byte) (Settings, error) {
	settings := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		return Settings{}, fmt.Errorf("parsing cog.toml: %w", err)
	}
	if settings.CommitTypes == nil {
		settings.CommitTypes = DefaultCommitTypes()
	}
	return settings, nil
}
