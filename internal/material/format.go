package material

import (
	"fmt"
	"strings"
)

// Format selects the auxiliary file flavour.
type Format int

const (
	Python Format = iota
	JSON
	YAML
	TOML
)

// String returns the format name as used in configuration.
func (f Format) String() string {
	switch f {
	case Python:
		return "python"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a configuration value. Empty means Python.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "python", "py":
		return Python, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	default:
		return 0, fmt.Errorf("unknown material format %q", name)
	}
}

// Files returns the paths written for base, which carries no extension.
// Python splits materials and scene linkage into two modules; the
// document formats write one file.
func (f Format) Files(base string) []string {
	switch f {
	case Python:
		return []string{base + "_materials.py", base + "_scene.py"}
	case JSON:
		return []string{base + ".json"}
	case YAML:
		return []string{base + ".yaml"}
	case TOML:
		return []string{base + ".toml"}
	default:
		return nil
	}
}
