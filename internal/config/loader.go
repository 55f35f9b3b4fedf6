package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrUnknownRuleset is returned for a ruleset name with no built-in default
// and no explicit config file.
var ErrUnknownRuleset = errors.New("config: unknown ruleset")

// Load loads a ruleset by name.
// Search order: customPath -> ~/.triplestack/configs/<name>.yaml ->
// ./configs/<name>.yaml -> embedded default -> hardcoded default.
//
// Files are layered over the embedded default, so a user file only needs the
// keys it changes.
func Load(name, customPath string) (RulesetConfig, error) {
	if name == "" {
		name = Classic
	}

	base, builtin := embedded[name]
	if !builtin && customPath == "" {
		return RulesetConfig{}, fmt.Errorf("%w: %q", ErrUnknownRuleset, name)
	}

	cfg := hardcoded(name)
	if builtin {
		if next, err := decode(base, cfg); err == nil {
			cfg = next
		}
	}

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		next, err := decode(data, cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return finish(next, customPath)
	}

	for _, path := range []string{userConfigPath(name + ".yaml"), filepath.Join("configs", name+".yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if next, err := decode(data, cfg); err == nil {
			return finish(next, path)
		}
	}

	return finish(cfg, "embedded "+name)
}

func decode(data []byte, onto RulesetConfig) (RulesetConfig, error) {
	if err := yaml.Unmarshal(data, &onto); err != nil {
		return RulesetConfig{}, err
	}
	return onto, nil
}

func finish(cfg RulesetConfig, source string) (RulesetConfig, error) {
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".triplestack", "configs", filename)
}

// Marshal renders a ruleset as YAML, for writing a starting point for user files.
func Marshal(cfg RulesetConfig) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal %s: %w", cfg.Name, err)
	}
	return out, nil
}
