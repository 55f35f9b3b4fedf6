// Package prefs remembers the player's last menu choices between sessions.
// Data lives in the platform's per-user data directory through gdata.
package prefs

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// AppName is the gdata application name.
const AppName = "triplestack"

const (
	prefsObject   = "prefs"
	prefsProperty = "menu"
)

// Preferences holds the remembered choices.
type Preferences struct {
	Game   string `yaml:"game"`   // Registry ID, e.g. "triple"
	Preset string `yaml:"preset"` // Difficulty preset name
	Level  int    `yaml:"level"`  // Start level
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Preferences {
	return Preferences{Game: "triple", Preset: "normal", Level: 1}
}

// Store loads and saves Preferences. A Store with a nil manager keeps
// everything in memory.
type Store struct {
	manager *gdata.Manager
	mem     Preferences
}

// Open opens the store for appName. An empty name means AppName.
func Open(appName string) (*Store, error) {
	if appName == "" {
		appName = AppName
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("prefs: open %s: %w", appName, err)
	}
	return &Store{manager: m, mem: Defaults()}, nil
}

// Memory returns a store that never touches the disk.
func Memory() *Store {
	return &Store{mem: Defaults()}
}

// Load returns the stored preferences, or Defaults when none are stored.
// Fields missing from the stored data keep their default values.
func (s *Store) Load() (Preferences, error) {
	if s.manager == nil {
		return s.mem, nil
	}
	if !s.manager.ObjectPropExists(prefsObject, prefsProperty) {
		return Defaults(), nil
	}

	data, err := s.manager.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		return Defaults(), fmt.Errorf("prefs: load: %w", err)
	}

	p := Defaults()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Defaults(), fmt.Errorf("prefs: decode: %w", err)
	}
	if p.Level < 1 {
		p.Level = 1
	}
	return p, nil
}

// Save stores p.
func (s *Store) Save(p Preferences) error {
	if s.manager == nil {
		s.mem = p
		return nil
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	if err := s.manager.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("prefs: save: %w", err)
	}
	return nil
}

// Reset stores the defaults.
func (s *Store) Reset() error {
	return s.Save(Defaults())
}
