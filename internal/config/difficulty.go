package config

import (
	"errors"
	"fmt"
	"math"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ErrUnknownPreset is returned by ParsePreset.
var ErrUnknownPreset = errors.New("config: unknown difficulty preset")

// Presets lists the presets in menu order.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}
}

// ParsePreset converts a flag value to a preset. Empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	if s == "" {
		return DifficultyNormal, nil
	}
	for _, p := range Presets() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want easy, normal, hard or fixed)", ErrUnknownPreset, s)
}

// Describe returns a one-line summary of what the preset changes.
func (p DifficultyPreset) Describe() string {
	switch p {
	case DifficultyEasy:
		return "one extra slot, refresh and removal; half the obstacles"
	case DifficultyHard:
		return "one fewer refresh and removal; more obstacles"
	case DifficultyFixed:
		return "levels never grow; every level plays like level 1"
	default:
		return "the ruleset as written"
	}
}

// ApplyPreset adjusts a ruleset for a difficulty preset.
func ApplyPreset(cfg *RulesetConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Slots++
		cfg.RefreshQuotaPerLevel++
		if cfg.RemoveQuotaPerLevel > 0 {
			cfg.RemoveQuotaPerLevel++
		}
		cfg.ObstacleRate /= 2
		cfg.Scaling.ObstacleRatePerLevel /= 2
	case DifficultyHard:
		cfg.RefreshQuotaPerLevel = max(cfg.RefreshQuotaPerLevel-1, 0)
		cfg.RemoveQuotaPerLevel = max(cfg.RemoveQuotaPerLevel-1, 0)
		cfg.ObstacleRate = math.Min(cfg.ObstacleRate+0.1, cfg.Scaling.MaxObstacleRate)
	case DifficultyFixed:
		cfg.IncreaseLayersPerLevel = 0
		cfg.Scaling.CardsPerLevelStep = 0
		cfg.Scaling.ObstacleRatePerLevel = 0
	}
}
