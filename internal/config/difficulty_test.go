package config

import (
	"errors"
	"testing"
)

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    DifficultyPreset
		wantErr bool
	}{
		{"", DifficultyNormal, false},
		{"easy", DifficultyEasy, false},
		{"hard", DifficultyHard, false},
		{"fixed", DifficultyFixed, false},
		{"nightmare", "", true},
	}

	for _, tc := range tests {
		got, err := ParsePreset(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownPreset) {
				t.Errorf("ParsePreset(%q) err = %v, expected ErrUnknownPreset", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParsePreset(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		name   string
		preset DifficultyPreset
		check  func(t *testing.T, c RulesetConfig)
	}{
		{"normal keeps everything", DifficultyNormal, func(t *testing.T, c RulesetConfig) {
			if c.Slots != 7 || c.RefreshQuotaPerLevel != 2 || c.ObstacleRate != 0.2 {
				t.Errorf("normal changed the ruleset: %+v", c)
			}
		}},
		{"easy is generous", DifficultyEasy, func(t *testing.T, c RulesetConfig) {
			if c.Slots != 8 || c.RefreshQuotaPerLevel != 3 || c.RemoveQuotaPerLevel != 3 {
				t.Errorf("easy: slots=%d refresh=%d remove=%d", c.Slots, c.RefreshQuotaPerLevel, c.RemoveQuotaPerLevel)
			}
			if c.ObstacleRate != 0.1 {
				t.Errorf("easy obstacle rate = %g", c.ObstacleRate)
			}
		}},
		{"hard is stingy", DifficultyHard, func(t *testing.T, c RulesetConfig) {
			if c.RefreshQuotaPerLevel != 1 || c.RemoveQuotaPerLevel != 1 {
				t.Errorf("hard: refresh=%d remove=%d", c.RefreshQuotaPerLevel, c.RemoveQuotaPerLevel)
			}
			if c.ObstacleRate <= 0.2 || c.ObstacleRate > c.Scaling.MaxObstacleRate {
				t.Errorf("hard obstacle rate = %g", c.ObstacleRate)
			}
		}},
		{"fixed stops growth", DifficultyFixed, func(t *testing.T, c RulesetConfig) {
			r := c.Rules()
			if r.LayerCount(9) != r.LayerCount(1) || r.CardsInLayer(9, 0) != r.CardsInLayer(1, 0) {
				t.Error("fixed preset should make every level the same size")
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultClassicConfig()
			ApplyPreset(&cfg, tc.preset)
			tc.check(t, cfg)
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset produced invalid rules: %v", err)
			}
		})
	}
}

func TestApplyPresetEasyKeepsRemoveDisabled(t *testing.T) {
	cfg := DefaultLegacyConfig()
	ApplyPreset(&cfg, DifficultyEasy)
	if cfg.RemoveQuotaPerLevel != 0 {
		t.Errorf("a ruleset without removal should not gain one, got %d", cfg.RemoveQuotaPerLevel)
	}
}
