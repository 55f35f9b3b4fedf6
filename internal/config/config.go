// Package config provides YAML ruleset loading and difficulty presets.
package config

import (
	"time"

	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
)

// RulesetConfig is the on-disk form of a ruleset.
type RulesetConfig struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`

	Slots                  int      `yaml:"slots"`
	BaseLayers             int      `yaml:"base_layers"`
	IncreaseLayersPerLevel int      `yaml:"increase_layers_per_level"`
	BaseCardsPerLayer      int      `yaml:"base_cards_per_layer"`
	ObstacleRate           float64  `yaml:"obstacle_rate"`
	CardTypes              []string `yaml:"card_types"`
	ObstacleTypes          []string `yaml:"obstacle_types"`
	MaxClicksPerCard       int      `yaml:"max_clicks_per_card"`
	RefreshQuotaPerLevel   int      `yaml:"refresh_quota_per_level"`
	RemoveQuotaPerLevel    int      `yaml:"remove_quota_per_level"`
	BalanceTypes           bool     `yaml:"balance_types"`

	Scaling  ScalingConfig  `yaml:"scaling"`
	Geometry GeometryConfig `yaml:"geometry"`
	Timing   TimingConfig   `yaml:"timing"`
	Messages MessagesConfig `yaml:"messages"`
}

// ScalingConfig controls how levels grow.
type ScalingConfig struct {
	CardsPerLayerStep    int     `yaml:"cards_per_layer_step"`
	CardsPerLevelStep    int     `yaml:"cards_per_level_step"`
	ObstacleRatePerLevel float64 `yaml:"obstacle_rate_per_level"`
	MaxObstacleRate      float64 `yaml:"max_obstacle_rate"`
	LayerShrink          float64 `yaml:"layer_shrink"`
}

// GeometryConfig holds card geometry in playable-area units.
type GeometryConfig struct {
	CardSize        float64 `yaml:"card_size"`
	CoverRatio      float64 `yaml:"cover_ratio"`
	RefreshSpacing  float64 `yaml:"refresh_spacing"`
	RefreshAttempts int     `yaml:"refresh_attempts"`
}

// TimingConfig holds presentation delays.
type TimingConfig struct {
	SettleMS int `yaml:"settle_ms"` // Delay between a match and lock recomputation
	HintMS   int `yaml:"hint_ms"`   // How long hinted cards stay highlighted
}

// MessagesConfig holds player-facing text.
type MessagesConfig struct {
	Encouragements []string `yaml:"encouragements"`
	NewRecord      []string `yaml:"new_record"`
	GlobalRecord   string   `yaml:"global_record"`
	Rules          []string `yaml:"rules"`
}

// Rules converts the ruleset to engine rules.
func (c RulesetConfig) Rules() engine.Rules {
	return engine.Rules{
		Slots:                  c.Slots,
		BaseLayers:             c.BaseLayers,
		IncreaseLayersPerLevel: c.IncreaseLayersPerLevel,
		BaseCardsPerLayer:      c.BaseCardsPerLayer,
		ObstacleRate:           c.ObstacleRate,
		CardTypes:              append([]string(nil), c.CardTypes...),
		ObstacleTypes:          append([]string(nil), c.ObstacleTypes...),
		MaxClicksPerCard:       c.MaxClicksPerCard,
		RefreshQuotaPerLevel:   c.RefreshQuotaPerLevel,
		RemoveQuotaPerLevel:    c.RemoveQuotaPerLevel,
		BalanceTypes:           c.BalanceTypes,

		CardsPerLayerStep:    c.Scaling.CardsPerLayerStep,
		CardsPerLevelStep:    c.Scaling.CardsPerLevelStep,
		ObstacleRatePerLevel: c.Scaling.ObstacleRatePerLevel,
		MaxObstacleRate:      c.Scaling.MaxObstacleRate,
		LayerShrink:          c.Scaling.LayerShrink,

		CardSize:        c.Geometry.CardSize,
		CoverRatio:      c.Geometry.CoverRatio,
		RefreshSpacing:  c.Geometry.RefreshSpacing,
		RefreshAttempts: c.Geometry.RefreshAttempts,

		SettleDelay: time.Duration(c.Timing.SettleMS) * time.Millisecond,
	}
}

// HintDuration returns how long a hint stays visible.
func (c RulesetConfig) HintDuration() time.Duration {
	return time.Duration(c.Timing.HintMS) * time.Millisecond
}

// Validate checks the ruleset through the engine's own rules check.
func (c RulesetConfig) Validate() error {
	return c.Rules().Validate()
}
