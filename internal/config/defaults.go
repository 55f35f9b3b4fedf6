package config

import (
	_ "embed"
	"sort"

	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
)

//go:embed defaults/classic.yaml
var defaultClassicYAML []byte

//go:embed defaults/legacy.yaml
var defaultLegacyYAML []byte

// Ruleset names shipped with the binary.
const (
	Classic = "classic"
	Legacy  = "legacy"
)

var embedded = map[string][]byte{
	Classic: defaultClassicYAML,
	Legacy:  defaultLegacyYAML,
}

// Names returns the built-in ruleset names, sorted.
func Names() []string {
	out := make([]string, 0, len(embedded))
	for name := range embedded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultClassicConfig returns the classic ruleset without touching the filesystem.
func DefaultClassicConfig() RulesetConfig {
	r := engine.DefaultRules()
	return RulesetConfig{
		Name:        Classic,
		Title:       "Triple Stack",
		Description: "Clear the stack three at a time.",

		Slots:                  r.Slots,
		BaseLayers:             r.BaseLayers,
		IncreaseLayersPerLevel: r.IncreaseLayersPerLevel,
		BaseCardsPerLayer:      r.BaseCardsPerLayer,
		ObstacleRate:           r.ObstacleRate,
		CardTypes:              r.CardTypes,
		ObstacleTypes:          r.ObstacleTypes,
		MaxClicksPerCard:       r.MaxClicksPerCard,
		RefreshQuotaPerLevel:   r.RefreshQuotaPerLevel,
		RemoveQuotaPerLevel:    r.RemoveQuotaPerLevel,
		BalanceTypes:           r.BalanceTypes,

		Scaling: ScalingConfig{
			CardsPerLayerStep:    r.CardsPerLayerStep,
			CardsPerLevelStep:    r.CardsPerLevelStep,
			ObstacleRatePerLevel: r.ObstacleRatePerLevel,
			MaxObstacleRate:      r.MaxObstacleRate,
			LayerShrink:          r.LayerShrink,
		},
		Geometry: GeometryConfig{
			CardSize:        r.CardSize,
			CoverRatio:      r.CoverRatio,
			RefreshSpacing:  r.RefreshSpacing,
			RefreshAttempts: r.RefreshAttempts,
		},
		Timing: TimingConfig{
			SettleMS: int(r.SettleDelay.Milliseconds()),
			HintMS:   3000,
		},
		Messages: MessagesConfig{
			Encouragements: []string{"Level cleared!"},
			NewRecord:      []string{"New personal best!"},
			GlobalRecord:   "New global record!",
		},
	}
}

// DefaultLegacyConfig returns the legacy ruleset without touching the filesystem.
func DefaultLegacyConfig() RulesetConfig {
	c := DefaultClassicConfig()
	c.Name = Legacy
	c.Title = "Triple Stack (legacy)"
	c.Description = "Two clicks per card, no remove, unbalanced levels."
	c.MaxClicksPerCard = 2
	c.RemoveQuotaPerLevel = 0
	c.BalanceTypes = false
	return c
}

func hardcoded(name string) RulesetConfig {
	if name == Legacy {
		return DefaultLegacyConfig()
	}
	return DefaultClassicConfig()
}
