// Package engine implements the layered tile-matching rules: stack generation,
// the geometric cover relation and lock resolution, the bounded holding buffer
// with three-of-a-kind elimination, the power-ups and win/loss detection.
//
// The package has no I/O and no rendering. Presentation layers observe it
// through Renderer events and drive it through the GameState methods.
package engine

import (
	"errors"
	"fmt"
	"time"
)

// Rules is the complete tuning surface of a ruleset.
type Rules struct {
	Slots                  int      // Holding buffer capacity (K)
	BaseLayers             int      // Layers on level 1
	IncreaseLayersPerLevel int      // Extra layers per level
	BaseCardsPerLayer      int      // Cards on the bottom layer of level 1
	ObstacleRate           float64  // Obstacle probability on level 1
	CardTypes              []string // Symbol palette
	ObstacleTypes          []string // Obstacle markers
	MaxClicksPerCard       int
	RefreshQuotaPerLevel   int
	RemoveQuotaPerLevel    int

	// BalanceTypes post-processes generated stacks so every symbol count is a
	// multiple of three and no clearable card sits under an obstacle.
	BalanceTypes bool

	CardsPerLayerStep    int     // Extra cards per layer index
	CardsPerLevelStep    int     // Extra cards per level
	ObstacleRatePerLevel float64 // Obstacle rate growth per level
	MaxObstacleRate      float64
	LayerShrink          float64 // Placement box shrink at the top layer

	CardSize        float64 // Card edge length in area units
	CoverRatio      float64 // Cover threshold as a fraction of half the card size
	RefreshSpacing  float64 // Extra distance between refreshed cards
	RefreshAttempts int

	SettleDelay time.Duration // Delay between elimination and lock recomputation
}

// DefaultRules returns the classic ruleset.
func DefaultRules() Rules {
	return Rules{
		Slots:                  7,
		BaseLayers:             3,
		IncreaseLayersPerLevel: 1,
		BaseCardsPerLayer:      12,
		ObstacleRate:           0.2,
		CardTypes: []string{
			"A", "B", "C", "D", "E", "F", "G", "H", "I",
			"J", "K", "L", "M", "N", "O", "P", "Q", "R",
		},
		ObstacleTypes:        []string{"#", "%", "&"},
		MaxClicksPerCard:     1,
		RefreshQuotaPerLevel: 2,
		RemoveQuotaPerLevel:  2,
		BalanceTypes:         true,

		CardsPerLayerStep:    4,
		CardsPerLevelStep:    2,
		ObstacleRatePerLevel: 0.03,
		MaxObstacleRate:      0.4,
		LayerShrink:          0.5,

		CardSize:        65,
		CoverRatio:      0.8,
		RefreshSpacing:  10,
		RefreshAttempts: 50,

		SettleDelay: 400 * time.Millisecond,
	}
}

// ErrInvalidRules is wrapped by Validate failures.
var ErrInvalidRules = errors.New("engine: invalid rules")

// Validate checks that the rules can produce a playable stack.
func (r Rules) Validate() error {
	switch {
	case r.Slots < 3:
		return fmt.Errorf("%w: slots must be at least 3, got %d", ErrInvalidRules, r.Slots)
	case r.BaseLayers < 1:
		return fmt.Errorf("%w: base_layers must be at least 1, got %d", ErrInvalidRules, r.BaseLayers)
	case r.IncreaseLayersPerLevel < 0:
		return fmt.Errorf("%w: increase_layers_per_level must not be negative", ErrInvalidRules)
	case r.BaseCardsPerLayer < 3:
		return fmt.Errorf("%w: base_cards_per_layer must be at least 3, got %d", ErrInvalidRules, r.BaseCardsPerLayer)
	case len(r.CardTypes) == 0:
		return fmt.Errorf("%w: card_types is empty", ErrInvalidRules)
	case r.ObstacleRate > 0 && len(r.ObstacleTypes) == 0:
		return fmt.Errorf("%w: obstacle_rate set without obstacle_types", ErrInvalidRules)
	case r.ObstacleRate < 0 || r.ObstacleRate >= 1:
		return fmt.Errorf("%w: obstacle_rate must be in [0, 1), got %g", ErrInvalidRules, r.ObstacleRate)
	case r.MaxClicksPerCard < 1:
		return fmt.Errorf("%w: max_clicks_per_card must be at least 1", ErrInvalidRules)
	case r.RefreshQuotaPerLevel < 0 || r.RemoveQuotaPerLevel < 0:
		return fmt.Errorf("%w: quotas must not be negative", ErrInvalidRules)
	case r.CardSize <= 0:
		return fmt.Errorf("%w: card_size must be positive", ErrInvalidRules)
	case r.CoverRatio <= 0:
		return fmt.Errorf("%w: cover_ratio must be positive", ErrInvalidRules)
	case r.LayerShrink < 0 || r.LayerShrink >= 1:
		return fmt.Errorf("%w: layer_shrink must be in [0, 1)", ErrInvalidRules)
	case r.RefreshAttempts < 1:
		return fmt.Errorf("%w: refresh_attempts must be at least 1", ErrInvalidRules)
	}
	return nil
}

// LayerCount returns the number of layers generated for a level.
func (r Rules) LayerCount(level int) int {
	return r.BaseLayers + (level-1)*r.IncreaseLayersPerLevel
}

// CardsInLayer returns how many cards layer i of a level holds before balancing.
func (r Rules) CardsInLayer(level, i int) int {
	return r.BaseCardsPerLayer + i*r.CardsPerLayerStep + (level-1)*r.CardsPerLevelStep
}

// ObstacleRateFor returns the capped obstacle probability for a level.
func (r Rules) ObstacleRateFor(level int) float64 {
	rate := r.ObstacleRate + float64(level-1)*r.ObstacleRatePerLevel
	if rate > r.MaxObstacleRate {
		return r.MaxObstacleRate
	}
	return rate
}
