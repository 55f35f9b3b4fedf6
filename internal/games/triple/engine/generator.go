package engine

import (
	"math"
	"math/rand"
)

// Generator builds the layered stack for a level.
// It is deterministic for a given rules set and random source.
type Generator struct {
	rules Rules
	rng   *rand.Rand
	cover CoverFunc
}

// NewGenerator creates a generator. cover is only consulted by the balance
// pass; nil selects the distance test configured by the rules.
func NewGenerator(rules Rules, rng *rand.Rand, cover CoverFunc) *Generator {
	if cover == nil {
		cover = DistanceCover(rules.CardSize, rules.CoverRatio)
	}
	return &Generator{rules: rules, rng: rng, cover: cover}
}

// Generate builds the stack for level on an area of areaW x areaH units.
//
// Layer i gets a placement box shrunk toward the area center, more cards than
// the layer below, and its own shuffled selection of symbols handed out in runs
// of three. Obstacles replace symbol cards at random on every layer but the top
// one and do not advance the symbol runs.
func (g *Generator) Generate(level int, areaW, areaH float64) Stack {
	if level < 1 {
		level = 1
	}
	layerCount := g.rules.LayerCount(level)
	rate := g.rules.ObstacleRateFor(level)
	size := g.rules.CardSize

	stack := Stack{Layers: make([]Layer, 0, layerCount)}
	for i := 0; i < layerCount; i++ {
		ratio := 1 - float64(i)/float64(layerCount)*g.rules.LayerShrink
		layerW, layerH := areaW*ratio, areaH*ratio
		startX, startY := (areaW-layerW)/2, (areaH-layerH)/2
		top := i == layerCount-1

		n := g.rules.CardsInLayer(level, i)
		types := g.pickTypes((n + 2) / 3)
		typeIndex, run := 0, 0

		layer := Layer{Index: i, Cards: make([]Card, 0, n)}
		for j := 0; j < n; j++ {
			c := Card{
				ID:        cardID(i, j),
				Layer:     i,
				Index:     j,
				MaxClicks: g.rules.MaxClicksPerCard,
				Locked:    !top,
			}
			c.X = place(startX, layerW, areaW, size, g.rng.Float64())
			c.Y = place(startY, layerH, areaH, size, g.rng.Float64())

			if !top && g.rng.Float64() < rate {
				c.Obstacle = true
				c.Type = g.rules.ObstacleTypes[g.rng.Intn(len(g.rules.ObstacleTypes))]
			} else {
				c.Type = types[typeIndex]
				run++
				if run == 3 {
					run = 0
					typeIndex = (typeIndex + 1) % len(types)
				}
			}
			layer.Cards = append(layer.Cards, c)
		}
		stack.Layers = append(stack.Layers, layer)
	}

	if g.rules.BalanceTypes {
		g.balance(&stack)
	}
	return stack
}

// pickTypes returns up to k distinct symbols in random order.
func (g *Generator) pickTypes(k int) []string {
	palette := g.rules.CardTypes
	perm := g.rng.Perm(len(palette))
	if k > len(perm) {
		k = len(perm)
	}
	if k < 1 {
		k = 1
	}
	out := make([]string, k)
	for i := range out {
		out[i] = palette[perm[i]]
	}
	return out
}

// place picks a coordinate inside a placement box of the given span that
// starts at start, keeping the whole card inside the area.
func place(start, span, area, size, u float64) float64 {
	v := start
	if span > size {
		v += math.Floor(u * (span - size))
	}
	return math.Max(0, math.Min(v, math.Max(area-size, 0)))
}

// balance makes the stack clearable in principle: cards buried under an
// obstacle become obstacles, the clearable total becomes a multiple of three
// and leftover symbols are regrouped into triples.
func (g *Generator) balance(s *Stack) {
	for {
		g.bury(s)
		if g.trimRemainder(s) == 0 {
			break
		}
	}
	g.regroup(s)
}

// bury turns every clearable card covered by an obstacle into an obstacle,
// walking down from the top so burials cascade.
func (g *Generator) bury(s *Stack) {
	if len(g.rules.ObstacleTypes) == 0 {
		return
	}
	for li := s.Top() - 1; li >= 0; li-- {
		cards := s.Layers[li].Cards
		for ci := range cards {
			c := &cards[ci]
			if c.Obstacle || !g.buriedByObstacle(s, c) {
				continue
			}
			g.makeObstacle(c)
		}
	}
}

func (g *Generator) buriedByObstacle(s *Stack, c *Card) bool {
	for ui := c.Layer + 1; ui < len(s.Layers); ui++ {
		upper := s.Layers[ui].Cards
		for k := range upper {
			if upper[k].Obstacle && g.cover(&upper[k], c) {
				return true
			}
		}
	}
	return false
}

func (g *Generator) makeObstacle(c *Card) {
	c.Obstacle = true
	c.Type = g.rules.ObstacleTypes[c.Index%len(g.rules.ObstacleTypes)]
}

// trimRemainder drops the clearable count to a multiple of three. It converts
// the lowest cards of non-top layers into obstacles, and falls back to
// removing cards from the end of the top layer. It returns how many cards
// above layer 0 became obstacles, since those may bury further cards.
func (g *Generator) trimRemainder(s *Stack) int {
	extra := s.Clearable() % 3
	if extra == 0 {
		return 0
	}

	raised := 0
	if len(g.rules.ObstacleTypes) > 0 {
		for li := 0; li < s.Top() && extra > 0; li++ {
			cards := s.Layers[li].Cards
			for ci := range cards {
				if extra == 0 {
					break
				}
				if cards[ci].Obstacle {
					continue
				}
				g.makeObstacle(&cards[ci])
				extra--
				if li > 0 {
					raised++
				}
			}
		}
	}

	if extra > 0 && s.Top() >= 0 {
		top := &s.Layers[s.Top()]
		top.Cards = top.Cards[:max(len(top.Cards)-extra, 0)]
	}
	return raised
}

// regroup retypes leftover symbols so every symbol count is a multiple of
// three. Leftovers are taken from the lowest layers first and regrouped in
// order, each group of three taking the symbol of its first card.
func (g *Generator) regroup(s *Stack) {
	var order []string
	counts := make(map[string]int)
	s.Each(func(c *Card) {
		if c.Obstacle {
			return
		}
		if counts[c.Type] == 0 {
			order = append(order, c.Type)
		}
		counts[c.Type]++
	})

	need := make(map[string]int, len(order))
	for _, t := range order {
		need[t] = counts[t] % 3
	}

	var leftovers []*Card
	s.Each(func(c *Card) {
		if c.Obstacle || need[c.Type] == 0 {
			return
		}
		need[c.Type]--
		leftovers = append(leftovers, c)
	})

	for i := 0; i+2 < len(leftovers); i += 3 {
		t := leftovers[i].Type
		leftovers[i+1].Type = t
		leftovers[i+2].Type = t
	}
}
