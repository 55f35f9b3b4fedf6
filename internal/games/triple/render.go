package triple

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
)

const (
	hudRows      = 2  // Title and counters
	footerRows   = 6  // Slot boxes, slot numbers, feedback, key help
	maxBoardCols = 72 // Wider terminals get a centered board
)

// boardArea maps the terminal board to engine area units. One column is
// colUnit units wide and one row rowUnit units tall, so a card of CardSize
// units covers exactly one cardW x cardH box.
type boardArea struct {
	cols, rows       int
	colUnit, rowUnit float64
}

// AreaSize implements engine.AreaMetrics.
func (a *boardArea) AreaSize() (float64, float64) {
	return float64(a.cols) * a.colUnit, float64(a.rows) * a.rowUnit
}

// cell converts an area position to a board offset in columns and rows.
func (a *boardArea) cell(x, y float64) (int, int) {
	return int(math.Round(x / a.colUnit)), int(math.Round(y / a.rowUnit))
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.eng == nil {
		return
	}
	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	boardX := (g.screenW - g.area.cols) / 2
	boardY := hudRows

	g.renderHUD(dst)
	g.renderBoard(dst, boardX, boardY)
	g.renderSlots(dst)
	g.renderFooter(dst)
	g.renderOverlays(dst)
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// renderHUD draws the title and the level counters.
func (g *Game) renderHUD(dst *core.Screen) {
	view := g.eng.View()

	dst.DrawTextCenteredColor(0, fmt.Sprintf("%s  Level %d", g.Title(), view.Level), core.ColorBrightWhite)

	hud := fmt.Sprintf("Cleared %d/%d   Refresh %d   Remove %d   Best %d",
		view.Cleared(), view.Total, view.RefreshLeft, view.RemoveLeft, g.bestCleared)
	dst.DrawTextCenteredColor(1, hud, core.ColorGray)
}

// renderBoard draws the stack bottom layer first, so upper cards overwrite
// the cards they cover.
func (g *Game) renderBoard(dst *core.Screen, boardX, boardY int) {
	view := g.eng.View()
	top := view.Stack.Top()

	view.Stack.Each(func(c *engine.Card) {
		if c.Status != engine.Hidden {
			return
		}
		cx, cy := g.area.cell(c.X, c.Y)
		r := core.NewRect(boardX+cx, boardY+cy, cardW, cardH)

		color := g.typeColor(c.Type)
		switch {
		case c.Obstacle:
			color = core.ColorGray
		case c.Locked:
			color = core.ColorDarkGray
		case c.Layer < top && !c.Selectable():
			color = core.ColorGray
		}
		border := color
		if g.highlight[c.Ref()] {
			border = core.ColorBrightWhite
		}
		if g.hasCursor && c.Ref() == g.cursor {
			border = core.ColorBrightYellow
		}

		g.drawCard(dst, r, c.Type, color, border)
		if c.MaxClicks > 1 && !c.Obstacle {
			// Remaining picks in the lower right corner
			dst.SetCell(r.Right()-2, r.Bottom()-1, rune('0'+min(c.MaxClicks-c.ClickCount, 9)), border)
		}
	})

	for _, c := range g.flash {
		cx, cy := g.area.cell(c.X, c.Y)
		r := core.NewRect(boardX+cx, boardY+cy, cardW, cardH)
		g.drawCard(dst, r, "*", core.ColorBrightWhite, core.ColorBrightWhite)
	}

	if g.hasCursor {
		// Marker under the cursor card, visible even when the box is crowded
		if c := view.Stack.Card(g.cursor); c != nil {
			cx, cy := g.area.cell(c.X, c.Y)
			dst.SetCell(boardX+cx+cardW/2, boardY+cy+cardH, '^', core.ColorBrightYellow)
		}
	}
}

func (g *Game) drawCard(dst *core.Screen, r core.Rect, symbol string, fill, border core.Color) {
	dst.FillRect(r, ' ', core.ColorDefault)
	dst.DrawBoxColor(r, border)
	dst.DrawTextColor(r.X+(r.W-len([]rune(symbol)))/2, r.Y+r.H/2, symbol, fill)
}

// typeColor gives each symbol a stable color from its position in the palette.
func (g *Game) typeColor(t string) core.Color {
	for i, ct := range g.cfg.CardTypes {
		if ct == t {
			return core.PaletteColor(i)
		}
	}
	return core.ColorDefault
}

// renderSlots draws the holding buffer as numbered boxes.
func (g *Game) renderSlots(dst *core.Screen) {
	view := g.eng.View()
	held := view.Held()
	capacity := view.Buffer.Cap()

	width := capacity*(cardW+1) - 1
	x0 := (g.screenW - width) / 2
	y := g.screenH - footerRows

	for i := range capacity {
		r := core.NewRect(x0+i*(cardW+1), y, cardW, cardH)
		if i < len(held) {
			color := g.typeColor(held[i].Type)
			g.drawCard(dst, r, held[i].Type, color, color)
		} else {
			dst.DrawBoxColor(r, core.ColorDarkGray)
		}
		dst.DrawTextColor(r.X+cardW/2, r.Bottom(), strconv.Itoa(i+1), core.ColorGray)
	}
}

func (g *Game) renderFooter(dst *core.Screen) {
	if g.feedback != "" {
		dst.DrawTextCenteredColor(g.screenH-2, g.feedback, core.ColorBrightYellow)
	}
	help := fmt.Sprintf("arrows move  enter pick  %s return  h hint  f refresh  x remove  p pause  b menu",
		slotRange(g.eng.View().Buffer.Cap()))
	if len([]rune(help)) > g.screenW {
		help = "enter pick  h hint  f refresh  x remove"
	}
	dst.DrawTextCenteredColor(g.screenH-1, help, core.ColorDarkGray)
}

// slotRange names the digit keys that return a held card.
func slotRange(capacity int) string {
	capacity = min(capacity, 9)
	if capacity <= 1 {
		return "1"
	}
	return fmt.Sprintf("1-%d", capacity)
}

// renderOverlays draws the pause, win and loss panels over the board.
func (g *Game) renderOverlays(dst *core.Screen) {
	var lines []string
	var color core.Color

	switch {
	case g.paused:
		lines = []string{"PAUSED", "", "p to resume"}
		color = core.ColorBrightYellow
	case g.eng.Status() == engine.Won:
		lines = []string{fmt.Sprintf("LEVEL %d CLEARED", g.eng.View().Level), "", g.message}
		if g.recordErr != nil {
			lines = append(lines, "(records unavailable)")
		}
		lines = append(lines, "", "n next level   r restart   b menu")
		color = core.ColorBrightGreen
	case g.eng.Status() == engine.Lost:
		lines = []string{"GAME OVER", "", g.message, fmt.Sprintf("Reached level %d", g.eng.View().Level), "", "r restart   b menu"}
		color = core.ColorBrightRed
	case g.stuck:
		lines = []string{"NO MOVES LEFT", "", "Every card left has used its picks",
			fmt.Sprintf("Reached level %d", g.eng.View().Level), "", "r restart   b menu"}
		color = core.ColorBrightRed
	default:
		return
	}

	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	box := core.NewRect((g.screenW-width-4)/2, (g.screenH-len(lines)-2)/2, width+4, len(lines)+2)
	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBoxColor(box, color)
	for i, l := range lines {
		dst.DrawTextCenteredColor(box.Y+1+i, l, color)
	}
}
