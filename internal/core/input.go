package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone      Action = iota
	ActionUp               // W, Up arrow - move cursor up
	ActionDown             // S, Down arrow - move cursor down
	ActionLeft             // A, Left arrow - move cursor left
	ActionRight            // D, Right arrow - move cursor right
	ActionConfirm          // Enter, Space - pick the card under the cursor
	ActionReturn           // 1-9 - send a held card back from a slot (see InputFrame.Slot)
	ActionHint             // H - highlight a matchable triple
	ActionRefresh          // F - shuffle the top layer
	ActionRemoveAll        // X - empty the holding slots
	ActionNext             // N - continue to the next level after a win
	ActionBack             // B, Escape - go back to menu
	ActionRestart          // R key - restart from level 1
	ActionQuit             // Q, Ctrl+C - exit game/session
	ActionPause            // P - pause/unpause game
)

var actionNames = map[Action]string{
	ActionNone:      "None",
	ActionUp:        "Up",
	ActionDown:      "Down",
	ActionLeft:      "Left",
	ActionRight:     "Right",
	ActionConfirm:   "Confirm",
	ActionReturn:    "Return",
	ActionHint:      "Hint",
	ActionRefresh:   "Refresh",
	ActionRemoveAll: "RemoveAll",
	ActionNext:      "Next",
	ActionBack:      "Back",
	ActionRestart:   "Restart",
	ActionQuit:      "Quit",
	ActionPause:     "Pause",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// InputFrame holds the actions triggered during one simulation tick.
type InputFrame struct {
	Actions map[Action]bool

	// Slot is the 0-based holding slot addressed by ActionReturn.
	Slot int
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// SetReturn marks ActionReturn for the given 0-based slot.
func (f *InputFrame) SetReturn(slot int) {
	f.Set(ActionReturn)
	f.Slot = slot
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Slot = 0
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	clone.Slot = f.Slot
	return clone
}
