package engine

// EventKind identifies what changed in the engine.
type EventKind uint8

const (
	EventCardsAdded       EventKind = iota // A new stack was generated
	EventCardHeld                          // A card moved into the buffer
	EventCardsMatched                      // Three cards were eliminated
	EventCardsReturned                     // Cards left the buffer without matching
	EventPositionsChanged                  // Refresh moved top-layer cards
	EventHighlight                         // Hint found a triple
	EventLocksUpdated                      // The lock resolver ran
	EventBufferChanged                     // Buffer contents changed
	EventStatusChanged                     // The level was won or lost
)

var eventNames = [...]string{
	EventCardsAdded:       "cards_added",
	EventCardHeld:         "card_held",
	EventCardsMatched:     "cards_matched",
	EventCardsReturned:    "cards_returned",
	EventPositionsChanged: "positions_changed",
	EventHighlight:        "highlight",
	EventLocksUpdated:     "locks_updated",
	EventBufferChanged:    "buffer_changed",
	EventStatusChanged:    "status_changed",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event describes one state change. Refs lists the cards involved, if any.
type Event struct {
	Kind   EventKind
	Refs   []Ref
	Status Status
}

// Renderer receives engine events. Implementations must not call back into
// the engine from Notify.
type Renderer interface {
	Notify(ev Event)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ev Event)

// Notify implements Renderer.
func (f RendererFunc) Notify(ev Event) { f(ev) }

// NopRenderer discards all events.
type NopRenderer struct{}

// Notify implements Renderer.
func (NopRenderer) Notify(Event) {}
