package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/triplestack/internal/core"
)

type stubGame struct {
	id, title, desc string
}

func (g *stubGame) ID() string { return g.id }
func (g *stubGame) Title() string { return g.title }
func (g *stubGame) Reset(core.RuntimeConfig) {}
func (g *stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen) {}
func (g *stubGame) State() core.GameState { return core.GameState{} }

type describedGame struct{ stubGame }

func (g *describedGame) Description() string { return g.desc }

func TestRegisterAndCreate(t *testing.T) {
	Register("zz_stub", func() Game { return &stubGame{id: "zz_stub", title: "Stub"} })
	Register("zz_described", func() Game {
		return &describedGame{stubGame{id: "zz_described", title: "Described", desc: "has words"}}
	})

	if !Exists("zz_stub") {
		t.Fatal("registered game should exist")
	}

	g, err := Create("zz_stub")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Title() != "Stub" {
		t.Errorf("Title = %q", g.Title())
	}

	var found bool
	for _, info := range List() {
		if info.ID == "zz_described" {
			found = true
			if info.Description != "has words" {
				t.Errorf("Description = %q", info.Description)
			}
		}
		if info.ID == "zz_stub" && info.Description != "" {
			t.Errorf("stub should have no description, got %q", info.Description)
		}
	}
	if !found {
		t.Error("List should include zz_described")
	}
}

func TestListSorted(t *testing.T) {
	Register("zz_b", func() Game { return &stubGame{id: "zz_b"} })
	Register("zz_a", func() Game { return &stubGame{id: "zz_a"} })

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Fatalf("List not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("no_such_game"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("err = %v, expected ErrUnknownGame", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("zz_dup", func() Game { return &stubGame{id: "zz_dup"} })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("zz_dup", func() Game { return &stubGame{id: "zz_dup"} })
}
