package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// SignalKind is the topic an input signal is dispatched on.
type SignalKind int

const (
	Confirm SignalKind = iota
	Cancel
	Escape
	Hover
	Menu
)

func (k SignalKind) String() string {
	switch k {
	case Confirm:
		return "confirm"
	case Cancel:
		return "cancel"
	case Escape:
		return "escape"
	case Hover:
		return "hover"
	case Menu:
		return "menu"
	default:
		return "unknown"
	}
}

// MenuChoice is an entry of the action menu.
type MenuChoice int

const (
	MenuAttack MenuChoice = iota
	MenuItem
	MenuEndTurn
	MenuCancel
)

func (m MenuChoice) String() string {
	switch m {
	case MenuAttack:
		return "attack"
	case MenuItem:
		return "item"
	case MenuEndTurn:
		return "end_turn"
	case MenuCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Signal is one abstract input. Where it came from (mouse, keyboard, a
// script) does not matter to the phases.
type Signal struct {
	Kind SignalKind
	// At is the board tile for Confirm and Hover.
	At grid.Point
	// Choice and Index select a menu entry; Index picks the ability or item.
	Choice MenuChoice
	Index  int
}

// ConfirmAt confirms the tile at p.
func ConfirmAt(p grid.Point) Signal { return Signal{Kind: Confirm, At: p} }

// HoverAt moves the cursor to p.
func HoverAt(p grid.Point) Signal { return Signal{Kind: Hover, At: p} }

// CancelSignal backs out of the current choice.
func CancelSignal() Signal { return Signal{Kind: Cancel} }

// EscapeSignal leaves the current targeting mode.
func EscapeSignal() Signal { return Signal{Kind: Escape} }

// MenuPick selects a menu entry.
func MenuPick(choice MenuChoice, index int) Signal {
	return Signal{Kind: Menu, Choice: choice, Index: index}
}

func (s Signal) String() string {
	switch s.Kind {
	case Confirm, Hover:
		return fmt.Sprintf("%s@%s", s.Kind, s.At)
	case Menu:
		return fmt.Sprintf("menu:%s[%d]", s.Choice, s.Index)
	default:
		return s.Kind.String()
	}
}
