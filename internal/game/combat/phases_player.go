package combat

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

type playerTurn struct{ phase }

// Enter waits for the player to pick their own combatant. Hovering previews
// tiles and other combatants' movement; confirming an enemy toggles its mark.
func (p *playerTurn) Enter() Step {
	c := p.c
	c.host.ShowCursor(true)
	c.host.Highlight(HighlightMarked, c.markedCells())

	p.on(Hover, func(sig Signal) Step {
		if tile := c.board.Tile(sig.At); tile != nil {
			c.host.ShowTileInfo(tile)
		}
		if cb := c.combatantAt(sig.At); cb != nil {
			c.host.Highlight(HighlightPreview, movement.Points(c.discoverer.DiscoverAround(sig.At, cb.MovementRange())))
		} else {
			c.host.ClearHighlights(HighlightPreview)
		}
		return Idle()
	})
	p.on(Confirm, func(sig Signal) Step {
		actor := c.turn.actor
		if sig.At == actor.Position() {
			return Goto(PlayerSelected)
		}
		if cb := c.combatantAt(sig.At); cb != nil && !cb.IsFriendlyTo(actor) {
			if c.marked.Has(cb) {
				c.marked.Remove(cb)
			} else {
				c.marked.Put(cb)
			}
			c.host.Highlight(HighlightMarked, c.markedCells())
		}
		return Idle()
	})
	return Idle()
}

func (p *playerTurn) Exit() {
	p.c.host.ClearHighlights(HighlightPreview)
	p.phase.Exit()
}

// IsMarked reports whether cb carries the persistent enemy highlight.
func (c *Controller) IsMarked(cb *unit.Combatant) bool { return c.marked.Has(cb) }

type playerSelected struct{ phase }

// Enter highlights every free, walkable tile in the actor's movement diamond
// and waits for a destination. Confirming the actor's own tile stays put.
// Escape is not handled.
func (p *playerSelected) Enter() Step {
	c := p.c
	actor := c.turn.actor
	origin := actor.Position()
	c.turn.origin, c.turn.originFacing = origin, actor.Facing

	reach := mapset.New[grid.Point]()
	c.discoverer.DiscoverAround(origin, actor.MovementRange()).Each(func(pt grid.Point) {
		if c.board.Walkable(pt.X, pt.Z) && !c.board.IsOccupied(pt) {
			reach.Put(pt)
		}
	})
	c.turn.moveRange = reach
	c.host.Highlight(HighlightMovement, movement.Points(reach))

	p.on(Confirm, func(sig Signal) Step {
		if sig.At != origin && !reach.Has(sig.At) {
			return Idle()
		}
		c.turn.dest = sig.At
		return Goto(PlayerMove)
	})
	return Idle()
}

type playerMove struct{ phase }

// Enter plans the route to the chosen tile and walks it.
func (p *playerMove) Enter() Step {
	c := p.c
	actor := c.turn.actor
	c.host.ClearHighlights(HighlightMovement)
	if !c.requireHead(actor) {
		return Goto(TurnOver)
	}
	path := append([]grid.Point(nil), c.pathfinder.FindPathBetween(actor.Position(), c.turn.dest)...)
	if len(path) < 2 {
		return Goto(MenuSelection)
	}
	return c.walk(actor, path, goTo(MenuSelection))
}

type menuSelection struct{ phase }

// Enter offers the actor's abilities, usable items, End Turn and Cancel.
func (p *menuSelection) Enter() Step {
	c := p.c
	actor := c.turn.actor
	c.host.ShowMenu(menuOptions(actor))

	p.on(Menu, func(sig Signal) Step {
		switch sig.Choice {
		case MenuAttack:
			if sig.Index < 0 || sig.Index >= len(actor.Abilities) {
				return Idle()
			}
			actor.Action = unit.NewAbilityAction(actor.Abilities[sig.Index])
			return Goto(PlayerTargetSelection)
		case MenuItem:
			items := actor.UsableItems()
			if sig.Index < 0 || sig.Index >= len(items) {
				return Idle()
			}
			actor.Action = unit.NewItemAction(items[sig.Index])
			return Goto(PlayerTargetSelection)
		case MenuEndTurn:
			actor.Action = nil
			return Goto(TurnOver)
		case MenuCancel:
			return p.undoMove()
		}
		return Idle()
	})
	p.on(Cancel, func(Signal) Step { return p.undoMove() })
	return Idle()
}

// undoMove walks the actor back to where the turn's move started.
func (p *menuSelection) undoMove() Step {
	c := p.c
	actor := c.turn.actor
	actor.Action = nil
	from, origin := actor.Position(), c.turn.origin
	if from == origin {
		return Goto(PlayerSelected)
	}
	if err := c.board.Move(actor, from, origin); err != nil {
		c.logger.Error("undo move failed", zap.String("combatant", actor.Name), zap.Error(err))
		return Idle()
	}
	c.host.PlayWalk(actor, unit.DirectionTo(from, origin))
	actor.Facing = c.turn.originFacing
	return Animate(c.cfg.StepDuration, goTo(PlayerSelected))
}

func (p *menuSelection) Exit() {
	p.c.host.HidePanels()
	p.phase.Exit()
}

func menuOptions(actor *unit.Combatant) []MenuOption {
	var out []MenuOption
	for i, ab := range actor.Abilities {
		out = append(out, MenuOption{Choice: MenuAttack, Index: i, Label: ab.Name, Enabled: true})
	}
	for i, it := range actor.UsableItems() {
		out = append(out, MenuOption{
			Choice:  MenuItem,
			Index:   i,
			Label:   fmt.Sprintf("%s x%d", it.Name, it.Quantity),
			Enabled: true,
		})
	}
	out = append(out,
		MenuOption{Choice: MenuEndTurn, Label: "End Turn", Enabled: true},
		MenuOption{Choice: MenuCancel, Label: "Cancel", Enabled: true},
	)
	return out
}

type playerTargetSelection struct{ phase }

// Enter highlights the action's range and tracks the footprint under the
// cursor. Confirming with at least one valid target moves to confirmation.
func (p *playerTargetSelection) Enter() Step {
	c := p.c
	actor := c.turn.actor
	a := actor.Action
	a.ClearTargets()

	inRange := movement.Copy(c.discoverer.DiscoverAround(actor.Position(), actor.RangeOf(a)))
	if a.Friendly() {
		inRange.Put(actor.Position())
	}
	c.turn.targetRange = inRange
	c.host.Highlight(HighlightTargeting, movement.Points(inRange))

	p.on(Hover, func(sig Signal) Step {
		c.aim(actor, a, sig.At)
		return Idle()
	})
	p.on(Confirm, func(sig Signal) Step {
		c.aim(actor, a, sig.At)
		if len(a.Targets) == 0 {
			return Idle()
		}
		return Goto(UnitActionConfirmation)
	})
	p.on(Escape, func(Signal) Step {
		a.ClearTargets()
		actor.Action = nil
		return Goto(MenuSelection)
	})
	return Idle()
}

func (p *playerTargetSelection) Exit() {
	c := p.c
	c.host.ClearHighlights(HighlightTargeting)
	c.host.ClearHighlights(HighlightFootprint)
	c.turn.targetRange = mapset.Set[grid.Point]{}
	p.phase.Exit()
}

// aim recomputes a's targets for the tile at. Tiles outside the targeting
// range clear the selection.
func (c *Controller) aim(actor *unit.Combatant, a *unit.Action, at grid.Point) {
	a.ClearTargets()
	c.host.ClearHighlights(HighlightFootprint)
	if !c.turn.targetRange.Has(at) {
		return
	}
	a.TargetTile = at
	foot := c.footprint(at, a.AOE())
	c.host.Highlight(HighlightFootprint, foot)
	a.Targets = c.targetsIn(actor, a, foot)
}

// footprint is the tile at plus every tile within aoe of it, centre first.
func (c *Controller) footprint(at grid.Point, aoe int) []grid.Point {
	out := []grid.Point{at}
	if aoe > 0 {
		out = append(out, movement.Points(c.discoverer.DiscoverAround(at, aoe))...)
	}
	return out
}

// targetsIn returns the living combatants on cells that a may affect: allies
// for friendly actions, enemies otherwise.
func (c *Controller) targetsIn(actor *unit.Combatant, a *unit.Action, cells []grid.Point) []*unit.Combatant {
	var out []*unit.Combatant
	for _, pt := range cells {
		cb := c.combatantAt(pt)
		if cb == nil || !cb.Alive() {
			continue
		}
		if a.Friendly() != cb.IsFriendlyTo(actor) {
			continue
		}
		out = append(out, cb)
	}
	return out
}

type unitActionConfirmation struct{ phase }

// Enter previews the action against its first target.
func (p *unitActionConfirmation) Enter() Step {
	c := p.c
	actor := c.turn.actor
	a := actor.Action
	c.host.ShowPreview(c.calc.Preview(actor, a.Targets[0], a, len(a.Targets)))

	back := func(Signal) Step {
		a.ClearTargets()
		return Goto(PlayerTargetSelection)
	}
	p.on(Confirm, func(Signal) Step { return Goto(PlayerPerformAction) })
	p.on(Cancel, back)
	p.on(Escape, back)
	return Idle()
}

func (p *unitActionConfirmation) Exit() {
	p.c.host.HidePanels()
	p.phase.Exit()
}
