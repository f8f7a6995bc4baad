package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// HighlightKind groups highlighted tiles so each group can be cleared alone.
type HighlightKind int

const (
	HighlightMovement HighlightKind = iota
	HighlightTargeting
	HighlightFootprint
	HighlightPreview
	// HighlightMarked is the persistent enemy toggle of PlayerTurn.
	HighlightMarked
)

// MenuOption is one entry shown by MenuSelection.
type MenuOption struct {
	Choice  MenuChoice
	Index   int
	Label   string
	Enabled bool
}

// Host is the presentation side of an encounter: rendering, audio and screens.
// Every call is fire-and-forget; the Controller never waits on a Host.
type Host interface {
	FadeIn(d time.Duration)
	PanCamera(to grid.Point)
	ShowCursor(visible bool)
	Highlight(kind HighlightKind, cells []grid.Point)
	ClearHighlights(kind HighlightKind)
	PlayWalk(c *unit.Combatant, facing unit.Direction)
	PlayAttack(c *unit.Combatant, facing unit.Direction)
	ShowVFX(name string, at grid.Point)
	PlaySound(name string)
	ShowObjectives(lines []string)
	ShowTileInfo(tile *tilemap.TerrainTile)
	ShowMenu(options []MenuOption)
	ShowPreview(p Preview)
	ShowStats(s Stats)
	HidePanels()
	Popup(at grid.Point, text string)
	ReturnToOverworld(s Stats)
}

// NopHost ignores every call. Embed it to implement only part of Host.
type NopHost struct{}

func (NopHost) FadeIn(time.Duration) {}
func (NopHost) PanCamera(grid.Point) {}
func (NopHost) ShowCursor(bool) {}
func (NopHost) Highlight(HighlightKind, []grid.Point) {}
func (NopHost) ClearHighlights(HighlightKind) {}
func (NopHost) PlayWalk(*unit.Combatant, unit.Direction) {}
func (NopHost) PlayAttack(*unit.Combatant, unit.Direction) {}
func (NopHost) ShowVFX(string, grid.Point) {}
func (NopHost) PlaySound(string) {}
func (NopHost) ShowObjectives([]string) {}
func (NopHost) ShowTileInfo(*tilemap.TerrainTile) {}
func (NopHost) ShowMenu([]MenuOption) {}
func (NopHost) ShowPreview(Preview) {}
func (NopHost) ShowStats(Stats) {}
func (NopHost) HidePanels() {}
func (NopHost) Popup(grid.Point, string) {}
func (NopHost) ReturnToOverworld(Stats) {}

// LogHost renders an encounter as log lines. The headless binary uses it.
type LogHost struct {
	NopHost
	logger *zap.Logger
}

// NewLogHost creates a LogHost writing to logger.
//
// Precondition: logger must not be nil.
func NewLogHost(logger *zap.Logger) *LogHost {
	if logger == nil {
		panic("combat.NewLogHost: logger must not be nil")
	}
	return &LogHost{logger: logger.Named("host")}
}

func (h *LogHost) PanCamera(to grid.Point) {
	h.logger.Debug("camera", zap.Stringer("to", to))
}

func (h *LogHost) PlayWalk(c *unit.Combatant, facing unit.Direction) {
	h.logger.Debug("walk",
		zap.String("combatant", c.Name),
		zap.Stringer("to", c.Position()),
		zap.Stringer("facing", facing),
	)
}

func (h *LogHost) PlayAttack(c *unit.Combatant, facing unit.Direction) {
	h.logger.Info("attack", zap.String("combatant", c.Name), zap.Stringer("facing", facing))
}

func (h *LogHost) ShowObjectives(lines []string) {
	h.logger.Info("objectives", zap.Strings("lines", lines))
}

func (h *LogHost) ShowPreview(p Preview) {
	h.logger.Info("preview",
		zap.String("attacker", p.Attacker.Name),
		zap.String("defender", p.Defender.Name),
		zap.String("action", p.Action),
		zap.Int("damage", p.Damage),
		zap.Int("heal", p.Heal),
		zap.Int("hit", p.HitChance),
		zap.Int("crit", p.CritChance),
		zap.Int("cast_turns", p.CastTurns),
	)
}

func (h *LogHost) Popup(at grid.Point, text string) {
	h.logger.Info("popup", zap.Stringer("at", at), zap.String("text", text))
}

func (h *LogHost) ShowStats(s Stats) {
	h.logger.Info("post-combat stats",
		zap.Stringer("outcome", s.Outcome),
		zap.Int("turns", s.Turns),
		zap.Int("player_kills", s.PlayerKills),
		zap.Int("cpu_kills", s.CPUKills),
		zap.Strings("casualties", s.Casualties),
	)
}

func (h *LogHost) ReturnToOverworld(s Stats) {
	h.logger.Info("returning to overworld", zap.Stringer("outcome", s.Outcome))
}
