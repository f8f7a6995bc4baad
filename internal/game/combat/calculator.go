package combat

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/tilemap"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

const (
	baseHitChance = 100
	minHitChance  = 5
	maxHitChance  = 100
	// splitFactor scales the per-target share of a magical area attack.
	splitFactor = 0.9
	critFactor  = 2
)

// Preview is the head-to-head forecast shown before an action is confirmed.
type Preview struct {
	Attacker   *unit.Combatant
	Defender   *unit.Combatant
	Action     string
	Damage     int
	Heal       int
	HitChance  int
	CritChance int
	CastTurns  int
}

// Calculator computes damage, hit and crit for actions on the current board.
type Calculator struct {
	board  *tilemap.Map
	roller *dice.Roller
}

// NewCalculator creates a Calculator reading tile modifiers from board.
//
// Precondition: board and roller must not be nil.
func NewCalculator(board *tilemap.Map, roller *dice.Roller) *Calculator {
	if board == nil || roller == nil {
		panic("combat.NewCalculator: board and roller must not be nil")
	}
	return &Calculator{board: board, roller: roller}
}

// Damage returns what a lands on tgt when it is one of n targets.
//
// Postcondition: returns 0 for items, >= 1 for abilities.
func (k *Calculator) Damage(src, tgt *unit.Combatant, a *unit.Action, n int) int {
	if a == nil || a.Kind != unit.UseAbility || a.Ability == nil {
		return 0
	}
	ab := a.Ability
	var dmg int
	switch ab.Kind {
	case unit.Magical:
		div := ab.LevelDivisor
		if div <= 0 {
			div = 1
		}
		raw := float64(src.Stats.Magic*src.Stats.Level) / float64(div)
		if n > 1 {
			raw /= float64(n) * splitFactor
		}
		dmg = int(math.Ceil(raw))
	default:
		mult := ab.Multiplier
		if mult == 0 {
			mult = 1
		}
		dmg = int(float64(src.Stats.Level*src.Stats.WeaponDamage)*mult) - k.tileDefense(tgt)
	}
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// Heal returns the hit points a restores.
func (k *Calculator) Heal(a *unit.Action) int {
	if a == nil || a.Kind != unit.UseItem || a.Item == nil {
		return 0
	}
	return a.Item.Heal
}

// HitChance is 100 + attacker accuracy + attacker tile accuracy − defender
// dodge − defender tile dodge, clamped to [5, 100].
func (k *Calculator) HitChance(src, tgt *unit.Combatant) int {
	chance := baseHitChance + src.Stats.Accuracy - tgt.Stats.Dodge
	if t := k.board.Tile(src.Position()); t != nil {
		chance += t.Accuracy
	}
	if t := k.board.Tile(tgt.Position()); t != nil {
		chance -= t.Dodge
	}
	return max(minHitChance, min(maxHitChance, chance))
}

// Preview forecasts a against tgt as one of n targets.
func (k *Calculator) Preview(src, tgt *unit.Combatant, a *unit.Action, n int) Preview {
	p := Preview{
		Attacker:  src,
		Defender:  tgt,
		Action:    a.Name(),
		Damage:    k.Damage(src, tgt, a, n),
		Heal:      k.Heal(a),
		CastTurns: a.CastTurns(),
	}
	if a.Kind == unit.UseAbility {
		p.HitChance = k.HitChance(src, tgt)
		p.CritChance = max(0, min(100, src.Stats.Crit))
	} else {
		p.HitChance = 100
	}
	return p
}

// Roll decides a against tgt. It does not change either combatant.
//
// Postcondition: a missed result has zero Damage; a crit doubles Damage.
func (k *Calculator) Roll(src, tgt *unit.Combatant, a *unit.Action, n int) unit.Result {
	r := unit.Result{Target: tgt, Heal: k.Heal(a)}
	if a.Kind == unit.UseItem {
		r.Hit = true
		return r
	}
	if !k.roller.Percent("hit", k.HitChance(src, tgt)).Success {
		return r
	}
	r.Hit = true
	r.Damage = k.Damage(src, tgt, a, n)
	if k.roller.Percent("crit", src.Stats.Crit).Success {
		r.Crit = true
		r.Damage *= critFactor
	}
	return r
}

func (k *Calculator) tileDefense(c *unit.Combatant) int {
	if t := k.board.Tile(c.Position()); t != nil {
		return t.Defense
	}
	return 0
}
