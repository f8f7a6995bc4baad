package unit

const (
	baseExperience       = 10
	consumableExperience = 5
	killingBlowFactor    = 2
)

// CombatExperience computes and credits the experience source earns for acting on target.
//
// Postcondition: returns (10 + target.Level - source.Level), doubled when target is dead;
// source.Stats.Experience grows by the same amount.
func CombatExperience(source, target *Combatant) int {
	xp := baseExperience + (target.Stats.Level - source.Stats.Level)
	if target.Stats.HP <= 0 {
		xp *= killingBlowFactor
	}
	source.Stats.Experience += xp
	return xp
}

// ConsumableExperience credits source for using an item.
func ConsumableExperience(source *Combatant) int {
	source.Stats.Experience += consumableExperience
	return consumableExperience
}
