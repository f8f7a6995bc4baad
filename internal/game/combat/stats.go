package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Outcome is how an encounter ended.
type Outcome int

const (
	Undecided Outcome = iota
	// Victory: no CPU combatant is left standing.
	Victory
	// Defeat: no player combatant is left standing.
	Defeat
	// Stalemate: the turn limit ran out first.
	Stalemate
)

func (o Outcome) String() string {
	switch o {
	case Undecided:
		return "undecided"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Stalemate:
		return "stalemate"
	default:
		return "unknown"
	}
}

// Stats accumulate over an encounter and are shown by DisplayPostCombatStats.
type Stats struct {
	Turns       int
	PlayerKills int
	CPUKills    int
	// Experience is keyed by combatant ID.
	Experience map[uuid.UUID]int
	Casualties []string
	Outcome    Outcome
}

func newStats() Stats {
	return Stats{Experience: make(map[uuid.UUID]int)}
}

func (s *Stats) recordKill(killer, victim *unit.Combatant) {
	s.Casualties = append(s.Casualties, victim.Name)
	if killer == nil || killer == victim {
		return
	}
	if killer.IsPlayerControlled() {
		s.PlayerKills++
	} else {
		s.CPUKills++
	}
}

func (s *Stats) award(c *unit.Combatant, xp int) {
	s.Experience[c.ID] += xp
}

// clone returns a copy the host may keep.
func (s Stats) clone() Stats {
	out := s
	out.Experience = make(map[uuid.UUID]int, len(s.Experience))
	for k, v := range s.Experience {
		out.Experience[k] = v
	}
	out.Casualties = append([]string(nil), s.Casualties...)
	return out
}
