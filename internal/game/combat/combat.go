// Package combat sequences a turn-based tactics encounter: whose turn it is,
// where they may move, what they target and how the outcome resolves.
//
// A Controller owns one fsm.Machine of phases. Each phase's Enter returns a
// Step describing what it waits on; the Controller is the only driver and
// resumes phases when time advances or an input Signal arrives.
package combat

// PhaseID names one state of the combat turn machine.
type PhaseID int

const (
	InitCombat PhaseID = iota
	DisplayMissionObjectives
	InitTurn
	PlayerTurn
	PlayerSelected
	PlayerMove
	MenuSelection
	PlayerTargetSelection
	UnitActionConfirmation
	PlayerPerformAction
	CPUTurn
	CPUPerformAction
	TurnOver
	DisplayPostCombatStats
	EndCombat
)

// Phases lists every phase in declaration order.
var Phases = []PhaseID{
	InitCombat,
	DisplayMissionObjectives,
	InitTurn,
	PlayerTurn,
	PlayerSelected,
	PlayerMove,
	MenuSelection,
	PlayerTargetSelection,
	UnitActionConfirmation,
	PlayerPerformAction,
	CPUTurn,
	CPUPerformAction,
	TurnOver,
	DisplayPostCombatStats,
	EndCombat,
}

// String returns the phase name.
func (p PhaseID) String() string {
	switch p {
	case InitCombat:
		return "init_combat"
	case DisplayMissionObjectives:
		return "display_mission_objectives"
	case InitTurn:
		return "init_turn"
	case PlayerTurn:
		return "player_turn"
	case PlayerSelected:
		return "player_selected"
	case PlayerMove:
		return "player_move"
	case MenuSelection:
		return "menu_selection"
	case PlayerTargetSelection:
		return "player_target_selection"
	case UnitActionConfirmation:
		return "unit_action_confirmation"
	case PlayerPerformAction:
		return "player_perform_action"
	case CPUTurn:
		return "cpu_turn"
	case CPUPerformAction:
		return "cpu_perform_action"
	case TurnOver:
		return "turn_over"
	case DisplayPostCombatStats:
		return "display_post_combat_stats"
	case EndCombat:
		return "end_combat"
	default:
		return "unknown"
	}
}
