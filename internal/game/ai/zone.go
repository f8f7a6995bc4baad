package ai

// ZoneName is the registry name of Zone.
const ZoneName = "zone"

// Zone holds position until the nearest enemy enters its threat zone
// (movement + weapon range), then closes in.
type Zone struct{}

// Name returns ZoneName.
func (Zone) Name() string { return ZoneName }

// Decide targets the nearest enemy but only moves when that enemy is already
// within movement + weapon range of the current tile.
func (Zone) Decide(s *Situation) Decision {
	target := s.NearestEnemy()
	if target == nil {
		return stay(s, nil)
	}
	threat := s.Self.MovementRange() + s.Self.WeaponRange()
	if !InReach(s.Self.Position(), target, threat) {
		return stay(s, target)
	}
	return Decision{Target: target, Path: TrimPath(s, target)}
}
