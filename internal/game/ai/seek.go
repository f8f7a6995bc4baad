package ai

// SeekName is the registry name of Seek.
const SeekName = "seek"

// Seek always closes on the nearest enemy.
type Seek struct{}

// Name returns SeekName.
func (Seek) Name() string { return SeekName }

// Decide targets the nearest enemy and moves as far toward it as movement allows.
func (Seek) Decide(s *Situation) Decision {
	target := s.NearestEnemy()
	if target == nil {
		return stay(s, nil)
	}
	return Decision{Target: target, Path: TrimPath(s, target)}
}
