// Package dice provides the randomness abstraction and percentile checks
// used to resolve hit and critical rolls.
package dice

import "fmt"

// Source is the randomness provider for checks.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Check is the audit trail of one percentile check.
//
// Invariant: Success == (Roll < Chance).
type Check struct {
	Label   string
	Roll    int
	Chance  int
	Success bool
}

// String returns a human-readable audit string such as "hit 37/85 success".
//
// Precondition: c.Label is non-empty.
func (c Check) String() string {
	if c.Label == "" {
		panic("dice: Check.String() precondition violated: Label must be non-empty")
	}
	outcome := "fail"
	if c.Success {
		outcome = "success"
	}
	return fmt.Sprintf("%s %d/%d %s", c.Label, c.Roll, c.Chance, outcome)
}
