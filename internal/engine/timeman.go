package engine

import "time"

// Clock carries the game clock state used to derive a time budget when
// the caller does not pass an explicit per-move limit.
type Clock struct {
	Remaining time.Duration // time left on our clock
	Increment time.Duration // increment added per move
	MovesToGo int           // moves until the next time control, 0 = sudden death
}

// defaultMoveTime is used when neither a limit nor clock state exists.
const defaultMoveTime = 3 * time.Second

// minMoveTime keeps the budget large enough to finish depth 1.
const minMoveTime = 10 * time.Millisecond

// ComputeTimeBudget decides how long the next search may run.
// moveOverhead is subtracted to cover transport and bookkeeping latency.
func ComputeTimeBudget(c Clock, moveOverhead time.Duration) time.Duration {
	if c.Remaining <= 0 {
		return defaultMoveTime
	}

	var budget time.Duration
	if c.MovesToGo > 0 {
		budget = c.Remaining / time.Duration(c.MovesToGo)
	} else {
		// Sudden death: spend a small slice of the clock plus most
		// of the increment.
		budget = c.Remaining/50 + c.Increment*9/10
	}

	budget -= moveOverhead

	// Never bank on more than 80% of what is actually left.
	if limit := c.Remaining * 8 / 10; budget > limit {
		budget = limit
	}
	if budget < minMoveTime {
		budget = minMoveTime
	}
	return budget
}
