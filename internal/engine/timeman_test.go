package engine

import (
	"testing"
	"time"
)

func TestComputeTimeBudgetDefault(t *testing.T) {
	if got := ComputeTimeBudget(Clock{}, 0); got != defaultMoveTime {
		t.Errorf("empty clock budget = %v, want %v", got, defaultMoveTime)
	}
}

func TestComputeTimeBudgetMovesToGo(t *testing.T) {
	c := Clock{Remaining: 40 * time.Second, MovesToGo: 40}
	got := ComputeTimeBudget(c, 0)
	if got != time.Second {
		t.Errorf("budget = %v, want 1s", got)
	}
}

func TestComputeTimeBudgetSuddenDeath(t *testing.T) {
	c := Clock{Remaining: 100 * time.Second, Increment: 2 * time.Second}
	got := ComputeTimeBudget(c, 0)
	// 100s/50 + 90% of 2s increment.
	want := 2*time.Second + 1800*time.Millisecond
	if got != want {
		t.Errorf("budget = %v, want %v", got, want)
	}
}

func TestComputeTimeBudgetOverheadAndFloor(t *testing.T) {
	c := Clock{Remaining: 400 * time.Millisecond, MovesToGo: 10}
	got := ComputeTimeBudget(c, 35*time.Millisecond)
	if got != minMoveTime {
		t.Errorf("budget = %v, want floor %v", got, minMoveTime)
	}
}

func TestComputeTimeBudgetNeverOverspends(t *testing.T) {
	c := Clock{Remaining: time.Second, Increment: 10 * time.Second}
	got := ComputeTimeBudget(c, 0)
	if got > c.Remaining*8/10 {
		t.Errorf("budget %v exceeds 80%% of remaining %v", got, c.Remaining)
	}
}
