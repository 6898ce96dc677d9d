package engine

import (
	"testing"
)

func TestRestrictedSearchResetsNodeCount(t *testing.T) {
	eng := newTestEngine()
	pos := mustParse(t, "4k3/8/8/8/8/8/Q7/4K3 w - - 0 1")

	// A stale count from an earlier search must not leak into the
	// node totals reported for the next line.
	eng.nodes.Store(1 << 40)
	eng.searchRestricted(&pos, pos.GenerateMoves(), 2, 1000)
	if n := eng.Nodes(); n >= 1<<40 {
		t.Errorf("node count %d still includes the previous search", n)
	}
	if eng.Nodes() == 0 {
		t.Error("node count was never recorded")
	}
}
