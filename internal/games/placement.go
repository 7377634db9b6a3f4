package games

import (
	"fmt"

	"github.com/MJE43/stake-mines-go/internal/engine"
)

// Placement selects the algorithm used to lay hazards on a board.
type Placement string

const (
	// PlacementRejection draws uniform cells and retries duplicates until the
	// hazard set is full.
	PlacementRejection Placement = "rejection"
	// PlacementShuffle runs a partial Fisher-Yates shuffle over the cell pool.
	// It uses exactly one draw per hazard.
	PlacementShuffle Placement = "shuffle"
)

// ParsePlacement maps a name to a Placement. The empty string selects
// PlacementRejection.
func ParsePlacement(name string) (Placement, error) {
	switch Placement(name) {
	case "", PlacementRejection:
		return PlacementRejection, nil
	case PlacementShuffle:
		return PlacementShuffle, nil
	default:
		return "", fmt.Errorf("unknown placement %q", name)
	}
}

// PlaceMines returns mines distinct cell indices in [0, cells), in draw order.
// The caller guarantees 0 < mines < cells (see Config.Validate).
func PlaceMines(src engine.Source, cells, mines int, method Placement) []int {
	if method == PlacementShuffle {
		return placeShuffle(src, cells, mines)
	}
	return placeRejection(src, cells, mines)
}

// rejectionDuplicateFactor caps placeRejection at rejectionDuplicateFactor*cells
// duplicate draws per board. A uniform source needs about cells*ln(cells) even
// for a nearly full board, so only a degenerate source reaches the cap; the
// board is then laid with placeShuffle instead.
const rejectionDuplicateFactor = 64

func placeRejection(src engine.Source, cells, mines int) []int {
	set := make(map[int]bool, mines)
	out := make([]int, 0, mines)
	duplicates := 0
	for len(out) < mines {
		idx := src.Intn(cells)
		if set[idx] {
			duplicates++
			if duplicates > rejectionDuplicateFactor*cells {
				return placeShuffle(src, cells, mines)
			}
			continue
		}
		set[idx] = true
		out = append(out, idx)
	}
	return out
}

func placeShuffle(src engine.Source, cells, mines int) []int {
	pool := make([]int, cells)
	for i := range pool {
		pool[i] = i
	}

	// Swap a random survivor into slot i; slots [0, i) are already drawn.
	for i := 0; i < mines; i++ {
		j := i + src.Intn(cells-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	out := make([]int, mines)
	copy(out, pool[:mines])
	return out
}
