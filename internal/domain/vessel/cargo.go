package vessel

import (
	"fmt"
	"sort"
)

// CargoItem is one unit of a ship's cargo manifest
type CargoItem struct {
	weight        int
	originalIndex int
	moved         bool
}

func (c *CargoItem) Weight() int        { return c.weight }
func (c *CargoItem) OriginalIndex() int { return c.originalIndex }
func (c *CargoItem) IsMoved() bool      { return c.moved }

func (c *CargoItem) String() string {
	return fmt.Sprintf("Cargo(#%d, %d)", c.originalIndex, c.weight)
}

// NewCargoManifest builds the cargo list for a request, heaviest first.
// Items of equal weight keep their request order, so crane matching is
// deterministic.
func NewCargoManifest(weights []int) []*CargoItem {
	items := make([]*CargoItem, len(weights))
	for i, w := range weights {
		items[i] = &CargoItem{weight: w, originalIndex: i}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].weight > items[j].weight
	})

	return items
}
