package model

import "slices"

// SortByPosition sorts blocks in place, keeping relative order of blocks
// with the same position.
func SortByPosition(blocks []*Block) {
	slices.SortStableFunc(blocks, func(a, b *Block) int {
		return a.Position - b.Position
	})
}
