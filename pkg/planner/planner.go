// Package planner turns an instruction count and its loop annotations into
// the linear order in which instructions are executed.
package planner

import "github.com/InNoobWeTrust/web-automator/pkg/types"

// Plan returns the instruction indices to execute, in order.
//
// Positions are scanned left to right. When a loop range starts at the
// current position, the block from..=to is emitted Times times and the scan
// resumes at to+1; the block is not also run as part of normal flow. Only the
// first range found for a position is honored. Indices inside a range that
// fall outside [0, count) are skipped, and a range reaching past the end
// resumes the scan at count. Ranges with from > to are ignored.
func Plan(count int, loops []types.LoopRange) []int {
	order := make([]int, 0, count)

	for cursor := 0; cursor < count; {
		r, ok := rangeAt(cursor, loops)
		if !ok {
			order = append(order, cursor)
			cursor++
			continue
		}

		// Indices past the end are dropped, so the block stops at count-1.
		block := types.LoopRange{From: r.From, To: min(r.To, count-1)}
		for rep := uint(0); rep < r.Times; rep++ {
			for k := range block.Len() {
				order = append(order, block.From+k)
			}
		}
		cursor = block.To + 1
	}

	return order
}

func rangeAt(pos int, loops []types.LoopRange) (types.LoopRange, bool) {
	for _, r := range loops {
		if r.From == pos && r.From <= r.To {
			return r, true
		}
	}
	return types.LoopRange{}, false
}
