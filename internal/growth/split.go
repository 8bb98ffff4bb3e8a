package growth

// Block is one piece of a range cut along block boundaries. Start and End are
// target offsets relative to the start of a part; SourceOffset is the offset
// of the corresponding source block relative to the part's source index.
type Block struct {
	Range
	SourceOffset int
	Partial      bool // does not cover a whole number of blocks
}

// Split cuts r (offsets into a part whose offset 0 is block aligned) into at
// most three blocks: a partial remainder of the first block when r.Start is
// mid-block, the whole blocks, and a partial last block when r.End is
// mid-block. A range that starts and ends inside one block yields a single
// partial block.
func Split(r Range, g Growth) []Block {
	if r.Empty() {
		return nil
	}
	tb, sb := g.TargetBlock, g.SourceBlock
	out := make([]Block, 0, 3)

	start := r.Start
	if rem := start % tb; rem != 0 {
		end := min(r.End, start-rem+tb)
		out = append(out, Block{
			Range:        Range{Start: start, End: end},
			SourceOffset: start / tb * sb,
			Partial:      true,
		})
		start = end
		if start == r.End {
			return out
		}
	}

	alignedEnd := r.End - r.End%tb
	if alignedEnd > start {
		out = append(out, Block{
			Range:        Range{Start: start, End: alignedEnd},
			SourceOffset: start / tb * sb,
		})
		start = alignedEnd
	}

	if start < r.End {
		out = append(out, Block{
			Range:        Range{Start: start, End: r.End},
			SourceOffset: start / tb * sb,
			Partial:      true,
		})
	}
	return out
}

// SplitWithin is Split for a query into a part of target length partLen.
// When r reaches the end of the part, a trailing partial block is the part's
// own truncation rather than a cut made by the query, so it stays fused with
// the preceding whole blocks.
func SplitWithin(r Range, partLen int, g Growth) []Block {
	blocks := Split(r, g)
	n := len(blocks)
	if n < 2 || r.End != partLen {
		return blocks
	}
	last, prev := blocks[n-1], blocks[n-2]
	if !last.Partial || prev.Partial {
		return blocks
	}
	prev.End = last.End
	prev.Partial = !g.Whole(prev.Len())
	blocks[n-2] = prev
	return blocks[:n-1]
}
