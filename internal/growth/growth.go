// Package growth describes non 1:1 correspondences between two index spaces.
//
// A Growth of (TargetBlock, SourceBlock) says that every TargetBlock
// contiguous target units correspond to SourceBlock contiguous source units,
// e.g. one byte that is hex-encoded into two chars is Of(2, 1). Inside a block
// units do not map individually: any sub-range of a block maps to the whole
// source block.
package growth

import "fmt"

// Growth is the rate between target and source units. It does not describe an
// absolute extent.
type Growth struct {
	TargetBlock int
	SourceBlock int
}

var (
	// None is the identity correspondence.
	None = Growth{TargetBlock: 1, SourceBlock: 1}
	// Double maps every source unit onto two target units.
	Double = Growth{TargetBlock: 2, SourceBlock: 1}
	// Half maps every two source units onto one target unit.
	Half = Growth{TargetBlock: 1, SourceBlock: 2}
)

// Of returns the normalized growth for the given block sizes. Equal ratios
// yield equal values, so Growth can be compared with ==.
// Non-positive blocks are kept as-is so that Valid can reject them.
func Of(targetBlock, sourceBlock int) Growth {
	if targetBlock <= 0 || sourceBlock <= 0 {
		return Growth{TargetBlock: targetBlock, SourceBlock: sourceBlock}
	}
	d := gcd(targetBlock, sourceBlock)
	return Growth{TargetBlock: targetBlock / d, SourceBlock: sourceBlock / d}
}

// Valid reports whether both blocks are positive.
func (g Growth) Valid() bool {
	return g.TargetBlock > 0 && g.SourceBlock > 0
}

// IsNone reports whether g is the identity.
func (g Growth) IsNone() bool {
	return g.TargetBlock == g.SourceBlock
}

// TargetToSource returns how many source units a target range of length n
// covers. A trailing partial block covers a whole source block.
func (g Growth) TargetToSource(n int) int {
	if n <= 0 {
		return 0
	}
	blocks := (n + g.TargetBlock - 1) / g.TargetBlock
	return blocks * g.SourceBlock
}

// SourceToTarget returns the target length for n source units, rounded down
// when n does not end on a block boundary.
func (g Growth) SourceToTarget(n int) int {
	if n <= 0 {
		return 0
	}
	return n * g.TargetBlock / g.SourceBlock
}

// SourceExtent returns the number of source units covered by a part of
// target length n. It equals TargetToSource; the separate name reads better
// at call sites dealing with stored parts.
func (g Growth) SourceExtent(n int) int {
	return g.TargetToSource(n)
}

// Whole reports whether a target length of n ends on a block boundary.
func (g Growth) Whole(n int) bool {
	return n%g.TargetBlock == 0
}

// Combine composes two growths: g maps target to middle, other maps middle to
// source.
func (g Growth) Combine(other Growth) Growth {
	return Of(g.TargetBlock*other.TargetBlock, g.SourceBlock*other.SourceBlock)
}

// String renders the growth as "target:source".
func (g Growth) String() string {
	return fmt.Sprintf("%d:%d", g.TargetBlock, g.SourceBlock)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
