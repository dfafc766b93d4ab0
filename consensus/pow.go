package consensus

// ChainAncestor is the read-only view of one node in the header chain that
// the difficulty engine walks. The chain index owns the nodes; the engine
// only follows Parent links backward during a single call and never holds a
// reference across calls. Parent is nil at genesis and traversal must be
// O(1) per step.
type ChainAncestor interface {
	Height() int64
	BlockTime() int64
	Bits() uint32
	Parent() ChainAncestor
}

// activeRetargetSchedule selects the adjustment interval and target timespan
// governing the block after tipHeight. The hard fork compares the tip height:
// fork values apply whenever tipHeight >= HardForkHeight, so the first block
// they govern is at height HardForkHeight+1.
func activeRetargetSchedule(tipHeight int64, params *Params) (interval, timespan int64) {
	if tipHeight >= params.HardForkHeight {
		return params.AdjustmentIntervalFork, params.TargetTimespanFork
	}
	return params.AdjustmentInterval, params.TargetTimespan
}

// NextWorkRequired returns the compact difficulty target the block after tip
// must claim. candidate supplies only its timestamp, which feeds the
// min-difficulty allowance on networks that enable it.
//
// The only failure mode is an ancestor chain shorter than the retarget
// window, which cannot happen on a well-formed chain rooted at genesis and is
// treated as a caller defect: it panics rather than guessing at a target.
func NextWorkRequired(tip ChainAncestor, candidate *BlockHeader, params *Params) uint32 {
	if tip == nil {
		panic("consensus: NextWorkRequired called with nil tip")
	}
	interval, timespan := activeRetargetSchedule(tip.Height(), params)
	powLimitBits := TargetToCompact(params.PowLimit)

	// Difficulty only moves at interval boundaries.
	if (tip.Height()+1)%interval != 0 {
		if params.AllowMinDifficultyBlocks {
			// If more than twice the target spacing has passed, permit a
			// ceiling-difficulty block so low-hashrate networks stay live.
			if candidate.Timestamp > tip.BlockTime()+2*params.TargetSpacing {
				return powLimitBits
			}
			// Otherwise reach back past any run of min-difficulty blocks to
			// the last real target, so trivial blocks cannot be chained
			// indefinitely.
			node := tip
			for node.Parent() != nil && node.Height()%interval != 0 && node.Bits() == powLimitBits {
				node = node.Parent()
			}
			return node.Bits()
		}
		return tip.Bits()
	}

	// Walk back one full window, except on the very first retarget after
	// genesis where only interval-1 ancestors exist. Going back the full
	// period keeps a majority miner from moving difficulty at will.
	blocksToGoBack := interval - 1
	if tip.Height()+1 != interval {
		blocksToGoBack = interval
	}
	first := tip
	for i := int64(0); first != nil && i < blocksToGoBack; i++ {
		first = first.Parent()
	}
	if first == nil {
		panic("consensus: header chain shorter than retarget window")
	}

	return CalculateNextWork(tip, first.BlockTime(), params, timespan)
}

// CalculateNextWork scales the tip's target by the ratio of the observed
// window duration to targetTimespan, clamped to a factor of four in either
// direction, and caps the result at the network ceiling.
//
// The arithmetic is fixed-point and order-sensitive: multiply before the
// truncating divide. When the current target uses the full width of the
// ceiling, the intermediate product could overflow 256 bits, so the target is
// shifted right one bit first and the quotient shifted back after. The one
// bit of precision lost there is a consensus rule, not a defect.
func CalculateNextWork(tip ChainAncestor, firstBlockTime int64, params *Params, targetTimespan int64) uint32 {
	if params.NoRetargeting {
		return tip.Bits()
	}

	// Timestamps are not required monotonic, so this may come out negative;
	// the lower clamp absorbs it.
	actualTimespan := tip.BlockTime() - firstBlockTime
	if actualTimespan < targetTimespan/4 {
		actualTimespan = targetTimespan / 4
	}
	if actualTimespan > targetTimespan*4 {
		actualTimespan = targetTimespan * 4
	}

	newTarget, _, _ := CompactToTarget(tip.Bits())
	shifted := newTarget.BitLen() > params.PowLimit.BitLen()-1
	if shifted {
		newTarget = newTarget.Rsh(1)
	}
	newTarget = newTarget.MulUint64(uint64(actualTimespan))
	newTarget = newTarget.DivUint64(uint64(targetTimespan))
	if shifted {
		newTarget = newTarget.Lsh(1)
	}

	if newTarget.Cmp(params.PowLimit) > 0 {
		newTarget = params.PowLimit
	}

	return TargetToCompact(newTarget)
}

// CheckProofOfWork reports whether hash satisfies the difficulty claimed by
// bits under the given network ceiling. It is a pure predicate: malformed
// encodings (negative, zero, overflowing, or looser than the ceiling) and
// hashes above the target all return false, never an error.
//
// bits must be the header's own claimed value. Whether that claim matches
// NextWorkRequired is a separate rule enforced by the caller.
func CheckProofOfWork(hash [32]byte, bits uint32, powLimit Uint256) bool {
	target, negative, overflow := CompactToTarget(bits)

	if negative || target.IsZero() || overflow || target.Cmp(powLimit) > 0 {
		return false
	}

	return Uint256FromBytes(hash).Cmp(target) <= 0
}
