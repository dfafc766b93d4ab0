package node

import (
	"fmt"
	"math/big"

	"sable.dev/sable/consensus"
)

var oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)

// WorkFromBits returns floor(2^256 / target) for the given compact target,
// the chainwork contribution of one block mined at that difficulty. Compact
// values that decode negative, overflowing, or zero carry no valid work and
// are rejected.
func WorkFromBits(bits uint32) (*big.Int, error) {
	target, negative, overflow := consensus.CompactToTarget(bits)
	if negative || overflow || target.IsZero() {
		return nil, fmt.Errorf("work: invalid compact target %08x", bits)
	}
	b := target.Bytes()
	t := new(big.Int).SetBytes(b[:])
	return new(big.Int).Quo(oneLsh256, t), nil
}
