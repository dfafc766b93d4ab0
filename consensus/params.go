package consensus

import "fmt"

// Params holds every consensus parameter the difficulty engine reads. All
// calls take an explicit *Params so synthetic parameter sets are trivial to
// test against; nothing in this package reads network state from globals.
type Params struct {
	Name string

	// PowLimit is the loosest target any block may claim; PowLimitBits is
	// its compact form and must round-trip through the codec exactly.
	PowLimit     Uint256
	PowLimitBits uint32

	// TargetSpacing is the designed inter-block gap in seconds.
	TargetSpacing int64

	// Pre-fork retarget schedule.
	TargetTimespan     int64
	AdjustmentInterval int64

	// Post-fork retarget schedule, active for blocks whose parent height is
	// at or above HardForkHeight.
	TargetTimespanFork     int64
	AdjustmentIntervalFork int64
	HardForkHeight         int64

	// AllowMinDifficultyBlocks permits ceiling-difficulty blocks after a
	// long inter-block gap (test networks only).
	AllowMinDifficultyBlocks bool

	// NoRetargeting freezes difficulty entirely (regression test networks).
	NoRetargeting bool
}

func compactTarget(bits uint32) Uint256 {
	t, _, _ := CompactToTarget(bits)
	return t
}

// MainNetParams is the production schedule: ten minute blocks retargeted
// every two weeks, moving to a 504-block / 3.5-day window at the hard fork.
var MainNetParams = Params{
	Name:                   "mainnet",
	PowLimit:               compactTarget(0x1e0fffff),
	PowLimitBits:           0x1e0fffff,
	TargetSpacing:          600,
	TargetTimespan:         14 * 24 * 60 * 60,
	AdjustmentInterval:     2016,
	TargetTimespanFork:     (7 * 24 * 60 * 60) / 2,
	AdjustmentIntervalFork: 504,
	HardForkHeight:         250000,
}

// TestNetParams mirrors the mainnet schedule with the min-difficulty
// allowance enabled and an early fork height so the fork path stays
// exercised.
var TestNetParams = Params{
	Name:                     "testnet",
	PowLimit:                 compactTarget(0x1e0fffff),
	PowLimitBits:             0x1e0fffff,
	TargetSpacing:            600,
	TargetTimespan:           14 * 24 * 60 * 60,
	AdjustmentInterval:       2016,
	TargetTimespanFork:       (7 * 24 * 60 * 60) / 2,
	AdjustmentIntervalFork:   504,
	HardForkHeight:           2016,
	AllowMinDifficultyBlocks: true,
}

// RegTestParams never retargets, so tests can mine arbitrary-time chains at a
// fixed trivial difficulty.
var RegTestParams = Params{
	Name:                     "regtest",
	PowLimit:                 compactTarget(0x207fffff),
	PowLimitBits:             0x207fffff,
	TargetSpacing:            600,
	TargetTimespan:           14 * 24 * 60 * 60,
	AdjustmentInterval:       144,
	TargetTimespanFork:       (7 * 24 * 60 * 60) / 2,
	AdjustmentIntervalFork:   144,
	HardForkHeight:           1000,
	AllowMinDifficultyBlocks: true,
	NoRetargeting:            true,
}

// ParamsForNetwork resolves a network name to its parameter set.
func ParamsForNetwork(name string) (*Params, error) {
	switch name {
	case "mainnet":
		return &MainNetParams, nil
	case "testnet":
		return &TestNetParams, nil
	case "regtest":
		return &RegTestParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}
