package consensus

import "testing"

func TestParamsForNetwork(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet", "regtest"} {
		params, err := ParamsForNetwork(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if params.Name != name {
			t.Fatalf("expected %s, got %s", name, params.Name)
		}
	}

	if _, err := ParamsForNetwork("moonnet"); err == nil {
		t.Fatalf("expected error for unknown network")
	}
}

func TestParamsPowLimitRoundTrips(t *testing.T) {
	for _, params := range []*Params{&MainNetParams, &TestNetParams, &RegTestParams} {
		t.Run(params.Name, func(t *testing.T) {
			if got := TargetToCompact(params.PowLimit); got != params.PowLimitBits {
				t.Fatalf("PowLimit encodes to %08x, PowLimitBits is %08x", got, params.PowLimitBits)
			}
			target, negative, overflow := CompactToTarget(params.PowLimitBits)
			if negative || overflow {
				t.Fatalf("PowLimitBits decoded with flags")
			}
			if target.Cmp(params.PowLimit) != 0 {
				t.Fatalf("PowLimitBits decodes to %s, PowLimit is %s", target, params.PowLimit)
			}
		})
	}
}

func TestParamsSchedulesAreSane(t *testing.T) {
	for _, params := range []*Params{&MainNetParams, &TestNetParams, &RegTestParams} {
		t.Run(params.Name, func(t *testing.T) {
			// Regtest deliberately uses a short interval unrelated to its timespan.
			if params.Name != "regtest" &&
				params.TargetTimespan/params.TargetSpacing != params.AdjustmentInterval {
				t.Fatalf("pre-fork interval %d does not match timespan/spacing %d",
					params.AdjustmentInterval, params.TargetTimespan/params.TargetSpacing)
			}
			if params.TargetSpacing <= 0 || params.TargetTimespan <= 0 ||
				params.AdjustmentInterval <= 0 || params.AdjustmentIntervalFork <= 0 {
				t.Fatalf("non-positive schedule value")
			}
		})
	}
}
