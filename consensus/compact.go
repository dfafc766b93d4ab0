package consensus

// Compact target encoding: the 32-bit header field that carries a 256-bit
// difficulty target. The layout is the base-256 floating point form used by
// the header wire format:
//
//	bits[31:24]  exponent, the byte length of the full target
//	bits[23]     sign
//	bits[22:0]   mantissa, the three most significant target bytes
//
// A target T decodes as mantissa * 256^(exponent-3). Only the top ~24
// significant bits of a target survive the encoding, so TargetToCompact is a
// lossy truncation for wider values. These two functions are the only place
// targets cross the compact wire boundary; every byte of their behavior is
// consensus-critical.

const (
	compactSignBit  = 0x00800000
	compactMantissa = 0x007fffff
)

// CompactToTarget decodes a compact value into its target magnitude.
//
// Malformed inputs never fail: a set sign bit with a nonzero mantissa is
// reported via negative, and an exponent that would place mantissa bits above
// position 255 is reported via overflow (detected without performing the
// oversized shift). A zero mantissa reports neither, whatever the exponent.
func CompactToTarget(bits uint32) (target Uint256, negative bool, overflow bool) {
	size := bits >> 24
	word := bits & compactMantissa
	if size <= 3 {
		word >>= 8 * (3 - size)
		target = Uint256FromUint64(uint64(word))
	} else {
		target = Uint256FromUint64(uint64(word)).Lsh(uint(8 * (size - 3)))
	}
	negative = word != 0 && bits&compactSignBit != 0
	overflow = word != 0 && (size > 34 ||
		(word > 0xff && size > 33) ||
		(word > 0xffff && size > 32))
	return target, negative, overflow
}

// TargetToCompact encodes a target magnitude into its compact form.
//
// The exponent is the minimal one for which the leading mantissa fits in
// three bytes with the sign bit clear, so the encoding is canonical:
// CompactToTarget(TargetToCompact(t)) == t whenever t's significant bits fit
// the 24-bit mantissa window.
func TargetToCompact(target Uint256) uint32 {
	size := uint32((target.BitLen() + 7) / 8)
	var compact uint32
	if size <= 3 {
		compact = uint32(target.low64() << (8 * (3 - size)))
	} else {
		compact = uint32(target.Rsh(uint(8 * (size - 3))).low64())
	}
	// A mantissa with its top bit set would read back as negative; shed one
	// byte of precision and bump the exponent instead.
	if compact&compactSignBit != 0 {
		compact >>= 8
		size++
	}
	return compact | size<<24
}
