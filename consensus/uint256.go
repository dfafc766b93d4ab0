package consensus

import (
	"encoding/hex"
	"math/bits"
)

// Uint256 is a fixed-width unsigned 256-bit integer, stored as four uint64
// limbs in little-endian limb order (limb 0 holds the least significant 64
// bits). All arithmetic is mod 2^256: results that do not fit the width are
// truncated, never promoted to wider host arithmetic. Difficulty retargeting
// relies on this fixed width; the pre-multiply shift in CalculateNextWork is
// only meaningful against a type that can actually overflow.
type Uint256 [4]uint64

// Uint256FromUint64 returns v widened to 256 bits.
func Uint256FromUint64(v uint64) Uint256 {
	return Uint256{v}
}

// Uint256FromBytes interprets b as an unsigned big-endian integer.
func Uint256FromBytes(b [32]byte) Uint256 {
	var x Uint256
	for i := 0; i < 4; i++ {
		for j := 0; j < 8; j++ {
			x[3-i] = x[3-i]<<8 | uint64(b[i*8+j])
		}
	}
	return x
}

// Bytes returns x as a 32-byte unsigned big-endian integer.
func (x Uint256) Bytes() [32]byte {
	var b [32]byte
	for i := 0; i < 4; i++ {
		limb := x[3-i]
		for j := 7; j >= 0; j-- {
			b[i*8+j] = byte(limb)
			limb >>= 8
		}
	}
	return b
}

// IsZero reports whether x == 0.
func (x Uint256) IsZero() bool {
	return x[0]|x[1]|x[2]|x[3] == 0
}

// Cmp compares x and y and returns -1, 0, or +1.
func (x Uint256) Cmp(y Uint256) int {
	for i := 3; i >= 0; i-- {
		if x[i] != y[i] {
			if x[i] < y[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// BitLen returns the number of significant bits in x; BitLen of zero is 0.
func (x Uint256) BitLen() int {
	for i := 3; i >= 0; i-- {
		if x[i] != 0 {
			return i*64 + bits.Len64(x[i])
		}
	}
	return 0
}

// Lsh returns x << n, discarding bits shifted past position 255.
func (x Uint256) Lsh(n uint) Uint256 {
	var out Uint256
	if n >= 256 {
		return out
	}
	limbShift := int(n / 64)
	bitShift := n % 64
	for i := 3; i >= limbShift; i-- {
		out[i] = x[i-limbShift] << bitShift
		if bitShift != 0 && i-limbShift-1 >= 0 {
			out[i] |= x[i-limbShift-1] >> (64 - bitShift)
		}
	}
	return out
}

// Rsh returns x >> n.
func (x Uint256) Rsh(n uint) Uint256 {
	var out Uint256
	if n >= 256 {
		return out
	}
	limbShift := int(n / 64)
	bitShift := n % 64
	for i := 0; i+limbShift <= 3; i++ {
		out[i] = x[i+limbShift] >> bitShift
		if bitShift != 0 && i+limbShift+1 <= 3 {
			out[i] |= x[i+limbShift+1] << (64 - bitShift)
		}
	}
	return out
}

// MulUint64 returns x * m mod 2^256.
func (x Uint256) MulUint64(m uint64) Uint256 {
	var out Uint256
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(x[i], m)
		lo, c := bits.Add64(lo, carry, 0)
		out[i] = lo
		carry = hi + c
	}
	return out
}

// DivUint64 returns the truncating quotient x / d. Division by zero panics,
// as it would for the built-in integer types.
func (x Uint256) DivUint64(d uint64) Uint256 {
	if d == 0 {
		panic("consensus: Uint256 division by zero")
	}
	var out Uint256
	var rem uint64
	for i := 3; i >= 0; i-- {
		out[i], rem = bits.Div64(rem, x[i], d)
	}
	return out
}

// String returns x as 64 lowercase hex digits, most significant first.
func (x Uint256) String() string {
	b := x.Bytes()
	return hex.EncodeToString(b[:])
}

func (x Uint256) low64() uint64 {
	return x[0]
}
