package consensus

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// BlockHeaderSize is the length of the canonical header encoding.
const BlockHeaderSize = 4 + 32 + 32 + 8 + 4 + 8

// BlockHeader is the wire header. Bits carries the claimed difficulty target
// in compact form; it is the only field of the header the difficulty engine
// and the PoW validator read besides Timestamp.
type BlockHeader struct {
	Version       int32
	PrevBlockHash [32]byte
	MerkleRoot    [32]byte
	Timestamp     int64
	Bits          uint32
	Nonce         uint64
}

// BlockHeaderBytes returns the canonical 88-byte header encoding: all integer
// fields little-endian, in declaration order.
func BlockHeaderBytes(header BlockHeader) []byte {
	out := make([]byte, 0, BlockHeaderSize)
	var tmp4 [4]byte
	var tmp8 [8]byte

	binary.LittleEndian.PutUint32(tmp4[:], uint32(header.Version))
	out = append(out, tmp4[:]...)
	out = append(out, header.PrevBlockHash[:]...)
	out = append(out, header.MerkleRoot[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], uint64(header.Timestamp))
	out = append(out, tmp8[:]...)
	binary.LittleEndian.PutUint32(tmp4[:], header.Bits)
	out = append(out, tmp4[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], header.Nonce)
	out = append(out, tmp8[:]...)
	return out
}

// ParseBlockHeaderBytes parses a canonical header encoding and rejects
// trailing bytes.
func ParseBlockHeaderBytes(b []byte) (BlockHeader, error) {
	if len(b) != BlockHeaderSize {
		return BlockHeader{}, fmt.Errorf("header: want %d bytes, got %d", BlockHeaderSize, len(b))
	}
	var h BlockHeader
	h.Version = int32(binary.LittleEndian.Uint32(b[0:4]))
	copy(h.PrevBlockHash[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = int64(binary.LittleEndian.Uint64(b[68:76]))
	h.Bits = binary.LittleEndian.Uint32(b[76:80])
	h.Nonce = binary.LittleEndian.Uint64(b[80:88])
	return h, nil
}

// BlockHeaderHash returns the canonical header hash (SHA3-256 over the
// 88-byte encoding). The hash compares against targets as an unsigned
// big-endian magnitude.
func BlockHeaderHash(header BlockHeader) [32]byte {
	return sha3.Sum256(BlockHeaderBytes(header))
}
