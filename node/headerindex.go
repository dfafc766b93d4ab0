package node

import (
	"fmt"
	"math/big"

	"sable.dev/sable/consensus"
)

// HeaderRecord is one header-chain entry as the index stores it: just the
// fields difficulty computation and chain selection need, not the full
// header.
type HeaderRecord struct {
	Height int64
	Time   int64
	Bits   uint32
	Hash   [32]byte
}

// HeaderIndex is an append-only arena of header records. Height doubles as
// the array index, so backward traversal during a retarget walk is an index
// decrement rather than a pointer chase, and ownership stays with the index.
//
// A HeaderIndex is not safe for concurrent mutation. Callers that share one
// across goroutines must guarantee a stable snapshot (no Append) for the
// duration of any difficulty computation walking it.
type HeaderIndex struct {
	records []HeaderRecord
	work    []*big.Int // cumulative chainwork, parallel to records
}

func NewHeaderIndex() *HeaderIndex {
	return &HeaderIndex{}
}

// Len returns the number of indexed headers (tip height + 1 when non-empty).
func (ix *HeaderIndex) Len() int {
	return len(ix.records)
}

// Append adds the next header record. The record's height must be exactly
// Len(): the index never holds gaps or forks, only the canonical chain.
func (ix *HeaderIndex) Append(rec HeaderRecord) error {
	if rec.Height != int64(len(ix.records)) {
		return fmt.Errorf("headerindex: record height %d, expected %d", rec.Height, len(ix.records))
	}
	w, err := WorkFromBits(rec.Bits)
	if err != nil {
		return fmt.Errorf("headerindex: height %d: %w", rec.Height, err)
	}
	if len(ix.work) > 0 {
		w.Add(w, ix.work[len(ix.work)-1])
	}
	ix.records = append(ix.records, rec)
	ix.work = append(ix.work, w)
	return nil
}

// Record returns the record at the given height.
func (ix *HeaderIndex) Record(height int64) (HeaderRecord, bool) {
	if height < 0 || height >= int64(len(ix.records)) {
		return HeaderRecord{}, false
	}
	return ix.records[height], true
}

// TipWork returns a copy of the cumulative chainwork at the tip, or zero for
// an empty index.
func (ix *HeaderIndex) TipWork() *big.Int {
	if len(ix.work) == 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(ix.work[len(ix.work)-1])
}

// Tip returns a cursor at the highest record, or nil for an empty index.
func (ix *HeaderIndex) Tip() *HeaderCursor {
	return ix.At(int64(len(ix.records)) - 1)
}

// At returns a cursor at the given height, or nil when out of range.
func (ix *HeaderIndex) At(height int64) *HeaderCursor {
	if height < 0 || height >= int64(len(ix.records)) {
		return nil
	}
	return &HeaderCursor{ix: ix, pos: int(height)}
}

// HeaderCursor is a read-only position in a HeaderIndex. It implements
// consensus.ChainAncestor; Parent steps down one height in O(1).
type HeaderCursor struct {
	ix  *HeaderIndex
	pos int
}

func (c *HeaderCursor) Height() int64    { return c.ix.records[c.pos].Height }
func (c *HeaderCursor) BlockTime() int64 { return c.ix.records[c.pos].Time }
func (c *HeaderCursor) Bits() uint32     { return c.ix.records[c.pos].Bits }
func (c *HeaderCursor) Hash() [32]byte   { return c.ix.records[c.pos].Hash }

func (c *HeaderCursor) Parent() consensus.ChainAncestor {
	if c.pos == 0 {
		return nil
	}
	return &HeaderCursor{ix: c.ix, pos: c.pos - 1}
}
