package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"sable.dev/sable/node"
)

var (
	bucketHeaders = []byte("headers_by_height")
	bucketMeta    = []byte("meta")

	keyTipHeight = []byte("tip_height")
)

// Header values are fixed-size: time u64 LE, bits u32 LE, hash. The height is
// the 8-byte big-endian bucket key so a cursor walks the chain in order.
const headerValueSize = 8 + 4 + 32

// DB is the persistent header store. It holds only the canonical header
// chain; the in-memory HeaderIndex rebuilt from it is what difficulty
// computation walks.
type DB struct {
	path string
	db   *bolt.DB
}

// Open opens (creating if needed) the header store under dataDir.
func Open(dataDir string) (*DB, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("store: datadir required")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create datadir: %w", err)
	}

	path := filepath.Join(dataDir, "headers.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}

	d := &DB{path: path, db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketHeaders, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Path() string { return d.path }

// PutHeader stores a header record at its height and advances the tip marker
// when the record extends the chain.
func (d *DB) PutHeader(rec node.HeaderRecord) error {
	if rec.Height < 0 {
		return fmt.Errorf("store: negative height %d", rec.Height)
	}
	key := heightKey(rec.Height)
	val := encodeHeaderValue(rec)
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketHeaders).Put(key, val); err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		if cur := meta.Get(keyTipHeight); cur != nil {
			if rec.Height <= int64(binary.BigEndian.Uint64(cur)) {
				return nil
			}
		}
		return meta.Put(keyTipHeight, key)
	})
}

// Header returns the record stored at height, if any.
func (d *DB) Header(height int64) (node.HeaderRecord, bool, error) {
	var rec node.HeaderRecord
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeaders).Get(heightKey(height))
		if v == nil {
			return nil
		}
		r, err := decodeHeaderValue(height, v)
		if err != nil {
			return err
		}
		rec = r
		ok = true
		return nil
	})
	return rec, ok, err
}

// TipHeight returns the highest stored height; ok is false for an empty
// store.
func (d *DB) TipHeight() (int64, bool, error) {
	var height int64
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyTipHeight)
		if v == nil {
			return nil
		}
		height = int64(binary.BigEndian.Uint64(v))
		ok = true
		return nil
	})
	return height, ok, err
}

// LoadIndex rebuilds the in-memory header index from the stored chain. The
// stored heights must be contiguous from genesis; anything else means the
// store was corrupted or written by a buggy caller.
func (d *DB) LoadIndex() (*node.HeaderIndex, error) {
	ix := node.NewHeaderIndex()
	err := d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketHeaders).Cursor()
		want := int64(0)
		for k, v := c.First(); k != nil; k, v = c.Next() {
			height := int64(binary.BigEndian.Uint64(k))
			if height != want {
				return fmt.Errorf("store: gap in header chain: have %d, want %d", height, want)
			}
			rec, err := decodeHeaderValue(height, v)
			if err != nil {
				return err
			}
			if err := ix.Append(rec); err != nil {
				return err
			}
			want++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}

func heightKey(height int64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(height))
	return k[:]
}

func encodeHeaderValue(rec node.HeaderRecord) []byte {
	out := make([]byte, headerValueSize)
	binary.LittleEndian.PutUint64(out[0:8], uint64(rec.Time))
	binary.LittleEndian.PutUint32(out[8:12], rec.Bits)
	copy(out[12:44], rec.Hash[:])
	return out
}

func decodeHeaderValue(height int64, v []byte) (node.HeaderRecord, error) {
	if len(v) != headerValueSize {
		return node.HeaderRecord{}, fmt.Errorf("store: header value at height %d: want %d bytes, got %d",
			height, headerValueSize, len(v))
	}
	rec := node.HeaderRecord{
		Height: height,
		Time:   int64(binary.LittleEndian.Uint64(v[0:8])),
		Bits:   binary.LittleEndian.Uint32(v[8:12]),
	}
	copy(rec.Hash[:], v[12:44])
	return rec, nil
}
