// Command sable-difficulty inspects and verifies proof-of-work difficulty for
// a header chain: the compact-bits codec, the retarget schedule, and PoW
// validation, against either a stored chain or a JSON headers file.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "go.uber.org/automaxprocs"

	"sable.dev/sable/consensus"
	"sable.dev/sable/node"
	"sable.dev/sable/node/store"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: sable-difficulty <command> [flags]

commands:
  next-bits      compute the required compact bits for the next block
  check-pow      check a hash/bits pair against the network ceiling
  verify-chain   re-validate bits and PoW for every stored header
  decode-bits    decode a compact value to its target and flags
  encode-target  encode a target magnitude to compact form
`)
	os.Exit(2)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "next-bits":
		err = cmdNextBits(os.Args[2:])
	case "check-pow":
		err = cmdCheckPow(os.Args[2:])
	case "verify-chain":
		err = cmdVerifyChain(os.Args[2:])
	case "decode-bits":
		err = cmdDecodeBits(os.Args[2:])
	case "encode-target":
		err = cmdEncodeTarget(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		slog.Error(os.Args[1], "err", err)
		os.Exit(1)
	}
}

// jsonHeader is one entry of a -headers file: a JSON array ordered by height
// from genesis.
type jsonHeader struct {
	Height int64  `json:"height"`
	Time   int64  `json:"time"`
	Bits   string `json:"bits"`
	Hash   string `json:"hash,omitempty"`
}

func parseBits(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad compact bits %q: %w", s, err)
	}
	return uint32(v), nil
}

func parseHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(b) != 32 {
		return out, fmt.Errorf("bad 32-byte hash %q", s)
	}
	copy(out[:], b)
	return out, nil
}

// loadChain builds a header index from a JSON headers file, or from the
// persistent store when a datadir is given instead.
func loadChain(headersPath, dataDir string) (*node.HeaderIndex, error) {
	if headersPath != "" {
		buf, err := os.ReadFile(headersPath)
		if err != nil {
			return nil, err
		}
		var headers []jsonHeader
		if err := json.Unmarshal(buf, &headers); err != nil {
			return nil, fmt.Errorf("parse headers file: %w", err)
		}
		ix := node.NewHeaderIndex()
		for _, h := range headers {
			bits, err := parseBits(h.Bits)
			if err != nil {
				return nil, fmt.Errorf("height %d: %w", h.Height, err)
			}
			rec := node.HeaderRecord{Height: h.Height, Time: h.Time, Bits: bits}
			if h.Hash != "" {
				hash, err := parseHash32(h.Hash)
				if err != nil {
					return nil, fmt.Errorf("height %d: %w", h.Height, err)
				}
				rec.Hash = hash
			}
			if err := ix.Append(rec); err != nil {
				return nil, err
			}
		}
		return ix, nil
	}

	if dataDir == "" {
		return nil, fmt.Errorf("one of -headers or -datadir is required")
	}
	d, err := store.Open(dataDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()
	return d.LoadIndex()
}

func networkParams(name string) (*consensus.Params, error) {
	return consensus.ParamsForNetwork(name)
}

func cmdNextBits(args []string) error {
	fs := flag.NewFlagSet("next-bits", flag.ExitOnError)
	network := fs.String("network", "mainnet", "network name (mainnet/testnet/regtest)")
	headersPath := fs.String("headers", "", "JSON headers file, ordered from genesis")
	dataDir := fs.String("datadir", "", "header store directory")
	candidateTime := fs.Int64("candidate-time", 0, "candidate block timestamp (default: tip time + spacing)")
	_ = fs.Parse(args)

	params, err := networkParams(*network)
	if err != nil {
		return err
	}
	ix, err := loadChain(*headersPath, *dataDir)
	if err != nil {
		return err
	}
	tip := ix.Tip()
	if tip == nil {
		return fmt.Errorf("empty header chain")
	}

	ts := *candidateTime
	if ts == 0 {
		ts = tip.BlockTime() + params.TargetSpacing
	}
	candidate := &consensus.BlockHeader{Timestamp: ts}
	bits := consensus.NextWorkRequired(tip, candidate, params)

	slog.Info("next work computed", "network", params.Name, "tip_height", tip.Height(), "candidate_time", ts)
	fmt.Printf("%08x\n", bits)
	return nil
}

func cmdCheckPow(args []string) error {
	fs := flag.NewFlagSet("check-pow", flag.ExitOnError)
	network := fs.String("network", "mainnet", "network name")
	hashHex := fs.String("hash", "", "block hash, 64 hex digits (big-endian magnitude)")
	bitsHex := fs.String("bits", "", "claimed compact bits, hex")
	_ = fs.Parse(args)

	params, err := networkParams(*network)
	if err != nil {
		return err
	}
	hash, err := parseHash32(*hashHex)
	if err != nil {
		return err
	}
	bits, err := parseBits(*bitsHex)
	if err != nil {
		return err
	}

	if !consensus.CheckProofOfWork(hash, bits, params.PowLimit) {
		fmt.Println("invalid")
		os.Exit(1)
	}
	fmt.Println("valid")
	return nil
}

func cmdVerifyChain(args []string) error {
	fs := flag.NewFlagSet("verify-chain", flag.ExitOnError)
	network := fs.String("network", "mainnet", "network name")
	headersPath := fs.String("headers", "", "JSON headers file, ordered from genesis")
	dataDir := fs.String("datadir", "", "header store directory")
	skipPow := fs.Bool("skip-pow", false, "only verify the difficulty schedule, not hashes")
	_ = fs.Parse(args)

	params, err := networkParams(*network)
	if err != nil {
		return err
	}
	ix, err := loadChain(*headersPath, *dataDir)
	if err != nil {
		return err
	}
	if ix.Len() == 0 {
		return fmt.Errorf("empty header chain")
	}

	bad := 0
	for h := int64(0); h < int64(ix.Len()); h++ {
		rec, _ := ix.Record(h)
		if h > 0 {
			candidate := &consensus.BlockHeader{Timestamp: rec.Time}
			expected := consensus.NextWorkRequired(ix.At(h-1), candidate, params)
			if rec.Bits != expected {
				slog.Error("bits mismatch", "height", h, "claimed", fmt.Sprintf("%08x", rec.Bits),
					"expected", fmt.Sprintf("%08x", expected))
				bad++
			}
		}
		if !*skipPow && !consensus.CheckProofOfWork(rec.Hash, rec.Bits, params.PowLimit) {
			slog.Error("proof of work invalid", "height", h, "bits", fmt.Sprintf("%08x", rec.Bits))
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d header(s) failed verification", bad)
	}

	slog.Info("chain verified", "network", params.Name, "headers", ix.Len(), "tip_work", ix.TipWork().String())
	fmt.Printf("ok: %d headers\n", ix.Len())
	return nil
}

func cmdDecodeBits(args []string) error {
	fs := flag.NewFlagSet("decode-bits", flag.ExitOnError)
	bitsHex := fs.String("bits", "", "compact bits, hex")
	_ = fs.Parse(args)

	bits, err := parseBits(*bitsHex)
	if err != nil {
		return err
	}
	target, negative, overflow := consensus.CompactToTarget(bits)
	fmt.Printf("target   %s\nnegative %v\noverflow %v\n", target, negative, overflow)
	return nil
}

func cmdEncodeTarget(args []string) error {
	fs := flag.NewFlagSet("encode-target", flag.ExitOnError)
	targetHex := fs.String("target", "", "target magnitude, up to 64 hex digits")
	_ = fs.Parse(args)

	s := strings.TrimPrefix(*targetHex, "0x")
	if s == "" || len(s) > 64 {
		return fmt.Errorf("bad target %q", *targetHex)
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("bad target %q: %w", *targetHex, err)
	}
	var full [32]byte
	copy(full[32-len(b):], b)

	fmt.Printf("%08x\n", consensus.TargetToCompact(consensus.Uint256FromBytes(full)))
	return nil
}
