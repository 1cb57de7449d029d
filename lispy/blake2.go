package lispy

import (
	"encoding/binary"

	"github.com/glycerine/blake2b"
)

// Blake2bSum256 returns the 32 byte BLAKE2b digest of raw.
//
// we're using the pure go: https://github.com/dchest/blake2b
func Blake2bSum256(raw []byte) []byte {
	return blake2bSum(raw, 32)
}

// Blake2bUint64 returns an 8 byte BLAKE2b hash of raw as a uint64.
func Blake2bUint64(raw []byte) uint64 {
	by := blake2bSum(raw, 8)
	return binary.LittleEndian.Uint64(by[:8])
}

func blake2bSum(raw []byte, size uint8) []byte {
	cfg := &blake2b.Config{Size: size}
	h, err := blake2b.New(cfg)
	if err != nil {
		// only reachable with an out of range Size
		panic(err)
	}
	h.Write(raw)
	return h.Sum(nil)
}
