package feehub

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/gagliardetto/solana-go"
)

// ErrAddressExhausted is returned when no bump in [0,255] yields an off-curve address.
var ErrAddressExhausted = errors.New("feehub: no viable bump seed for address")

// IndexSeed encodes a fee instruction index the way the program hashes it.
func IndexSeed(index uint64) []byte {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, index)
	return seed
}

// DeriveAddress walks bumps from 255 down and returns the first
// program-derived address for [tag, target, index LE, bump].
func DeriveAddress(tag []byte, programID, target solana.PublicKey, index uint64) (solana.PublicKey, uint8, error) {
	idx := IndexSeed(index)
	for bump := math.MaxUint8; bump >= 0; bump-- {
		seeds := [][]byte{tag, target[:], idx, {byte(bump)}}
		addr, err := solana.CreateProgramAddress(seeds, programID)
		if err != nil {
			// on-curve candidates are skipped
			continue
		}
		return addr, uint8(bump), nil
	}
	return solana.PublicKey{}, 0, ErrAddressExhausted
}

// DeriveConfigAddress locates the config record governing target's
// instruction at index.
func DeriveConfigAddress(programID, target solana.PublicKey, index uint64) (solana.PublicKey, uint8, error) {
	return DeriveAddress(ConfigTag, programID, target, index)
}
