// Package keccak implements the legacy Keccak-256 hash used by Ethereum
// for function selectors, event topics, and addresses.
//
// This is the pre-standardization variant with 0x01 domain padding, not
// NIST SHA3-256 (0x06 padding). The two produce different digests for every
// input, so using the wrong one silently breaks every selector and topic
// comparison downstream.
package keccak

import (
	"encoding/binary"
	"math/bits"
)

// Size is the digest length in bytes.
const Size = 32

// rate is the sponge rate in bytes for a 256-bit digest (1600 - 2*256 bits).
const rate = 136

var roundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088, 0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// rho rotation offsets and pi lane order, in the order the combined
// rho-pi step walks the state.
var (
	rotations = [24]int{1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 2, 14, 27, 41, 56, 8, 25, 43, 62, 18, 39, 61, 20, 44}
	piOrder   = [24]int{10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4, 15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1}
)

// Sum256 returns the Keccak-256 digest of data. Any input is valid,
// including empty.
func Sum256(data []byte) [Size]byte {
	var state [25]uint64

	for len(data) >= rate {
		absorb(&state, data)
		permute(&state)
		data = data[rate:]
	}

	// Final block with multi-rate padding: 0x01, zero fill, high bit on the
	// last rate byte. When exactly one pad byte remains the two collapse
	// into a single 0x81.
	var block [rate]byte
	copy(block[:], data)
	block[len(data)] = 0x01
	block[rate-1] |= 0x80
	absorb(&state, block[:])
	permute(&state)

	var digest [Size]byte
	for i := 0; i < Size/8; i++ {
		binary.LittleEndian.PutUint64(digest[i*8:], state[i])
	}
	return digest
}

// absorb xors one rate-sized block into the state, little-endian per lane.
func absorb(state *[25]uint64, block []byte) {
	for i := 0; i < rate/8; i++ {
		state[i] ^= binary.LittleEndian.Uint64(block[i*8:])
	}
}

// permute applies the 24-round Keccak-f[1600] permutation.
func permute(state *[25]uint64) {
	var bc [5]uint64

	for round := 0; round < 24; round++ {
		// Theta
		for i := 0; i < 5; i++ {
			bc[i] = state[i] ^ state[i+5] ^ state[i+10] ^ state[i+15] ^ state[i+20]
		}
		for i := 0; i < 5; i++ {
			t := bc[(i+4)%5] ^ bits.RotateLeft64(bc[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				state[j+i] ^= t
			}
		}

		// Rho and Pi
		last := state[1]
		for i := 0; i < 24; i++ {
			j := piOrder[i]
			last, state[j] = state[j], bits.RotateLeft64(last, rotations[i])
		}

		// Chi
		for j := 0; j < 25; j += 5 {
			for i := 0; i < 5; i++ {
				bc[i] = state[j+i]
			}
			for i := 0; i < 5; i++ {
				state[j+i] ^= ^bc[(i+1)%5] & bc[(i+2)%5]
			}
		}

		// Iota
		state[0] ^= roundConstants[round]
	}
}
