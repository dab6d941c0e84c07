// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"sync"

	"golang.org/x/crypto/sha3"
)

// hasher is a legacy keccak state. Read squeezes the digest without the
// copy Sum makes, but leaves the state unusable until Reset.
type hasher interface {
	hash.Hash
	Read([]byte) (int, error)
}

var hasherPool = sync.Pool{
	New: func() any { return sha3.NewLegacyKeccak256() },
}

func digest(write func(h hasher)) (out Bytes32) {
	h := hasherPool.Get().(hasher)
	write(h)
	h.Read(out[:])
	h.Reset()
	hasherPool.Put(h)
	return
}

// Keccak256 computes the legacy keccak-256 digest of the concatenated data.
func Keccak256(data ...[]byte) Bytes32 {
	return digest(func(h hasher) {
		for _, b := range data {
			h.Write(b)
		}
	})
}

// SlotHash returns keccak256(key . slot), the location of a mapping value
// keyed by the encoded key below slot.
func SlotHash(key []byte, slot Bytes32) Bytes32 {
	return digest(func(h hasher) {
		h.Write(key)
		h.Write(slot[:])
	})
}
