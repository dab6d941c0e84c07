// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"github.com/holiman/uint256"
)

// Uint256ToBytes32 converts an integer into its 32-byte big-endian form.
func Uint256ToBytes32(v *uint256.Int) Bytes32 {
	return Bytes32(v.Bytes32())
}

// SlotFromUint64 returns the slot key for a small slot number.
func SlotFromUint64(n uint64) Bytes32 {
	return Uint256ToBytes32(uint256.NewInt(n))
}

// AddSlot returns b+n wrapping at 2^256, which is how the EVM addresses
// consecutive slots after a hashed base.
func AddSlot(b Bytes32, n uint64) Bytes32 {
	v := b.Uint256()
	return Uint256ToBytes32(v.Add(v, uint256.NewInt(n)))
}
