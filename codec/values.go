// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package codec

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/thor"
)

// EncodeUint returns v as a length-byte big-endian field value.
func EncodeUint(v *uint256.Int, length uint8) ([]byte, error) {
	if v.BitLen() > int(length)*8 {
		return nil, errors.Wrapf(ErrValueTooWide, "%s into uint%d", v.Dec(), int(length)*8)
	}
	b := v.Bytes32()
	return b[thor.SlotSize-int(length):], nil
}

// DecodeUint interprets a field value as an unsigned integer.
func DecodeUint(b []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(b)
}

// EncodeInt returns v in two's complement as a length-byte field value.
func EncodeInt(v *big.Int, length uint8) ([]byte, error) {
	bits := uint(length) * 8
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if v.Cmp(limit) >= 0 || v.Cmp(new(big.Int).Neg(limit)) < 0 {
		return nil, errors.Wrapf(ErrValueTooWide, "%s into int%d", v, bits)
	}
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), bits))
	}
	return u.FillBytes(make([]byte, length)), nil
}

// DecodeInt interprets a field value as a two's complement signed integer.
func DecodeInt(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8))
	}
	return v
}

// EncodeBool returns the one-byte field value of a bool.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// DecodeBool interprets a field value as a bool; any non-zero value is true.
func DecodeBool(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return true
		}
	}
	return false
}

// EncodeAddress returns the 20-byte field value of an address.
func EncodeAddress(addr thor.Address) []byte {
	return addr.Bytes()
}

// DecodeAddress interprets a field value as an address.
func DecodeAddress(b []byte) thor.Address {
	return thor.BytesToAddress(b)
}
