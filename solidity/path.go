// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/thor"
)

type selectorKind uint8

const (
	selectField selectorKind = iota
	selectIndex
	selectKey
)

// Selector is one step of an access path: a struct field, an array index or
// a mapping key.
type Selector struct {
	kind  selectorKind
	name  string
	index uint64
	key   []byte
	err   error
}

// Field selects a struct member.
func Field(name string) Selector {
	return Selector{kind: selectField, name: name}
}

// Index selects an element of a static or dynamic array.
func Index(i uint64) Selector {
	return Selector{kind: selectIndex, index: i}
}

// Key selects a mapping value. raw is big-endian for value types and the
// content for bytes and string keys.
func Key(raw []byte) Selector {
	return Selector{kind: selectKey, key: append([]byte(nil), raw...)}
}

func KeyUint(v *uint256.Int) Selector {
	b := v.Bytes32()
	return Key(b[:])
}

// KeyInt selects by a signed integer key.
func KeyInt(v *big.Int) Selector {
	b, err := codec.EncodeInt(v, thor.SlotSize)
	if err != nil {
		return Selector{kind: selectKey, err: err}
	}
	return Key(b)
}

func KeyAddress(addr thor.Address) Selector {
	return Key(addr.Bytes())
}

func KeyString(s string) Selector {
	return Key([]byte(s))
}

func KeyBytes32(b thor.Bytes32) Selector {
	return Key(b.Bytes())
}

func (s Selector) String() string {
	switch s.kind {
	case selectField:
		return "." + s.name
	case selectIndex:
		return fmt.Sprintf("[%d]", s.index)
	}
	return "[" + hexutil.Encode(s.key) + "]"
}
