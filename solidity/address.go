// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

var addressType = layout.Address()

// Address is an address state variable at the low-order end of its slot.
type Address struct {
	engine *Engine
	ctx    *Context
	pos    thor.Bytes32
}

func NewAddress(engine *Engine, ctx *Context, pos thor.Bytes32) *Address {
	return &Address{engine: engine, ctx: ctx, pos: pos}
}

func (a *Address) Get() (thor.Address, error) {
	raw, err := a.engine.Read(a.ctx, addressType, a.pos)
	if err != nil {
		return thor.Address{}, err
	}
	return codec.DecodeAddress(raw), nil
}

// Set stores addr, or the zero address when addr is nil.
func (a *Address) Set(addr *thor.Address) error {
	var value thor.Address
	if addr != nil {
		value = *addr
	}
	return a.engine.Write(a.ctx, addressType, a.pos, codec.EncodeAddress(value))
}
