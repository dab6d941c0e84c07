// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

var bytes32Type = layout.FixedBytes(32)

type Bytes32 struct {
	engine *Engine
	ctx    *Context
	pos    thor.Bytes32
}

func NewBytes32(engine *Engine, ctx *Context, pos thor.Bytes32) *Bytes32 {
	return &Bytes32{engine: engine, ctx: ctx, pos: pos}
}

func (b *Bytes32) Get() (thor.Bytes32, error) {
	raw, err := b.engine.Read(b.ctx, bytes32Type, b.pos)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.BytesToBytes32(raw), nil
}

func (b *Bytes32) Set(value thor.Bytes32) error {
	return b.engine.Write(b.ctx, bytes32Type, b.pos, value.Bytes())
}
