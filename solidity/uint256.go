// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

var uint256Type = layout.Uint(256)

// Uint256 is a uint256 state variable occupying a whole slot. Contract code
// declaring a uint256 at the same slot sees the same value.
type Uint256 struct {
	engine *Engine
	ctx    *Context
	pos    thor.Bytes32
}

func NewUint256(engine *Engine, ctx *Context, pos thor.Bytes32) *Uint256 {
	return &Uint256{engine: engine, ctx: ctx, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	raw, err := u.engine.Read(u.ctx, uint256Type, u.pos)
	if err != nil {
		return nil, err
	}
	return codec.DecodeUint(raw), nil
}

func (u *Uint256) Set(value *uint256.Int) error {
	raw, err := codec.EncodeUint(value, thor.SlotSize)
	if err != nil {
		return err
	}
	return u.engine.Write(u.ctx, uint256Type, u.pos, raw)
}

// Add adds value, failing on overflow like checked contract arithmetic.
func (u *Uint256) Add(value *uint256.Int) error {
	return u.update(func(current *uint256.Int) error {
		if _, overflow := current.AddOverflow(current, value); overflow {
			return errors.New("uint256 overflow")
		}
		return nil
	})
}

// Sub subtracts value, failing on underflow.
func (u *Uint256) Sub(value *uint256.Int) error {
	return u.update(func(current *uint256.Int) error {
		if _, underflow := current.SubOverflow(current, value); underflow {
			return errors.New("uint256 underflow")
		}
		return nil
	})
}

func (u *Uint256) update(fn func(current *uint256.Int) error) error {
	return u.engine.Update(u.ctx, uint256Type, u.pos, func(raw []byte) ([]byte, error) {
		current := codec.DecodeUint(raw)
		if err := fn(current); err != nil {
			return nil, err
		}
		return codec.EncodeUint(current, thor.SlotSize)
	})
}
