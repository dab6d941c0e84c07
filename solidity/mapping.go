// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

// MapKey is a mapping key in its big-endian or content form.
type MapKey interface {
	Bytes() []byte
}

// Mapping is a mapping state variable. Values are read and written in the
// form Engine.Read returns for the value type.
type Mapping[K MapKey] struct {
	engine  *Engine
	ctx     *Context
	desc    *layout.Descriptor
	basePos thor.Bytes32
}

func NewMapping[K MapKey](engine *Engine, ctx *Context, pos thor.Bytes32, key, value *layout.Descriptor) *Mapping[K] {
	return &Mapping[K]{engine: engine, ctx: ctx, desc: layout.Map(key, value), basePos: pos}
}

func (m *Mapping[K]) Get(key K, path ...Selector) ([]byte, error) {
	return m.engine.Read(m.ctx, m.desc, m.basePos, m.path(key, path)...)
}

func (m *Mapping[K]) Set(key K, value []byte, path ...Selector) error {
	return m.engine.Write(m.ctx, m.desc, m.basePos, value, m.path(key, path)...)
}

func (m *Mapping[K]) Delete(key K, path ...Selector) error {
	return m.engine.Delete(m.ctx, m.desc, m.basePos, m.path(key, path)...)
}

func (m *Mapping[K]) path(key K, rest []Selector) []Selector {
	return append([]Selector{Key(key.Bytes())}, rest...)
}
