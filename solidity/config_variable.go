// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/thor"
)

type ConfigVariable struct {
	slot        thor.Bytes32
	name        string
	value       uint32
	initialised bool
}

func NewConfigVariable(name string, defaultValue uint32) *ConfigVariable {
	return &ConfigVariable{
		slot:  thor.BytesToBytes32([]byte(name)),
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVariable) Get() uint32 {
	return c.value
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() thor.Bytes32 {
	return c.slot
}

// Override loads a non-zero value stored at the variable's slot, once.
func (c *ConfigVariable) Override(engine *Engine, ctx *Context) {
	if c.initialised { // early return to prevent subsequent reads
		return
	}
	// a context without a charger: overrides are not charged for
	raw, err := engine.Read(NewContext(ctx.caller, ctx.address, nil), uint256Type, c.slot)
	if err != nil {
		logger.Warn("failed to read config value", "slot", c.Name(), "error", err)
		return
	}
	num := codec.DecodeUint(raw)

	c.initialised = true

	if !num.IsZero() && num.IsUint64() && num.Uint64() <= uint64(^uint32(0)) {
		c.value = uint32(num.Uint64())
		logger.Debug("debug override found new config value", "slot", c.Name(), "value", c.Get())
	} else {
		logger.Debug("using default config value", "slot", c.Name(), "value", c.Get())
	}
}
