// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/roy9527/tempo/thor"
)

type UseGasFunc func(gas uint64)

// Provider is the raw slot storage the engine reads and writes. SetStorage
// must apply a whole slot or nothing.
type Provider interface {
	GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error)
	SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error
}

// Context identifies who accesses the storage of which contract.
type Context struct {
	caller  thor.Address
	address thor.Address
	charger UseGasFunc
	static  bool
}

func NewContext(caller, address thor.Address, charger UseGasFunc) *Context {
	return &Context{
		caller:  caller,
		address: address,
		charger: charger,
	}
}

// Static returns a copy of the context in which every mutation fails with
// ErrWriteProtection.
func (c *Context) Static() *Context {
	cpy := *c
	cpy.static = true
	return &cpy
}

func (c *Context) IsStatic() bool {
	return c.static
}

func (c *Context) Caller() thor.Address {
	return c.caller
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}
