// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solc

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/layout"
)

// Verify resolves the contract storage and compares every variable and
// struct member with the placement the compiler reported.
func (sl *StorageLayout) Verify() error {
	contract, err := sl.Contract()
	if err != nil {
		return err
	}
	root, err := layout.Resolve(contract, new(uint256.Int))
	if err != nil {
		return err
	}
	return sl.verify(sl.Storage, root, new(uint256.Int), "")
}

func (sl *StorageLayout) verify(entries []Entry, n *layout.Node, base *uint256.Int, prefix string) error {
	for i, e := range entries {
		child := n.Children[i]
		name := prefix + e.Label

		rel, err := uint256.FromDecimal(e.Slot)
		if err != nil {
			return errors.Wrapf(layout.ErrMalformed, "%s slot %q", name, e.Slot)
		}
		want := new(uint256.Int).Add(base, rel)
		if !want.Eq(child.Slot) || e.Offset != child.Offset {
			return errors.Errorf("%s: compiler placed at slot %s offset %d, resolved slot %s offset %d",
				name, want.Dec(), e.Offset, child.Slot.Dec(), child.Offset)
		}
		if t := sl.Types[e.Type]; len(t.Members) > 0 {
			if err := sl.verify(t.Members, child, want, name+"."); err != nil {
				return err
			}
		}
	}
	return nil
}
