// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/roy9527/tempo/auditdb"
	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

// root of the contract storage
var root thor.Bytes32

func args(ctx *cli.Context, lo, hi int) error {
	if n := ctx.NArg(); n < lo || n > hi {
		return errors.Errorf("%s: expected %s", ctx.Command.Name, ctx.Command.ArgsUsage)
	}
	return nil
}

func layoutAction(ctx *cli.Context) error {
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()
	if s.layout == nil {
		return errors.Errorf("storage layout required, use -%s to specify", layoutFlag.Name)
	}

	contract, err := s.layout.Contract()
	if err != nil {
		return err
	}
	n, err := s.engine.Resolver().Resolve(contract, new(uint256.Int))
	if err != nil {
		return err
	}
	printNodes(n.Children, "")

	if err := s.layout.Verify(); err != nil {
		return err
	}
	fmt.Println("placements match the compiler layout")
	return nil
}

func printNodes(nodes []*layout.Node, prefix string) {
	for _, n := range nodes {
		fmt.Printf("%-24s %-40s slot=%-4s offset=%-2d length=%-2d slots=%d\n",
			prefix+n.Name, n.Type, n.Slot.Dec(), n.Offset, n.Length, n.Slots)
		if n.Kind == layout.KindStruct {
			printNodes(n.Children, prefix+n.Name+".")
		}
	}
}

func slotAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 1); err != nil {
		return err
	}
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()
	t, err := s.target(ctx.Args().First())
	if err != nil {
		return err
	}

	addr, err := s.engine.Locate(s.ctx, t.contract, root, t.path...)
	if err != nil {
		return err
	}
	fmt.Printf("contract=%s slot=%s offset=%d length=%d\n", addr.Contract, addr.Slot, addr.Offset, addr.Length)
	return nil
}

func readAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 1); err != nil {
		return err
	}
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()
	t, err := s.target(ctx.Args().First())
	if err != nil {
		return err
	}

	v, err := s.engine.Read(s.ctx, t.contract, root, t.path...)
	if err != nil {
		return err
	}
	fmt.Println(formatValue(t.typ, v))
	return nil
}

func writeAction(ctx *cli.Context) error {
	if err := args(ctx, 2, 2); err != nil {
		return err
	}
	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.close()
	t, err := s.target(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	value, err := parseValue(t.typ, ctx.Args().Get(1))
	if err != nil {
		return err
	}

	if err := s.engine.Write(s.ctx, t.contract, root, value, t.path...); err != nil {
		return err
	}
	return s.commit()
}

func lengthAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 1); err != nil {
		return err
	}
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()
	t, err := s.target(ctx.Args().First())
	if err != nil {
		return err
	}

	length, err := s.engine.Length(s.ctx, t.contract, root, t.path...)
	if err != nil {
		return err
	}
	fmt.Println(length)
	return nil
}

func pushAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 2); err != nil {
		return err
	}
	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.close()
	t, err := s.target(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	if t.typ.Kind != layout.KindDynamicArray {
		return errors.Errorf("push on %v", t.typ)
	}

	var value []byte
	if ctx.NArg() == 2 {
		if value, err = parseValue(t.typ.Elem, ctx.Args().Get(1)); err != nil {
			return err
		}
	}
	if err := s.engine.Push(s.ctx, t.contract, root, value, t.path...); err != nil {
		return err
	}
	return s.commit()
}

func popAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 1); err != nil {
		return err
	}
	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.close()
	t, err := s.target(ctx.Args().First())
	if err != nil {
		return err
	}

	if err := s.engine.Pop(s.ctx, t.contract, root, t.path...); err != nil {
		return err
	}
	return s.commit()
}

func deleteAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 1); err != nil {
		return err
	}
	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.close()
	t, err := s.target(ctx.Args().First())
	if err != nil {
		return err
	}

	if err := s.engine.Delete(s.ctx, t.contract, root, t.path...); err != nil {
		return err
	}
	return s.commit()
}

func dumpAction(ctx *cli.Context) error {
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()

	return s.store.ForEach(s.contract, func(slot, value thor.Bytes32) bool {
		fmt.Println(slot, value)
		return true
	})
}

func auditAction(ctx *cli.Context) error {
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()
	if s.audit == nil {
		return errors.Errorf("audit db not enabled, use -%s", auditFlag.Name)
	}

	filter := &auditdb.Filter{
		Contract: &s.contract,
		Order:    auditdb.DESC,
		Limit:    ctx.Uint64(limitFlag.Name),
	}
	if v := ctx.String(slotFilterFlag.Name); v != "" {
		slot, err := gate.ParseSlot(v)
		if err != nil {
			return errors.WithMessagef(err, "-%s", slotFilterFlag.Name)
		}
		filter.Slot = &slot
	}
	entries, err := s.audit.Filter(context.Background(), filter)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("#%d caller=%s slot=%s offset=%d length=%d old=%s new=%s\n",
			e.Seq, e.Caller, e.Slot, e.Offset, e.Length, e.Old, e.New)
	}
	return nil
}
