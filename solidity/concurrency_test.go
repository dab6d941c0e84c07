// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roy9527/tempo/co"
	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/locate"
	"github.com/roy9527/tempo/thor"
)

func TestConcurrentPackedWrites(t *testing.T) {
	// few stripes so that unrelated slots collide as well
	e, store := newEngine(t, WithLockStripes(3))
	ctx := NewContext(alice, contract, nil)

	const fields, rounds = 32, 200
	members := make([]layout.Field, fields)
	for i := range members {
		members[i] = layout.Member(fmt.Sprintf("f%d", i), layout.Uint(8))
	}
	desc := layout.Struct(members...)

	var g errgroup.Group
	for i := range fields {
		g.Go(func() error {
			for r := 1; r <= rounds; r++ {
				if err := e.Write(ctx, desc, slot(1), []byte{byte(r)}, Field(members[i].Name)); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var (
		readers co.Goes
		stop    atomic.Bool
		errs    atomic.Int64
	)
	readers.GoN(4, func(int) {
		for !stop.Load() {
			if _, err := e.Read(ctx, desc, slot(1)); err != nil {
				errs.Add(1)
			}
		}
	})

	require.NoError(t, g.Wait())
	stop.Store(true)
	readers.Wait()
	assert.Zero(t, errs.Load())

	final := rawSlot(t, store, slot(1))
	for i, b := range final {
		assert.Equal(t, byte(rounds), b, "byte %d", i)
	}
}

func TestConcurrentPush(t *testing.T) {
	e, store := newEngine(t, WithLockStripes(2))
	ctx := NewContext(alice, contract, nil)
	desc := layout.Slice(layout.Uint(32))

	const pushes = 400
	var failed atomic.Int64
	<-co.Parallel(func(queue chan<- func()) {
		for i := range pushes {
			queue <- func() {
				if err := e.Push(ctx, desc, slot(0), []byte{0, 0, byte(i >> 8), byte(i)}); err != nil {
					failed.Add(1)
				}
			}
		}
	})
	require.Zero(t, failed.Load())

	length, err := e.Length(ctx, desc, slot(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(pushes), length)

	seen := make(map[uint64]bool)
	for i := range uint64(pushes) {
		v, err := e.Read(ctx, desc, slot(0), Index(i))
		require.NoError(t, err)
		seen[uint64(v[2])<<8|uint64(v[3])] = true
	}
	assert.Len(t, seen, pushes, "every pushed value landed in its own element")

	data := locate.ArrayDataSlot(slot(0))
	assert.False(t, rawSlot(t, store, data).IsZero())
}

func TestConcurrentAdd(t *testing.T) {
	e, store := newEngine(t, WithLockStripes(2))
	ctx := NewContext(alice, contract, nil)

	const workers, rounds = 8, 300
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			u := NewUint256(e, ctx, slot(1))
			for range rounds {
				if err := u.Add(uint256.NewInt(1)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, slot(workers*rounds), rawSlot(t, store, slot(1)))
}

// hookGate allows everything and runs hook on the first write check.
type hookGate struct {
	gate.AllowAll
	hook func()
}

func (g *hookGate) Check(_, _ thor.Address, _ gate.SlotRange, kind gate.Kind) bool {
	if kind == gate.Write && g.hook != nil {
		hook := g.hook
		g.hook = nil
		hook()
	}
	return true
}

func TestWriteAfterConcurrentPop(t *testing.T) {
	g := &hookGate{}
	e, store := newEngine(t, WithGate(g))
	ctx := NewContext(alice, contract, nil)
	desc := layout.Slice(layout.Uint(256))
	data := locate.ArrayDataSlot(slot(0))

	require.NoError(t, e.Push(ctx, desc, slot(0), u256(7)))

	// the pop lands after the index was checked against length 1
	g.hook = func() { require.NoError(t, e.Pop(ctx, desc, slot(0))) }
	err := e.Write(ctx, desc, slot(0), u256(9), Index(0))
	assert.True(t, errors.Is(err, ErrIndexOutOfBounds))
	assert.True(t, rawSlot(t, store, slot(0)).IsZero())
	assert.True(t, rawSlot(t, store, data).IsZero(), "nothing written past the length")

	require.NoError(t, e.Push(ctx, desc, slot(0), u256(3)))
	require.NoError(t, e.Push(ctx, desc, slot(0), u256(4)))
	g.hook = func() { require.NoError(t, e.Pop(ctx, desc, slot(0))) }
	err = e.Update(ctx, desc, slot(0), func(b []byte) ([]byte, error) { return b, nil }, Index(1))
	assert.True(t, errors.Is(err, ErrIndexOutOfBounds))
}

func TestPushClearsStaleElement(t *testing.T) {
	e, store := newEngine(t)
	ctx := NewContext(alice, contract, nil)
	desc := layout.Slice(layout.Struct(
		layout.Member("a", layout.Uint(128)),
		layout.Member("b", layout.Uint(256)),
	))
	data := locate.ArrayDataSlot(slot(0))
	require.NoError(t, store.SetStorage(contract, data, slot(9)))
	require.NoError(t, store.SetStorage(contract, thor.AddSlot(data, 1), slot(9)))

	require.NoError(t, e.Push(ctx, desc, slot(0), nil))
	got, err := e.Read(ctx, desc, slot(0), Index(0))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 48), got)
	assert.True(t, rawSlot(t, store, data).IsZero())
	assert.True(t, rawSlot(t, store, thor.AddSlot(data, 1)).IsZero())
}

// lockCheckingProvider counts slot accesses made while no engine lock
// covers the slot.
type lockCheckingProvider struct {
	Provider
	locks    stripes
	unlocked atomic.Int64
}

func (p *lockCheckingProvider) guard(addr thor.Address, slot thor.Bytes32) {
	mu := &p.locks[p.locks.index(addr, slot)]
	if mu.TryLock() {
		mu.Unlock()
		p.unlocked.Add(1)
	}
}

func (p *lockCheckingProvider) GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error) {
	p.guard(addr, slot)
	return p.Provider.GetStorage(addr, slot)
}

func (p *lockCheckingProvider) SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error {
	p.guard(addr, slot)
	return p.Provider.SetStorage(addr, slot, value)
}

func TestSlotAccessUnderLock(t *testing.T) {
	_, store := newEngine(t)
	p := &lockCheckingProvider{Provider: store}
	e := NewEngine(p, WithLockStripes(4))
	p.locks = e.locks
	ctx := NewContext(alice, contract, nil)

	nested := layout.Slice(layout.Slice(layout.Uint(64)))
	require.NoError(t, e.Push(ctx, nested, slot(0), nil))
	require.NoError(t, e.Push(ctx, nested, slot(0), nil, Index(0)))
	require.NoError(t, e.Push(ctx, nested, slot(0), []byte{1}, Index(0)))
	require.NoError(t, e.Write(ctx, nested, slot(0), []byte{2}, Index(0), Index(1)))
	_, err := e.Read(ctx, nested, slot(0), Index(0), Index(1))
	require.NoError(t, err)
	_, err = e.Length(ctx, nested, slot(0), Index(0))
	require.NoError(t, err)
	require.NoError(t, e.Pop(ctx, nested, slot(0), Index(0)))
	require.NoError(t, e.Delete(ctx, nested, slot(0)))

	rec := layout.Struct(layout.Member("n", layout.Uint(32)), layout.Member("s", layout.String()))
	require.NoError(t, e.Write(ctx, rec, slot(1), []byte("short"), Field("s")))
	require.NoError(t, e.Update(ctx, rec, slot(1), func(b []byte) ([]byte, error) {
		return append(b, '!'), nil
	}, Field("s")))
	require.NoError(t, NewUint256(e, ctx, slot(9)).Add(uint256.NewInt(1)))
	require.NoError(t, e.Delete(ctx, rec, slot(1)))

	assert.Zero(t, p.unlocked.Load())
}
