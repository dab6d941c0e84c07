// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy9527/tempo/gascharger"
	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/locate"
	"github.com/roy9527/tempo/thor"
)

type countingProvider struct {
	Provider
	sets atomic.Int64
}

func (p *countingProvider) SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error {
	p.sets.Add(1)
	return p.Provider.SetStorage(addr, slot, value)
}

func TestPermissionDenied(t *testing.T) {
	_, store := newEngine(t)
	provider := &countingProvider{Provider: store}
	sink := &gate.MemorySink{}
	policy := &gate.Policy{
		Table: gate.NewTable(gate.Rule{
			Caller:   &alice,
			Contract: contract,
			Slots:    gate.SlotRange{To: slot(9)},
			Read:     true,
			Write:    true,
		}),
		Sink: sink,
	}
	e := NewEngine(provider, WithGate(policy))
	desc := layout.Uint(256)

	err := e.Write(NewContext(bob, contract, nil), desc, slot(0), []byte{1})
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	err = e.Write(NewContext(alice, contract, nil), desc, slot(10), []byte{1})
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	err = e.Write(NewContext(alice, bob, nil), desc, slot(0), []byte{1})
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	assert.Zero(t, provider.sets.Load(), "denied writes never reach the provider")
	assert.Empty(t, sink.Records(), "denied writes are not audited")

	// a struct is checked over all of its slots
	wide := layout.Struct(layout.Member("a", layout.Uint(256)), layout.Member("b", layout.Uint(256)))
	err = e.Write(NewContext(alice, contract, nil), wide, slot(9), make([]byte, 64))
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	_, err = e.Read(NewContext(bob, contract, nil), desc, slot(0))
	assert.NoError(t, err, "reads are not checked by default")
	policy.CheckReads = true
	_, err = e.Read(NewContext(bob, contract, nil), desc, slot(0))
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	require.NoError(t, e.Write(NewContext(alice, contract, nil), desc, slot(3), []byte{7}))
	assert.Equal(t, int64(1), provider.sets.Load())
	assert.Len(t, sink.Records(), 1)
}

func TestAuditRecords(t *testing.T) {
	sink := &gate.MemorySink{}
	e, _ := newEngine(t, WithGate(&gate.AllowAll{Sink: sink}))
	ctx := NewContext(alice, contract, nil)
	desc := layout.Struct(layout.Member("a", layout.Uint(8)), layout.Member("b", layout.Uint(16)))

	require.NoError(t, e.Write(ctx, desc, slot(2), []byte{0xaa}, Field("a")))
	require.NoError(t, e.Write(ctx, desc, slot(2), []byte{0xbb, 0xcc}, Field("b")))

	assert.Equal(t, []gate.Record{
		{Caller: alice, Contract: contract, Slot: slot(2), Offset: 0, Length: 1, New: word("0xaa")},
		{Caller: alice, Contract: contract, Slot: slot(2), Offset: 1, Length: 2, Old: word("0xaa"), New: word("0xbbccaa")},
	}, sink.Records())

	// deleting an already zero value writes nothing
	require.NoError(t, e.Delete(ctx, layout.Uint(256), slot(30)))
	assert.Len(t, sink.Records(), 2)
}

func TestGas(t *testing.T) {
	e, _ := newEngine(t)
	charger := gascharger.New(0)
	ctx := NewContext(alice, contract, charger.Charge)

	require.NoError(t, e.Write(ctx, layout.Uint(256), slot(0), []byte{1}))
	assert.Equal(t, thor.SloadGas+thor.SstoreSetGas, charger.TotalGas())

	require.NoError(t, e.Write(ctx, layout.Uint(256), slot(0), []byte{2}))
	assert.Equal(t, 2*thor.SloadGas+thor.SstoreSetGas+thor.SstoreResetGas, charger.TotalGas())

	_, err := e.Read(ctx, layout.Uint(256), slot(0))
	require.NoError(t, err)
	assert.Equal(t, 3*thor.SloadGas+thor.SstoreSetGas+thor.SstoreResetGas, charger.TotalGas())

	// a 40 byte string: root read, two data slots and the root written
	charger = gascharger.New(0)
	ctx = NewContext(alice, contract, charger.Charge)
	require.NoError(t, e.Write(ctx, layout.String(), slot(1), bytes.Repeat([]byte("x"), 40)))
	assert.Equal(t, 3*thor.SloadGas+3*thor.SstoreSetGas, charger.TotalGas())
	assert.Equal(t,
		"SLOAD: 3 ops (600 gas) | SSTORE_SET: 3 ops (60000 gas) | SSTORE_RESET: 0 ops (0 gas) | TRANSIENT: 0 ops (0 gas) | CUSTOM: 0 gas | TOTAL: 60600 gas",
		charger.Breakdown())
}

func TestBytesBoundary(t *testing.T) {
	e, store := newEngine(t)
	ctx := NewContext(alice, contract, nil)
	desc := layout.DynamicBytes()

	short := []byte("0123456789012345678901234567890")
	long := []byte("01234567890123456789012345678901")
	require.Len(t, short, 31)
	require.Len(t, long, 32)

	require.NoError(t, e.Write(ctx, desc, slot(2), short))
	root := rawSlot(t, store, slot(2))
	assert.Equal(t, short, root[:31])
	assert.Equal(t, byte(62), root[31])
	got, err := e.Read(ctx, desc, slot(2))
	require.NoError(t, err)
	assert.Equal(t, short, got)

	require.NoError(t, e.Write(ctx, desc, slot(2), long))
	assert.Equal(t, slot(65), rawSlot(t, store, slot(2)))
	data := locate.ArrayDataSlot(slot(2))
	assert.Equal(t, thor.BytesToBytes32(long), rawSlot(t, store, data))
	got, err = e.Read(ctx, desc, slot(2))
	require.NoError(t, err)
	assert.Equal(t, long, got)
	n, err := e.Length(ctx, desc, slot(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(32), n)

	// back to inline: the data slot is released
	require.NoError(t, e.Write(ctx, desc, slot(2), []byte("abc")))
	assert.True(t, rawSlot(t, store, data).IsZero())
	got, err = e.Read(ctx, desc, slot(2))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	// shrinking a long value clears the tail only
	require.NoError(t, e.Write(ctx, desc, slot(2), make([]byte, 100)))
	hundred := []byte{}
	for i := range 100 {
		hundred = append(hundred, byte(i+1))
	}
	require.NoError(t, e.Write(ctx, desc, slot(2), hundred))
	require.NoError(t, e.Write(ctx, desc, slot(2), hundred[:33]))
	assert.False(t, rawSlot(t, store, thor.AddSlot(data, 1)).IsZero())
	assert.True(t, rawSlot(t, store, thor.AddSlot(data, 2)).IsZero())
	assert.True(t, rawSlot(t, store, thor.AddSlot(data, 3)).IsZero())
	got, err = e.Read(ctx, desc, slot(2))
	require.NoError(t, err)
	assert.Equal(t, hundred[:33], got)
}

func TestCorruptBytes(t *testing.T) {
	e, store := newEngine(t)
	ctx := NewContext(alice, contract, nil)

	// inline form claiming 40 bytes
	require.NoError(t, store.SetStorage(contract, slot(0), slot(80)))
	_, err := e.Read(ctx, layout.String(), slot(0))
	assert.True(t, errors.Is(err, locate.ErrCorruptBytes))
	err = e.Write(ctx, layout.String(), slot(0), []byte("x"))
	assert.True(t, errors.Is(err, locate.ErrCorruptBytes))
}

func TestArrayLengthReadChecked(t *testing.T) {
	policy := &gate.Policy{
		Table: gate.NewTable(gate.Rule{
			Caller:   &alice,
			Contract: contract,
			Slots:    gate.AllSlots,
			Read:     true,
			Write:    true,
		}),
		CheckReads: true,
	}
	e, _ := newEngine(t, WithGate(policy))
	desc := layout.Slice(layout.Uint(256))
	require.NoError(t, e.Push(NewContext(alice, contract, nil), desc, slot(0), u256(1)))

	charger := gascharger.New(0)
	ctx := NewContext(bob, contract, charger.Charge)
	_, err := e.Read(ctx, desc, slot(0), Index(0))
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	err = e.Write(ctx, desc, slot(0), u256(2), Index(0))
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Zero(t, charger.TotalGas(), "the length slot is not read for a denied caller")
}

func TestConfigVariableGated(t *testing.T) {
	policy := &gate.Policy{
		Table: gate.NewTable(gate.Rule{
			Caller:   &alice,
			Contract: contract,
			Slots:    gate.AllSlots,
			Read:     true,
		}),
		CheckReads: true,
	}
	e, store := newEngine(t, WithGate(policy))
	config := NewConfigVariable("limit", 10)
	require.NoError(t, store.SetStorage(contract, config.Slot(), slot(25)))

	config.Override(e, NewContext(bob, contract, nil))
	assert.Equal(t, uint32(10), config.Get(), "denied read keeps the default")

	charger := gascharger.New(0)
	config.Override(e, NewContext(alice, contract, charger.Charge))
	assert.Equal(t, uint32(25), config.Get())
	assert.Zero(t, charger.TotalGas(), "overrides are free")
}
