// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auditdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/thor"
)

var (
	alice    = thor.MustParseAddress("0x000000000000000000000000000000000000a11c")
	bob      = thor.MustParseAddress("0x0000000000000000000000000000000000000b0b")
	contract = thor.MustParseAddress("0x00000000000000000000000000000000000c0de0")
)

func record(caller thor.Address, slot uint64, value byte) gate.Record {
	return gate.Record{
		Caller:   caller,
		Contract: contract,
		Slot:     thor.SlotFromUint64(slot),
		Offset:   1,
		Length:   2,
		New:      thor.BytesToBytes32([]byte{value}),
	}
}

func TestInsertAndFilter(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, record(alice, 1, 1), record(bob, 2, 2)))
	db.Audit(record(alice, 1, 3))

	all, err := db.Filter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(1), all[0].Seq)
	assert.Equal(t, record(alice, 1, 1), all[0].Record)

	slot := thor.SlotFromUint64(1)
	bySlot, err := db.Filter(ctx, &Filter{Contract: &contract, Slot: &slot, Order: DESC})
	require.NoError(t, err)
	require.Len(t, bySlot, 2)
	assert.Equal(t, record(alice, 1, 3), bySlot[0].Record)

	byCaller, err := db.Filter(ctx, &Filter{Caller: &bob})
	require.NoError(t, err)
	require.Len(t, byCaller, 1)
	assert.Equal(t, thor.SlotFromUint64(2), byCaller[0].Slot)

	page, err := db.Filter(ctx, &Filter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(2), page[0].Seq)

	tail, err := db.Filter(ctx, &Filter{Offset: 1})
	require.NoError(t, err)
	require.Len(t, tail, 2, "offset without a limit")
	assert.Equal(t, uint64(2), tail[0].Seq)
	assert.Equal(t, uint64(3), tail[1].Seq)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	db, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	db.Audit(record(alice, 7, 1))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	entries, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, record(alice, 7, 1), entries[0].Record)
}

func TestStatementReuse(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	for i := range 3 {
		require.NoError(t, db.Insert(ctx, record(alice, uint64(i), 1)))
		_, err := db.Filter(ctx, &Filter{Caller: &alice, Limit: 10})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, db.stmtCache.len(), "one insert and one filter shape")

	_, err = db.Filter(ctx, &Filter{Caller: &bob, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, db.stmtCache.len(), "arguments do not change the shape")
}
