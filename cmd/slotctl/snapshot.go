// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/roy9527/tempo/slotdb"
	"github.com/roy9527/tempo/thor"
)

type snapshotEntry struct {
	Slot  thor.Bytes32 `json:"slot"`
	Value thor.Bytes32 `json:"value"`
}

// snapshot is the raw storage of one contract.
type snapshot struct {
	Contract thor.Address    `json:"contract"`
	Slots    []snapshotEntry `json:"slots"`
}

func takeSnapshot(store *slotdb.Store, contract thor.Address) (*snapshot, error) {
	snap := &snapshot{Contract: contract}
	err := store.ForEach(contract, func(slot, value thor.Bytes32) bool {
		snap.Slots = append(snap.Slots, snapshotEntry{slot, value})
		return true
	})
	return snap, err
}

const restoreBatchSize = 1024

// restoreSnapshot writes the slots of snap as they are, without going
// through the gate, in atomic batches. progress is called with the number
// of slots written by each batch.
func restoreSnapshot(store *slotdb.Store, snap *snapshot, progress func(n int)) error {
	for entries := snap.Slots; len(entries) > 0; {
		n := min(len(entries), restoreBatchSize)
		changes := make([]slotdb.Change, n)
		for i, e := range entries[:n] {
			changes[i] = slotdb.Change{Addr: snap.Contract, Slot: e.Slot, Value: e.Value}
		}
		if err := store.Apply(changes); err != nil {
			return err
		}
		if progress != nil {
			progress(n)
		}
		entries = entries[n:]
	}
	return nil
}

func exportAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 1); err != nil {
		return err
	}
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()

	snap, err := takeSnapshot(s.store, s.contract)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(ctx.Args().First(), data, 0600); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	fmt.Printf("exported %d slots\n", len(snap.Slots))
	return nil
}

func importAction(ctx *cli.Context) error {
	if err := args(ctx, 1, 1); err != nil {
		return err
	}
	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.close()

	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return errors.Wrap(err, "read snapshot")
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.Wrap(err, "decode snapshot")
	}

	fmt.Println(">> Importing slots <<")
	bar := pb.New64(int64(len(snap.Slots))).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	if err := restoreSnapshot(s.store, &snap, func(n int) { bar.Add(n) }); err != nil {
		return err
	}
	bar.Finish()
	return nil
}
