// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slotdb provides raw 32-byte slot storage for contracts.
package slotdb

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/kv"
	"github.com/roy9527/tempo/lvldb"
	"github.com/roy9527/tempo/thor"
)

// Source is the raw slot access shared by every store in this package.
type Source interface {
	GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error)
	SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error
}

// Change is one slot write.
type Change struct {
	Addr  thor.Address
	Slot  thor.Bytes32
	Value thor.Bytes32
}

// Batcher is a Source that can apply many writes atomically.
type Batcher interface {
	Source
	Apply(changes []Change) error
}

// apply writes changes to src, atomically if src is a Batcher.
func apply(src Source, changes []Change) error {
	if b, ok := src.(Batcher); ok {
		return b.Apply(changes)
	}
	for _, c := range changes {
		if err := src.SetStorage(c.Addr, c.Slot, c.Value); err != nil {
			return err
		}
	}
	return nil
}

const slotBucket = kv.Bucket("s")

// Store keeps slots in a kv store under addr . slot. Values are rlp
// encoded with leading zeros trimmed; zero slots are not stored.
type Store struct {
	db  kv.Store
	stg kv.GetPutter
}

var _ Batcher = (*Store)(nil)

// New creates a store on top of db.
func New(db kv.Store) *Store {
	return &Store{db: db, stg: slotBucket.NewGetPutter(db)}
}

// NewMem creates a store backed by an in-memory level db.
func NewMem() (*Store, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// Open opens or creates a persistent store at path. Writes are synced to
// disk.
func Open(path string) (*Store, error) {
	db, err := lvldb.New(path, lvldb.Options{Sync: true})
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// OpenReadOnly opens an existing store at path for reading.
func OpenReadOnly(path string) (*Store, error) {
	db, err := lvldb.New(path, lvldb.Options{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func storageKey(addr thor.Address, slot thor.Bytes32) []byte {
	key := make([]byte, 0, len(addr)+len(slot))
	return append(append(key, addr[:]...), slot[:]...)
}

func encodeValue(v thor.Bytes32) ([]byte, error) {
	return rlp.EncodeToBytes(bytes.TrimLeft(v[:], "\x00"))
}

func decodeValue(data []byte) (thor.Bytes32, error) {
	var content []byte
	if err := rlp.DecodeBytes(data, &content); err != nil {
		return thor.Bytes32{}, err
	}
	if len(content) > thor.SlotSize {
		return thor.Bytes32{}, errors.Errorf("slot value of %d bytes", len(content))
	}
	return thor.BytesToBytes32(content), nil
}

// GetStorage returns the slot value, zero if never written.
func (s *Store) GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error) {
	data, err := s.stg.Get(storageKey(addr, slot))
	if err != nil {
		if s.stg.IsNotFound(err) {
			return thor.Bytes32{}, nil
		}
		return thor.Bytes32{}, errors.Wrap(err, "get storage")
	}
	v, err := decodeValue(data)
	if err != nil {
		return thor.Bytes32{}, errors.Wrapf(err, "decode storage %v/%v", addr, slot)
	}
	return v, nil
}

// SetStorage stores the slot value. Storing zero deletes the slot.
func (s *Store) SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error {
	return put(s.stg, addr, slot, value)
}

// Apply writes all changes in one batch.
func (s *Store) Apply(changes []Change) error {
	batch := s.db.NewBatch()
	putter := slotBucket.NewPutter(batch)
	for _, c := range changes {
		if err := put(putter, c.Addr, c.Slot, c.Value); err != nil {
			return err
		}
	}
	return errors.Wrap(batch.Write(), "write storage batch")
}

func put(p kv.Putter, addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error {
	key := storageKey(addr, slot)
	if value.IsZero() {
		return errors.Wrap(p.Delete(key), "delete storage")
	}
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	return errors.Wrap(p.Put(key, data), "put storage")
}

// ForEach calls fn for every non-zero slot of addr in slot order.
// Iteration stops when fn returns false.
func (s *Store) ForEach(addr thor.Address, fn func(slot, value thor.Bytes32) bool) error {
	it := s.db.NewIterator(slotBucket.Range(addr[:]))
	defer it.Release()

	prefix := len(slotBucket) + len(addr)
	for it.Next() {
		v, err := decodeValue(it.Value())
		if err != nil {
			return errors.Wrap(err, "decode storage")
		}
		if !fn(thor.BytesToBytes32(it.Key()[prefix:]), v) {
			break
		}
	}
	return it.Error()
}

// Close closes the underlying db if it can be closed.
func (s *Store) Close() error {
	if c, ok := s.db.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
