// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity reads and writes Solidity storage variables from native
// code, using the same slot layout as the compiler so that contract code and
// native code can share state.
package solidity

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/locate"
	"github.com/roy9527/tempo/metrics"
	"github.com/roy9527/tempo/thor"
)

var (
	logger = log.New("pkg", "solidity")

	metricOps   = metrics.LazyLoadCounterVec("storage_ops_count", []string{"op", "result"})
	metricSlots = metrics.LazyLoadHistogramVec("storage_op_slots", []string{"op"}, metrics.BucketSlots)
)

var (
	// ErrPermissionDenied is returned when the gate rejects an access.
	ErrPermissionDenied = errors.New("solidity: permission denied")
	// ErrIndexOutOfBounds is returned for array indexes beyond the length.
	ErrIndexOutOfBounds = errors.New("solidity: index out of bounds")
	// ErrPath is returned when an access path does not match the type.
	ErrPath = errors.New("solidity: invalid access path")
	// ErrWriteProtection is returned for mutations from a static context.
	ErrWriteProtection = errors.New("solidity: write protection")
	// ErrTooLarge is returned for accesses spanning more slots than the
	// engine's limit.
	ErrTooLarge = errors.New("solidity: access too large")
)

// DefaultMaxSlots is the default limit on the slots one call may span.
const DefaultMaxSlots = 1 << 16

// GasSchedule prices slot accesses.
type GasSchedule struct {
	Load       uint64 // per slot read
	StoreSet   uint64 // per slot written from zero to non-zero
	StoreReset uint64 // per other slot written
}

var (
	// PersistentGas prices contract storage (SLOAD/SSTORE).
	PersistentGas = GasSchedule{thor.SloadGas, thor.SstoreSetGas, thor.SstoreResetGas}
	// TransientGas prices transient storage (TLOAD/TSTORE).
	TransientGas = GasSchedule{thor.TransientGas, thor.TransientGas, thor.TransientGas}
)

// Option configures an Engine.
type Option func(*Engine)

// WithResolver shares a layout resolver between engines.
func WithResolver(r *layout.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithGate sets the permission gate. By default everything is allowed.
func WithGate(g gate.Gate) Option {
	return func(e *Engine) { e.gate = g }
}

// WithLockStripes sets the number of slot locks.
func WithLockStripes(n int) Option {
	return func(e *Engine) { e.locks = newStripes(n) }
}

// WithGasSchedule sets the gas charged per slot access. The default is
// PersistentGas.
func WithGasSchedule(g GasSchedule) Option {
	return func(e *Engine) { e.gas = g }
}

// WithMaxSlots limits the slots a single aggregate read, write or delete may
// span. Zero keeps DefaultMaxSlots.
func WithMaxSlots(n uint64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSlots = n
		}
	}
}

// Engine performs typed reads and writes of storage variables against a
// Provider. It is safe for concurrent use; accesses touching the same slot
// are serialized.
type Engine struct {
	provider Provider
	resolver *layout.Resolver
	gate     gate.Gate
	locks    stripes
	gas      GasSchedule
	maxSlots uint64
}

func NewEngine(provider Provider, opts ...Option) *Engine {
	e := &Engine{provider: provider, gas: PersistentGas, maxSlots: DefaultMaxSlots}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = layout.NewResolver(0)
	}
	if e.gate == nil {
		e.gate = &gate.AllowAll{}
	}
	if e.locks == nil {
		e.locks = newStripes(DefaultLockStripes)
	}
	return e
}

// Read returns the value at path below the variable of type desc rooted at
// base. Primitives are returned in their field width, bytes and strings as
// their content, and structs and static arrays as the concatenation of their
// statically sized primitive leaves.
func (e *Engine) Read(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, path ...Selector) (value []byte, err error) {
	o := e.begin(ctx, "read")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Read)
	if err != nil {
		return nil, err
	}
	return o.read(n)
}

// Write stores value at path. Values take the same shape Read returns.
func (e *Engine) Write(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, value []byte, path ...Selector) (err error) {
	o := e.begin(ctx, "write")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Write)
	if err != nil {
		return err
	}
	if value, err = o.validate(n, value); err != nil {
		return err
	}
	return o.exclusive(
		func(fp *footprint) error { return o.valueSlots(fp, n) },
		func() error { return o.write(n, value) },
	)
}

// Update replaces the value at path with fn applied to the current one. The
// slots stay locked from the read to the write, so concurrent updates are not
// lost. fn gets the value in the shape Read returns and gives back one Write
// accepts; an error from fn aborts the update.
func (e *Engine) Update(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, fn func([]byte) ([]byte, error), path ...Selector) (err error) {
	o := e.begin(ctx, "update")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Write)
	if err != nil {
		return err
	}
	if err := o.check(n, gate.Read); err != nil {
		return err
	}
	if err := o.bounded(n); err != nil {
		return err
	}
	return o.exclusive(
		func(fp *footprint) error { return o.valueSlots(fp, n) },
		func() error {
			old, err := o.read(n)
			if err != nil {
				return err
			}
			value, err := fn(old)
			if err != nil {
				return err
			}
			if value, err = o.validate(n, value); err != nil {
				return err
			}
			return o.write(n, value)
		},
	)
}

// Locate returns the runtime address of the value at path: its slot,
// in-slot offset and length. Dynamic array indices are bounds checked
// against the stored length.
func (e *Engine) Locate(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, path ...Selector) (addr locate.SlotAddress, err error) {
	o := e.begin(ctx, "locate")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Read)
	if err != nil {
		return locate.SlotAddress{}, err
	}
	return locate.At(ctx.address, n), nil
}

// Length returns the length of a dynamic array, or of a bytes or string
// value, at path.
func (e *Engine) Length(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, path ...Selector) (length uint64, err error) {
	o := e.begin(ctx, "length")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Read)
	if err != nil {
		return 0, err
	}
	switch n.Kind {
	case layout.KindDynamicArray:
		return o.arrayLength(n)
	case layout.KindBytes:
		h, err := o.bytesHeader(n)
		return h.Length, err
	}
	return 0, errors.Wrapf(ErrPath, "%v has no length", n.Type)
}

// Push appends value to the dynamic array at path. A nil value appends the
// zero element, clearing whatever its slots held.
func (e *Engine) Push(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, value []byte, path ...Selector) (err error) {
	o := e.begin(ctx, "push")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Write)
	if err != nil {
		return err
	}
	if n.Kind != layout.KindDynamicArray {
		return errors.Wrapf(ErrPath, "push on %v", n.Type)
	}
	if value != nil {
		if value, err = o.validate(n.Elem, value); err != nil {
			return err
		}
	}
	root := thor.Uint256ToBytes32(n.Slot)
	return o.exclusive(
		func(fp *footprint) error {
			length, ok, err := o.plannedLength(fp, root)
			if !ok {
				return err
			}
			if value == nil {
				return o.clearSlots(fp, elementAt(n, length))
			}
			return o.valueSlots(fp, elementAt(n, length))
		},
		func() error {
			length, err := o.lengthAt(root)
			if err != nil {
				return err
			}
			if length == ^uint64(0) {
				return errors.Wrapf(ErrIndexOutOfBounds, "push on full %v", n.Type)
			}
			if err := o.put(root, 0, thor.SlotSize, thor.SlotFromUint64(length+1).Bytes(), true); err != nil {
				return err
			}
			if value == nil {
				return o.clear(elementAt(n, length))
			}
			return o.write(elementAt(n, length), value)
		},
	)
}

// Pop removes the last element of the dynamic array at path and zeroes its
// slots.
func (e *Engine) Pop(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, path ...Selector) (err error) {
	o := e.begin(ctx, "pop")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Write)
	if err != nil {
		return err
	}
	if n.Kind != layout.KindDynamicArray {
		return errors.Wrapf(ErrPath, "pop on %v", n.Type)
	}
	root := thor.Uint256ToBytes32(n.Slot)
	return o.exclusive(
		func(fp *footprint) error {
			length, ok, err := o.plannedLength(fp, root)
			if !ok || length == 0 {
				return err
			}
			return o.clearSlots(fp, elementAt(n, length-1))
		},
		func() error {
			length, err := o.lengthAt(root)
			if err != nil {
				return err
			}
			if length == 0 {
				return errors.Wrapf(ErrIndexOutOfBounds, "pop on empty %v", n.Type)
			}
			if err := o.clear(elementAt(n, length-1)); err != nil {
				return err
			}
			return o.put(root, 0, thor.SlotSize, thor.SlotFromUint64(length-1).Bytes(), true)
		},
	)
}

// Delete resets the value at path to its zero value, like the delete
// statement. Mappings cannot be deleted.
func (e *Engine) Delete(ctx *Context, desc *layout.Descriptor, base thor.Bytes32, path ...Selector) (err error) {
	o := e.begin(ctx, "delete")
	defer func() { o.end(err) }()

	n, err := o.target(desc, base, path, gate.Write)
	if err != nil {
		return err
	}
	if n.Kind == layout.KindMapping {
		return errors.Wrapf(ErrPath, "delete on %v", n.Type)
	}
	return o.exclusive(
		func(fp *footprint) error { return o.clearSlots(fp, n) },
		func() error { return o.clear(n) },
	)
}

// Resolver returns the layout resolver used by the engine.
func (e *Engine) Resolver() *layout.Resolver {
	return e.resolver
}
