// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gate decides which caller may touch which storage slots and
// records every permitted mutation.
package gate

import (
	"bytes"

	"github.com/ethereum/go-ethereum/log"

	"github.com/roy9527/tempo/metrics"
	"github.com/roy9527/tempo/thor"
)

var (
	logger = log.New("pkg", "gate")

	metricDenied = metrics.LazyLoadCounterVec("gate_denied_count", []string{"kind"})
)

// Kind is the kind of storage access being checked.
type Kind uint8

const (
	Read Kind = iota
	Write
)

func (k Kind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// SlotRange is an inclusive range of slot numbers.
type SlotRange struct {
	From thor.Bytes32
	To   thor.Bytes32
}

// AllSlots covers the whole slot space.
var AllSlots = SlotRange{To: thor.Bytes32{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}}

// Single returns the range holding exactly slot.
func Single(slot thor.Bytes32) SlotRange {
	return SlotRange{From: slot, To: slot}
}

// Contains reports whether o lies entirely within r. Big-endian slot keys
// compare like the numbers they encode.
func (r SlotRange) Contains(o SlotRange) bool {
	return bytes.Compare(r.From[:], o.From[:]) <= 0 && bytes.Compare(o.To[:], r.To[:]) <= 0
}

// Record is the audit record of one permitted slot mutation.
type Record struct {
	Caller   thor.Address
	Contract thor.Address
	Slot     thor.Bytes32
	Offset   uint8
	Length   uint8
	Old      thor.Bytes32
	New      thor.Bytes32
}

// Gate is consulted before storage is touched.
type Gate interface {
	// Check reports whether caller may access the slots of contract.
	Check(caller, contract thor.Address, slots SlotRange, kind Kind) bool
	// Audit records a mutation that has been applied.
	Audit(rec Record)
}

// Policy is a Gate backed by a capability table.
type Policy struct {
	Table *Table
	Sink  Sink
	// CheckReads also subjects reads to the table; reads are allowed
	// unconditionally otherwise.
	CheckReads bool
}

var _ Gate = (*Policy)(nil)

// Check implements Gate. Denials are logged as security events.
func (p *Policy) Check(caller, contract thor.Address, slots SlotRange, kind Kind) bool {
	if kind == Read && !p.CheckReads {
		return true
	}
	if p.Table != nil && p.Table.Allows(caller, contract, slots, kind) {
		return true
	}
	logger.Warn("storage access denied",
		"caller", caller,
		"contract", contract,
		"from", slots.From,
		"to", slots.To,
		"kind", kind,
	)
	metricDenied().AddWithLabel(1, map[string]string{"kind": kind.String()})
	return false
}

// Audit implements Gate.
func (p *Policy) Audit(rec Record) {
	if p.Sink != nil {
		p.Sink.Audit(rec)
	}
}

// AllowAll is a Gate that permits everything, for trusted callers.
type AllowAll struct {
	Sink Sink
}

var _ Gate = (*AllowAll)(nil)

func (a *AllowAll) Check(thor.Address, thor.Address, SlotRange, Kind) bool { return true }

func (a *AllowAll) Audit(rec Record) {
	if a.Sink != nil {
		a.Sink.Audit(rec)
	}
}
