// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gate

import (
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// Sink receives audit records.
type Sink interface {
	Audit(rec Record)
}

// LogSink writes audit records to a logger.
type LogSink struct {
	Logger log.Logger
}

func (s *LogSink) Audit(rec Record) {
	l := s.Logger
	if l == nil {
		l = logger
	}
	l.Info("storage write",
		"caller", rec.Caller,
		"contract", rec.Contract,
		"slot", rec.Slot,
		"offset", rec.Offset,
		"length", rec.Length,
		"old", rec.Old,
		"new", rec.New,
	)
}

// MemorySink keeps audit records in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

func (s *MemorySink) Audit(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Records returns a copy of the collected records.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// MultiSink fans records out to several sinks.
type MultiSink []Sink

func (m MultiSink) Audit(rec Record) {
	for _, s := range m {
		s.Audit(rec)
	}
}
