// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/roy9527/tempo/auditdb"
	"github.com/roy9527/tempo/gascharger"
	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/metrics"
	"github.com/roy9527/tempo/slotdb"
	"github.com/roy9527/tempo/solc"
	"github.com/roy9527/tempo/solidity"
	"github.com/roy9527/tempo/thor"
)

func initLogger(ctx *cli.Context) {
	lvl := log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name)))
	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".slotctl")
	}
	return ""
}

// session holds what one command works with.
type session struct {
	store    *slotdb.Store
	journal  *slotdb.Journal
	engine   *solidity.Engine
	ctx      *solidity.Context
	charger  *gascharger.Charger
	layout   *solc.StorageLayout
	audit    *auditdb.AuditDB
	pending  gate.MemorySink // records of the uncommitted changes
	log      gate.Sink       // receives the records once committed
	contract thor.Address
	closers  []func()
}

// openSession wires the engine for one command. A read-only session opens
// the slot store read-only and runs with a static context.
func openSession(ctx *cli.Context, readOnly bool) (s *session, err error) {
	s = &session{
		charger: gascharger.New(ctx.GlobalUint64(gasLimitFlag.Name)),
		log:     &gate.LogSink{},
	}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	if ctx.GlobalBool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.GlobalString(metricsAddrFlag.Name))
		if err != nil {
			return nil, err
		}
		log.Info("metrics server started", "url", url)
		s.closers = append(s.closers, closeFunc)
	}

	contract, err := thor.ParseAddress(ctx.GlobalString(contractFlag.Name))
	if err != nil {
		return nil, errors.Wrapf(err, "-%s", contractFlag.Name)
	}
	caller, err := thor.ParseAddress(ctx.GlobalString(callerFlag.Name))
	if err != nil {
		return nil, errors.Wrapf(err, "-%s", callerFlag.Name)
	}
	s.contract = *contract

	if path := ctx.GlobalString(layoutFlag.Name); path != "" {
		if s.layout, err = solc.Load(path); err != nil {
			return nil, errors.WithMessagef(err, "-%s", layoutFlag.Name)
		}
	}

	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return nil, errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	if s.store, err = openStore(filepath.Join(dataDir, "slots"), readOnly); err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func() { s.store.Close() })

	if ctx.GlobalBool(auditFlag.Name) {
		if s.audit, err = auditdb.New(filepath.Join(dataDir, "audit.db")); err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { s.audit.Close() })
	}
	sink := &s.pending

	var g gate.Gate = &gate.AllowAll{Sink: sink}
	if path := ctx.GlobalString(policyFlag.Name); path != "" {
		policy, err := gate.LoadPolicy(path)
		if err != nil {
			return nil, errors.WithMessagef(err, "-%s", policyFlag.Name)
		}
		policy.Sink = sink
		g = policy
	}

	var src slotdb.Source = s.store
	if mb := ctx.GlobalInt(cacheFlag.Name); mb > 0 {
		src = slotdb.NewCache(s.store, mb)
	}
	s.journal = slotdb.NewJournal(src)
	s.engine = solidity.NewEngine(s.journal, solidity.WithGate(g))
	s.ctx = solidity.NewContext(*caller, s.contract, s.charger.Charge)
	if readOnly {
		s.ctx = s.ctx.Static()
	}
	return s, nil
}

func openStore(path string, readOnly bool) (*slotdb.Store, error) {
	if !readOnly {
		return slotdb.Open(path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// nothing written yet
		return slotdb.NewMem()
	}
	return slotdb.OpenReadOnly(path)
}

// commit persists the changes of the command unless it ran out of gas.
func (s *session) commit() error {
	if s.charger.OutOfGas() {
		return errors.Errorf("out of gas: %s", s.charger.Breakdown())
	}
	if err := s.journal.Commit(); err != nil {
		return err
	}
	recs := s.pending.Records()
	for _, rec := range recs {
		s.log.Audit(rec)
	}
	if s.audit != nil {
		return s.audit.Insert(context.Background(), recs...)
	}
	return nil
}

func (s *session) close() {
	if s.charger != nil && s.charger.TotalGas() > 0 {
		log.Info("gas used", "breakdown", s.charger.Breakdown())
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// target resolves a path expression against the loaded storage layout.
func (s *session) target(expr string) (*target, error) {
	if s.layout == nil {
		return nil, errors.Errorf("storage layout required, use -%s to specify", layoutFlag.Name)
	}
	return parsePath(s.layout, expr)
}
