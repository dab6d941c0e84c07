// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Value: defaultDataDir(),
		Usage: "directory of the slot database",
	}
	layoutFlag = cli.StringFlag{
		Name:  "layout",
		Usage: "storageLayout JSON emitted by solc for the contract",
	}
	contractFlag = cli.StringFlag{
		Name:  "contract",
		Value: "0x0000000000000000000000000000000000000000",
		Usage: "address of the contract owning the storage",
	}
	callerFlag = cli.StringFlag{
		Name:  "caller",
		Value: "0x0000000000000000000000000000000000000000",
		Usage: "address the access is made on behalf of",
	}
	policyFlag = cli.StringFlag{
		Name:  "policy",
		Usage: "YAML capability policy (all access allowed if not set)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 16,
		Usage: "megabytes of memory allocated to the slot cache",
	}
	auditFlag = cli.BoolFlag{
		Name:  "audit",
		Usage: "store audit records of writes in the data dir",
	}
	gasLimitFlag = cli.Uint64Flag{
		Name:  "gas-limit",
		Usage: "gas limit of one command (0 for unlimited)",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
)

var (
	slotFilterFlag = cli.StringFlag{
		Name:  "slot",
		Usage: "only records of this slot",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100,
		Usage: "maximum number of records, newest first",
	}
)
