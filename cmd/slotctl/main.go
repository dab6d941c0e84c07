// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// slotctl inspects and edits Solidity contract storage kept in a slot database.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
)

func main() {
	app := cli.NewApp()
	app.Name = "slotctl"
	app.Usage = "Solidity storage layout tool"
	app.Version = fmt.Sprintf("%s-%s", version, gitCommit)
	app.Flags = []cli.Flag{
		dataDirFlag,
		layoutFlag,
		contractFlag,
		callerFlag,
		policyFlag,
		cacheFlag,
		auditFlag,
		gasLimitFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		initLogger(ctx)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "layout",
			Usage:  "print the resolved placement of every state variable and check it against the compiler",
			Action: layoutAction,
		},
		{
			Name:      "slot",
			Usage:     "print the slot, offset and length of a path",
			ArgsUsage: "<path>",
			Action:    slotAction,
		},
		{
			Name:      "read",
			Usage:     "read the value at a path",
			ArgsUsage: "<path>",
			Action:    readAction,
		},
		{
			Name:      "write",
			Usage:     "write a value at a path",
			ArgsUsage: "<path> <value>",
			Action:    writeAction,
		},
		{
			Name:      "length",
			Usage:     "print the length of a dynamic array, bytes or string",
			ArgsUsage: "<path>",
			Action:    lengthAction,
		},
		{
			Name:      "push",
			Usage:     "append a value to a dynamic array",
			ArgsUsage: "<path> [value]",
			Action:    pushAction,
		},
		{
			Name:      "pop",
			Usage:     "remove the last element of a dynamic array",
			ArgsUsage: "<path>",
			Action:    popAction,
		},
		{
			Name:      "delete",
			Usage:     "reset the value at a path to zero",
			ArgsUsage: "<path>",
			Action:    deleteAction,
		},
		{
			Name:   "audit",
			Usage:  "print stored audit records of the contract",
			Flags:  []cli.Flag{slotFilterFlag, limitFlag},
			Action: auditAction,
		},
		{
			Name:      "export",
			Usage:     "write the raw storage of the contract to a JSON snapshot",
			ArgsUsage: "<file>",
			Action:    exportAction,
		},
		{
			Name:      "import",
			Usage:     "restore raw storage from a JSON snapshot, bypassing the policy",
			ArgsUsage: "<file>",
			Action:    importAction,
		},
		{
			Name:   "dump",
			Usage:  "print every non-zero slot of the contract",
			Action: dumpAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
