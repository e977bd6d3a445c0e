// Copyright 2026 The rollup-core Authors
// This file is part of the rollup-core library.
//
// The rollup-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The rollup-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the rollup-core library. If not, see <http://www.gnu.org/licenses/>.

// Command rollupd is the process entry point: it loads a TOML config file
// and dispatches to one of the operational subcommands. Wiring an actor up
// to a live L1 RPC endpoint is left to a deployment-specific harness (RPC
// and signing are out of scope here); what lives here is the glue every
// subcommand shares - config loading, logging, and the metrics endpoint.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli"

	"github.com/l2anchor/rollup-core/config"
	rlog "github.com/l2anchor/rollup-core/log"
	"github.com/l2anchor/rollup-core/metrics"
	sqlstore "github.com/l2anchor/rollup-core/storage/sql"
)

var logger = rlog.NewModuleLogger(rlog.CLI)

var configFlag = cli.StringFlag{
	Name:  "config",
	Usage: "path to a TOML config file; defaults compiled in if omitted",
}

var metricsAddrFlag = cli.StringFlag{
	Name:  "metrics-addr",
	Usage: "address to serve /debug/metrics on; empty disables it",
	Value: "127.0.0.1:6060",
}

func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.GlobalString(configFlag.Name)
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadTOML(path)
}

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/debug/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
}

func main() {
	app := cli.NewApp()
	app.Name = "rollupd"
	app.Usage = "rollup-core operational CLI"
	app.Flags = []cli.Flag{configFlag, metricsAddrFlag}
	app.Before = func(c *cli.Context) error {
		metrics.Enabled = true
		serveMetrics(c.GlobalString(metricsAddrFlag.Name))
		return nil
	}
	app.Commands = []cli.Command{
		printConfigCommand,
		migrateCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var printConfigCommand = cli.Command{
	Name:  "config",
	Usage: "print the effective configuration as TOML and exit",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		return config.WriteTOML("/dev/stdout", cfg)
	},
}

var migrateCommand = cli.Command{
	Name:  "migrate",
	Usage: "create or update the SQL schema (§6) and exit",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		db, err := sqlstore.Open(cfg.SQL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := sqlstore.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("migration complete")
		return nil
	},
}
