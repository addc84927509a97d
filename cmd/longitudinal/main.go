// Command longitudinal runs one pass of the deduplication manager
// against a data warehouse and a data mart, grounded on
// longitudinal_manager.py's command-line entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/pbugni/pheme.longitudinal/internal/config"
	"github.com/pbugni/pheme.longitudinal/internal/manager"
	"github.com/pbugni/pheme.longitudinal/internal/util/datefile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := &config.Config{}
	cfg.Bind(pflag.CommandLine)
	pflag.Parse()

	if err := cfg.LoadEnvironment(); err != nil {
		return errors.Wrap(err, "loading longitudinal configuration")
	}

	args := pflag.Args()
	if len(args) != 2 {
		return errors.New("usage: longitudinal [flags] data_warehouse data_mart")
	}
	cfg.Warehouse, cfg.Mart = args[0], args[1]

	if err := cfg.Preflight(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	log.SetLevel(cfg.LogLevel())

	ctx := context.Background()

	reportDate, hasDate, err := cfg.ReportDate()
	if err != nil {
		return err
	}
	var initial *time.Time
	if hasDate {
		initial = &reportDate
	}

	dfPath := ""
	if cfg.Countdown != "" {
		dfPath = cfg.TmpDir + "/longitudinal_datefile"
	}
	df, err := datefile.New(initial, dfPath, datefile.Direction(cfg.Countdown))
	if err != nil {
		return errors.Wrap(err, "initializing report datefile")
	}

	mgr, cleanup, err := manager.BuildManager(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "building manager")
	}
	defer cleanup()
	mgr.Workers = 0

	return mgr.Run(ctx, cfg, df)
}
