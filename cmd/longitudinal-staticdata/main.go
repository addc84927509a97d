// Command longitudinal-staticdata dumps or loads the mart's
// install-specific dimension tables as YAML, grounded on
// static_data.py's dump()/load() entry points.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/pbugni/pheme.longitudinal/internal/config"
	"github.com/pbugni/pheme.longitudinal/internal/dbpool"
	"github.com/pbugni/pheme.longitudinal/internal/staticdata"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return errors.New("usage: longitudinal-staticdata {dump|load} [flags] database file")
	}
	mode := os.Args[1]
	os.Args = append(os.Args[:1], os.Args[2:]...)

	cfg := &config.Config{}
	port := pflag.IntP("mart-port", "m", 5432, "alternate port number for the data mart")
	pflag.Parse()
	if err := cfg.LoadEnvironment(); err != nil {
		return errors.Wrap(err, "loading longitudinal configuration")
	}

	args := pflag.Args()
	if len(args) != 2 {
		return errors.New("usage: longitudinal-staticdata {dump|load} [flags] database file")
	}
	database, path := args[0], args[1]

	ctx := context.Background()
	pool, err := dbpool.Open(ctx, dbpool.Target{
		Product:  dbpool.ProductPostgres,
		Host:     "localhost",
		Port:     *port,
		Database: database,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
	})
	if err != nil {
		return errors.Wrap(err, "connecting to mart")
	}
	defer pool.Close()
	store := &staticdata.PGStore{Pool: pool}

	switch mode {
	case "dump":
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "creating %q", path)
		}
		defer f.Close()
		if err := staticdata.Dump(ctx, store, f); err != nil {
			return err
		}
		log.Infof("wrote static data to %s", path)
	case "load":
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "opening %q", path)
		}
		defer f.Close()
		if err := staticdata.Load(ctx, store, f); err != nil {
			return err
		}
		log.Infof("loaded static data from %s", path)
	default:
		return errors.Errorf("unknown mode %q, expected dump or load", mode)
	}
	return nil
}
