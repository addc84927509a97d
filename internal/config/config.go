// Package config implements the longitudinal manager's runtime
// configuration: CLI flags (spf13/pflag) layered over a config-file
// and environment-variable source (spf13/viper), grounded on the
// teacher's Config/Bind/Preflight pattern.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	log "github.com/sirupsen/logrus"
)

// Config is the user-visible configuration for running the
// longitudinal deduplication manager.
type Config struct {
	// Warehouse and Mart are the two positional database names; they
	// are not pflags (mirroring the source's positional `data_warehouse
	// data_mart` arguments) and are set by the caller from flags.Args().
	Warehouse string
	Mart      string

	WarehousePort int
	MartPort      int

	DatabaseUser     string
	DatabasePassword string

	Date      string
	Countdown string
	SkipPrep  bool
	Verbosity int

	TmpDir       string
	InProduction bool
}

// Bind registers the manager's CLI flags.
func (c *Config) Bind(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Date, "date", "d", "",
		"single admission date to dedup (YYYY-MM-DD); by default, checks the entire database")
	flags.StringVarP(&c.Countdown, "countdown", "c", "",
		"count {forwards,backwards} the persisted date file instead of using --date")
	flags.BoolVarP(&c.SkipPrep, "skip-prep", "s", false,
		"skip the expense of looking for new messages")
	flags.CountVarP(&c.Verbosity, "verbose", "v", "increase output verbosity")
	flags.IntVarP(&c.MartPort, "mart-port", "m", 5432, "alternate port number for the data mart")
	flags.IntVarP(&c.WarehousePort, "warehouse-port", "w", 5432, "alternate port number for the data warehouse")
}

// LoadEnvironment layers the [longitudinal]/[general] config-file
// sections and their environment-variable equivalents
// (LONGITUDINAL_DATABASE_USER, GENERAL_TMP_DIR, ...) under whatever
// the CLI flags already set. Call after flags.Parse.
func (c *Config) LoadEnvironment() error {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("longitudinal")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/longitudinal")

	v.SetDefault("longitudinal.database_user", "")
	v.SetDefault("longitudinal.database_password", "")
	v.SetDefault("general.tmp_dir", "/tmp")
	v.SetDefault("general.in_production", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "reading longitudinal config file")
		}
		log.Debug("no longitudinal config file found, using flags/environment only")
	}

	c.DatabaseUser = v.GetString("longitudinal.database_user")
	c.DatabasePassword = v.GetString("longitudinal.database_password")
	c.TmpDir = v.GetString("general.tmp_dir")
	c.InProduction = v.GetBool("general.in_production")
	return nil
}

// Preflight validates the fully-populated Config.
func (c *Config) Preflight() error {
	if c.Warehouse == "" {
		return errors.New("data_warehouse database name is required")
	}
	if c.Mart == "" {
		return errors.New("data_mart database name is required")
	}
	if c.Countdown != "" && c.Countdown != "forwards" && c.Countdown != "backwards" {
		return errors.Errorf("countdown must be 'forwards' or 'backwards', got %q", c.Countdown)
	}
	if c.Date != "" {
		if _, err := time.Parse("2006-01-02", c.Date); err != nil {
			return errors.Wrapf(err, "parsing --date %q", c.Date)
		}
	}
	if c.WarehousePort <= 0 {
		return errors.New("warehouse-port must be positive")
	}
	if c.MartPort <= 0 {
		return errors.New("mart-port must be positive")
	}
	return nil
}

// LogLevel maps the repeatable -v count to a logrus level, clamping at
// Trace so `-vvvvv` never panics.
func (c *Config) LogLevel() log.Level {
	switch {
	case c.Verbosity <= 0:
		return log.InfoLevel
	case c.Verbosity == 1:
		return log.DebugLevel
	default:
		return log.TraceLevel
	}
}

// ReportDate parses Date, returning the zero time and false when Date
// is unset (the "check the entire database" mode).
func (c *Config) ReportDate() (time.Time, bool, error) {
	if c.Date == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", c.Date)
	if err != nil {
		return time.Time{}, false, errors.Wrapf(err, "parsing --date %q", c.Date)
	}
	return t, true, nil
}
