package app

import (
	"io"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/store/iavl"
	"github.com/tendermint/tendermint/libs/log"
)

// Config describes where the host keeps its state and how it reports.
type Config struct {
	// Home is the directory holding the genesis file and the database.
	Home string `env:"HTLC_HOME" envDefault:".htlc"`
	// LogLevel is one of debug, info, error or none.
	LogLevel string `env:"HTLC_LOG_LEVEL" envDefault:"info"`
	// DBName is the name of the leveldb database inside the data
	// directory.
	DBName string `env:"HTLC_DB_NAME" envDefault:"htlc"`
	// CacheSize is the number of tree nodes kept in memory.
	CacheSize int `env:"HTLC_CACHE_SIZE" envDefault:"10000"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return c, errors.Wrapf(errors.ErrInput, "parse env: %s", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.Wrap(errors.ErrInput, "home directory required")
	}
	if c.DBName == "" {
		return errors.Wrap(errors.ErrInput, "database name required")
	}
	if c.CacheSize < 0 {
		return errors.Wrapf(errors.ErrInput, "negative cache size %d", c.CacheSize)
	}
	if _, err := log.AllowLevel(c.LogLevel); err != nil {
		return errors.Wrapf(errors.ErrInput, "log level: %s", err)
	}
	return nil
}

// GenesisFile returns the path of the genesis file.
func (c Config) GenesisFile() string {
	return filepath.Join(c.Home, "genesis.json")
}

// DataDir returns the directory of the database.
func (c Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// NewLogger returns a logger writing to w and filtered by the configured
// level.
func (c Config) NewLogger(w io.Writer) (log.Logger, error) {
	allow, err := log.AllowLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "log level: %s", err)
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(w)), allow), nil
}

// OpenStore opens the durable store kept in the data directory.
func (c Config) OpenStore() (*iavl.CommitStore, error) {
	return iavl.NewCommitStore(c.DataDir(), c.DBName, c.CacheSize)
}
