package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/iov-one/htlc/app"
	"github.com/iov-one/htlc/crypto"
	"github.com/iov-one/htlc/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func flKey(fl *flag.FlagSet) *string {
	return fl.String("key", env("HTLCD_PRIV_KEY", os.Getenv("HOME")+"/.htlcd.priv.key"),
		"Path to the private key file that requests are signed with. You can use HTLCD_PRIV_KEY environment variable to set it.")
}

// hostFlags are shared by all commands that open the store.
type hostFlags struct {
	home    *string
	metrics *bool
}

func flHost(fl *flag.FlagSet) hostFlags {
	return hostFlags{
		home:    fl.String("home", "", "Directory of the ledger. Defaults to HTLC_HOME."),
		metrics: fl.Bool("metrics", false, "Print event metrics to stderr after the command."),
	}
}

// config loads the configuration from the environment and applies the
// flag overrides.
func (f hostFlags) config() (app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if *f.home != "" {
		cfg.Home = *f.home
	}
	return cfg, nil
}

// withHost opens the host for the duration of fn. Committed events are
// logged and counted.
func (f hostFlags) withHost(fn func(*app.Host) error) error {
	cfg, err := f.config()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	store, err := cfg.OpenStore()
	if err != nil {
		return fmt.Errorf("cannot open store: %s", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	metrics, err := events.NewMetricsSink(reg)
	if err != nil {
		return err
	}
	host, err := app.NewHost(store,
		app.WithLogger(logger),
		app.WithSink(events.Multi{events.LogSink{Logger: logger}, metrics}))
	if err != nil {
		return err
	}
	if err := fn(host); err != nil {
		return err
	}
	if *f.metrics {
		return writeMetrics(os.Stderr, reg)
	}
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("cannot gather metrics: %s", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("cannot write metrics: %s", err)
		}
	}
	return nil
}

// readKey loads a private key stored by keygen.
func readKey(path string) (crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	key, err := crypto.ParsePrivateKey(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("cannot parse private key: %s", err)
	}
	return key, nil
}

// flHex registers a flag holding hex encoded bytes.
func flHex(fl *flag.FlagSet, name, usage string) *[]byte {
	var b flagbyte
	fl.Var(&b, name, usage)
	return (*[]byte)(&b)
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}
