// Package config loads the server configuration from an optional YAML file
// with command-line flag overrides. Flags win over the file, the file wins
// over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level server configuration.
type Config struct {
	// HTTPAddr is the gin listen address for the synchronous API.
	HTTPAddr string `yaml:"http_addr"`

	// TCPBidAddr is the pooled blocking bid server address.
	TCPBidAddr string `yaml:"tcp_bid_addr"`

	// EventLoopAddr is the single-goroutine bid server address.
	EventLoopAddr string `yaml:"event_loop_addr"`

	// ReadTimeout bounds how long a bid connection may take to deliver a
	// complete request before it is abandoned.
	ReadTimeout Duration `yaml:"read_timeout"`

	// WorkerPoolSize bounds concurrent connections on the blocking server.
	WorkerPoolSize int `yaml:"worker_pool_size"`

	// BroadcastGroup is the UDP group address for price/status fan-out.
	BroadcastGroup string `yaml:"broadcast_group"`

	// BroadcastQueueSize bounds the fan-out handoff queue.
	BroadcastQueueSize int `yaml:"broadcast_queue_size"`

	// SweepInterval is how often the settlement scheduler runs.
	SweepInterval Duration `yaml:"sweep_interval"`

	// FeeBps is the platform fee in basis points (2000 = 20%).
	FeeBps int64 `yaml:"fee_bps"`

	// FeeAccountID is the account credited with platform fees.
	FeeAccountID string `yaml:"fee_account_id"`

	// JournalDir enables the durable ledger journal when set.
	JournalDir string `yaml:"journal_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:           ":8080",
		TCPBidAddr:         ":8081",
		EventLoopAddr:      ":8082",
		ReadTimeout:        Duration(30 * time.Second),
		WorkerPoolSize:     50,
		BroadcastGroup:     "230.0.0.1:4446",
		BroadcastQueueSize: 256,
		SweepInterval:      Duration(30 * time.Second),
		FeeBps:             2000,
		FeeAccountID:       "platform",
	}
}

// LoadFile reads cfg from a YAML file on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromArgs builds the configuration from command-line arguments: an optional
// --config file plus per-setting override flags.
func FromArgs(args []string) (Config, error) {
	flags := pflag.NewFlagSet("auction-system", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML configuration file")
	httpAddr := flags.String("http-addr", "", "HTTP API listen address")
	tcpAddr := flags.String("tcp-bid-addr", "", "TCP bid server listen address")
	loopAddr := flags.String("event-loop-addr", "", "event-loop bid server listen address")
	group := flags.String("broadcast-group", "", "UDP broadcast group address")
	sweep := flags.Duration("sweep-interval", 0, "settlement sweep interval")
	feeBps := flags.Int64("fee-bps", -1, "platform fee in basis points")
	journalDir := flags.String("journal-dir", "", "ledger journal directory")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *configPath != "" {
		loaded, err := LoadFile(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *tcpAddr != "" {
		cfg.TCPBidAddr = *tcpAddr
	}
	if *loopAddr != "" {
		cfg.EventLoopAddr = *loopAddr
	}
	if *group != "" {
		cfg.BroadcastGroup = *group
	}
	if *sweep > 0 {
		cfg.SweepInterval = Duration(*sweep)
	}
	if *feeBps >= 0 {
		cfg.FeeBps = *feeBps
	}
	if *journalDir != "" {
		cfg.JournalDir = *journalDir
	}
	return cfg, nil
}
