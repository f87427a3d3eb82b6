package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Tests Default
func TestConfig_Default(t *testing.T) {
	cfg := Default()
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, ":8081", cfg.TCPBidAddr)
	require.Equal(t, ":8082", cfg.EventLoopAddr)
	require.Equal(t, 30*time.Second, cfg.SweepInterval.Std())
	require.Equal(t, "230.0.0.1:4446", cfg.BroadcastGroup)
	require.Equal(t, int64(2000), cfg.FeeBps)
	require.Equal(t, "platform", cfg.FeeAccountID)
	require.Empty(t, cfg.JournalDir, "journal is opt-in")
}

// Tests LoadFile
func TestConfig_LoadFile(t *testing.T) {
	path := writeConfig(t, `
http_addr: ":9090"
sweep_interval: "5s"
fee_bps: 1500
journal_dir: "/var/lib/auction/journal"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, 5*time.Second, cfg.SweepInterval.Std())
	require.Equal(t, int64(1500), cfg.FeeBps)
	require.Equal(t, "/var/lib/auction/journal", cfg.JournalDir)

	// Unset keys keep their defaults.
	require.Equal(t, ":8081", cfg.TCPBidAddr)
	require.Equal(t, "230.0.0.1:4446", cfg.BroadcastGroup)
}

func TestConfig_LoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, "http_addr: [not a string"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, `sweep_interval: "not-a-duration"`))
	require.Error(t, err)
}

// Tests FromArgs precedence: flags beat the file, the file beats defaults.
func TestConfig_FromArgs(t *testing.T) {
	path := writeConfig(t, `
http_addr: ":9090"
fee_bps: 1500
`)

	tests := []struct {
		name     string
		args     []string
		check    func(t *testing.T, cfg Config)
		wantFail bool
	}{
		{
			name: "defaults_with_no_args",
			args: nil,
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file_only",
			args: []string{"--config", path},
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, ":9090", cfg.HTTPAddr)
				require.Equal(t, int64(1500), cfg.FeeBps)
			},
		},
		{
			name: "flag_overrides_file",
			args: []string{"--config", path, "--http-addr", ":7070", "--fee-bps", "500"},
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, ":7070", cfg.HTTPAddr)
				require.Equal(t, int64(500), cfg.FeeBps)
			},
		},
		{
			name: "flag_without_file",
			args: []string{"--sweep-interval", "10s", "--journal-dir", "/tmp/j"},
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, 10*time.Second, cfg.SweepInterval.Std())
				require.Equal(t, "/tmp/j", cfg.JournalDir)
			},
		},
		{
			name: "zero_fee_flag_applies",
			args: []string{"--fee-bps", "0"},
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, int64(0), cfg.FeeBps)
			},
		},
		{
			name:     "unknown_flag",
			args:     []string{"--nope"},
			wantFail: true,
		},
		{
			name:     "missing_config_file",
			args:     []string{"--config", "/does/not/exist.yaml"},
			wantFail: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := FromArgs(tc.args)
			if tc.wantFail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
