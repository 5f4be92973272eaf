package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundlink/wire"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
version: "1.0"
remote:
  host: 10.0.0.7
  port: 9000
listen_port: 9001
checksum: crc8
log_level: debug
stats_interval: 2s
recorder:
  path: /tmp/flight.db
`))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	want := Default()
	want.Version = "1.0"
	want.Remote = RemoteConfig{Host: "10.0.0.7", Port: 9000}
	want.ListenPort = 9001
	want.Checksum = "crc8"
	want.LogLevel = "debug"
	want.StatsInterval = 2 * time.Second
	want.Recorder.Path = "/tmp/flight.db"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}

	codec, err := cfg.Codec()
	require.NoError(t, err)
	assert.Equal(t, wire.ChecksumCRC8, codec.Checksum())
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("version: \"1.0\"\nlisten_prot: 1\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groundlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.1\"\nforward:\n  port: tcp:localhost:5760\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp:localhost:5760", cfg.Forward.Port)
	assert.Equal(t, defaultBaud, cfg.Forward.Baud)
	assert.NoError(t, Validate(cfg))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestMarshalRoundTrip(t *testing.T) {
	in := Default()
	in.Recorder.Path = "flights.db"
	in.StatsInterval = 1500 * time.Millisecond

	data, err := in.Marshal()
	require.NoError(t, err)
	out, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"ephemeral listen port", func(c *Config) { c.ListenPort = 0 }, true},
		{"no version", func(c *Config) { c.Version = "" }, false},
		{"bad version", func(c *Config) { c.Version = "one" }, false},
		{"old version", func(c *Config) { c.Version = "0.9" }, false},
		{"future version", func(c *Config) { c.Version = "2.0" }, false},
		{"no host", func(c *Config) { c.Remote.Host = "" }, false},
		{"zero remote port", func(c *Config) { c.Remote.Port = 0 }, false},
		{"remote port too big", func(c *Config) { c.Remote.Port = 70000 }, false},
		{"negative listen port", func(c *Config) { c.ListenPort = -1 }, false},
		{"unknown checksum", func(c *Config) { c.Checksum = "md5" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"negative stats interval", func(c *Config) { c.StatsInterval = -time.Second }, false},
		{"recorder without queue", func(c *Config) {
			c.Recorder.Path = "x.db"
			c.Recorder.Queue = 0
		}, false},
		{"forward without baud", func(c *Config) {
			c.Forward.Port = "/dev/ttyUSB0"
			c.Forward.Baud = 0
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
