package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundlink/internal/config"
)

func TestFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groundlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nremote:\n  host: 10.1.1.1\n  port: 5000\nlisten_port: 5001\n"), 0o644))

	o, err := parseFlags([]string{"-config", path, "-remote-port", "6000", "-listen", "0"})
	require.NoError(t, err)
	cfg, err := loadConfig(o)
	require.NoError(t, err)

	assert.Equal(t, "10.1.1.1", cfg.Remote.Host)
	assert.Equal(t, 6000, cfg.Remote.Port)
	assert.Equal(t, 0, cfg.ListenPort)
	assert.Equal(t, "10.1.1.1:6000", remoteAddr(cfg))
}

func TestDefaultsWithoutConfig(t *testing.T) {
	o, err := parseFlags(nil)
	require.NoError(t, err)
	cfg, err := loadConfig(o)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInvalidOverride(t *testing.T) {
	o, err := parseFlags([]string{"-remote-port", "70000"})
	require.NoError(t, err)
	_, err = loadConfig(o)
	assert.Error(t, err)
}

func TestUnknownFlag(t *testing.T) {
	_, err := parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestSessionsNeedRecorder(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, listSessions(context.Background(), cfg))
}

func TestStationRecordsSession(t *testing.T) {
	cfg := config.Default()
	cfg.ListenPort = 0
	cfg.Remote.Host = "127.0.0.1"
	cfg.Recorder.Path = filepath.Join(t.TempDir(), "flights.db")

	ctx := context.Background()
	s, err := newStation(ctx, cfg)
	require.NoError(t, err)
	s.close()

	require.NoError(t, listSessions(ctx, cfg))
}
