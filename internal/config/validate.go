package config

import (
	"fmt"

	version "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"

	"groundlink/wire"
)

var supported = func() version.Constraints {
	c, err := version.NewConstraint(SupportedSchemas)
	if err != nil {
		panic(err)
	}
	return c
}()

// Validate checks configuration correctness. It does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("version is required")
	}
	v, err := version.NewVersion(cfg.Version)
	if err != nil {
		return fmt.Errorf("version %q: %w", cfg.Version, err)
	}
	if !supported.Check(v) {
		return fmt.Errorf("config version %s is not supported (want %s)", v, SupportedSchemas)
	}

	if cfg.Remote.Host == "" {
		return fmt.Errorf("remote.host is required")
	}
	if err := checkPort("remote.port", cfg.Remote.Port, false); err != nil {
		return err
	}
	// 0 picks an ephemeral port
	if err := checkPort("listen_port", cfg.ListenPort, true); err != nil {
		return err
	}

	if _, err := wire.ParseChecksumKind(cfg.Checksum); err != nil {
		return fmt.Errorf("checksum: %w", err)
	}
	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	if cfg.StatsInterval < 0 {
		return fmt.Errorf("stats_interval must not be negative, got %v", cfg.StatsInterval)
	}

	if cfg.Recorder.Path != "" && cfg.Recorder.Queue <= 0 {
		return fmt.Errorf("recorder.queue must be positive, got %d", cfg.Recorder.Queue)
	}
	if cfg.Forward.Port != "" && cfg.Forward.Baud <= 0 {
		return fmt.Errorf("forward.baud must be positive, got %d", cfg.Forward.Baud)
	}
	return nil
}

func checkPort(name string, port int, zeroOK bool) error {
	if port == 0 && zeroOK {
		return nil
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s %d out of range", name, port)
	}
	return nil
}
