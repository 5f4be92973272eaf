package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"groundlink/wire"
)

const (
	// SchemaVersion is written by Default and is the newest
	// schema this build understands.
	SchemaVersion = "1.1"
	// SupportedSchemas is the range of config versions accepted by Validate
	SupportedSchemas = ">= 1.0, < 2.0"

	defaultRemoteHost    = "192.168.4.1"
	defaultRemotePort    = 4210
	defaultListenPort    = 4211
	defaultRecorderQueue = 256
	defaultBaud          = 115200
	defaultStatsInterval = 10 * time.Second
)

type Config struct {
	Version       string         `yaml:"version"`
	Remote        RemoteConfig   `yaml:"remote"`
	ListenPort    int            `yaml:"listen_port"`
	Checksum      string         `yaml:"checksum"`
	LogLevel      string         `yaml:"log_level"`
	StatsInterval time.Duration  `yaml:"stats_interval"`
	Recorder      RecorderConfig `yaml:"recorder"`
	Forward       ForwardConfig  `yaml:"forward"`
}

// ---- VEHICLE ----

type RemoteConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ---- RECORDER ----

// RecorderConfig enables the sqlite recorder when Path is set
type RecorderConfig struct {
	Path  string `yaml:"path"`
	Queue int    `yaml:"queue"`
}

// ---- SERIAL FORWARDING ----

// ForwardConfig enables the serial bridge when Port is set. Port is
// a serial device name or tcp:host:port.
type ForwardConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Version: SchemaVersion,
		Remote: RemoteConfig{
			Host: defaultRemoteHost,
			Port: defaultRemotePort,
		},
		ListenPort:    defaultListenPort,
		Checksum:      wire.ChecksumSum16.String(),
		LogLevel:      "info",
		StatsInterval: defaultStatsInterval,
		Recorder: RecorderConfig{
			Queue: defaultRecorderQueue,
		},
		Forward: ForwardConfig{
			Baud: defaultBaud,
		},
	}
}

// Load reads the YAML file at path on top of Default(). Unknown
// keys are rejected. Load does not validate; call Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data on top of Default()
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return cfg, nil
}

// Codec returns the frame codec selected by Checksum
func (c *Config) Codec() (*wire.Codec, error) {
	kind, err := wire.ParseChecksumKind(c.Checksum)
	if err != nil {
		return nil, err
	}
	return wire.NewCodec(kind), nil
}

// Marshal encodes c as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
