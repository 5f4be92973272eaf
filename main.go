package main // import "groundlink"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"groundlink/internal/buildinfo"
	"groundlink/internal/config"
	"groundlink/internal/serialfwd"
)

type options struct {
	configPath string
	debug      bool
	trace      bool
	host       string
	remotePort int
	listenPort int
	replay     string
	simulate   string
	rate       int
	multiplier int
	ports      bool
	sessions   bool
	version    bool
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("groundlink", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Path to the YAML configuration file")
	fs.BoolVar(&o.debug, "debug", false, "Set logging level to debug")
	fs.BoolVar(&o.trace, "trace", false, "Set logging level to trace. Implies debug.")
	fs.StringVar(&o.host, "host", "", "Vehicle host, overrides remote.host")
	fs.IntVar(&o.remotePort, "remote-port", 0, "Vehicle port, overrides remote.port")
	fs.IntVar(&o.listenPort, "listen", -1, "Local port for ground reports, overrides listen_port")
	fs.StringVar(&o.replay, "replay", "", "Replay ground reports from a pcap capture and exit")
	fs.StringVar(&o.simulate, "simulate", "", "Run a simulated vehicle sending reports to the given ground station host:port")
	fs.IntVar(&o.rate, "rate", 50, "Simulated vehicle report rate in Hz")
	fs.IntVar(&o.multiplier, "multiplier", 1, "Simulated vehicle sends every n-th report")
	fs.BoolVar(&o.ports, "ports", false, "List serial ports usable for forwarding and exit")
	fs.BoolVar(&o.sessions, "sessions", false, "List recorded sessions and exit")
	fs.BoolVar(&o.version, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func setLogLevel(o *options, cfg *config.Config) {
	if o.trace || os.Getenv("GROUNDLINK_TRACE") != "" {
		log.SetLevel(log.TraceLevel)
	} else if o.debug || os.Getenv("GROUNDLINK_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	} else if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func loadConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.host != "" {
		cfg.Remote.Host = o.host
	}
	if o.remotePort != 0 {
		cfg.Remote.Port = o.remotePort
	}
	if o.listenPort >= 0 {
		cfg.ListenPort = o.listenPort
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func listPorts() error {
	ports, err := serialfwd.AvailablePorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

func run(ctx context.Context, o *options, cfg *config.Config) error {
	switch {
	case o.ports:
		return listPorts()
	case o.sessions:
		return listSessions(ctx, cfg)
	case o.replay != "":
		return replayCapture(ctx, cfg, o.replay)
	case o.simulate != "":
		return simulate(ctx, cfg, o.simulate, o.rate, o.multiplier)
	}
	return runStation(ctx, cfg)
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if o.version {
		fmt.Println(buildinfo.Version())
		return
	}
	cfg, err := loadConfig(o)
	if err != nil {
		log.Fatal(err)
	}
	setLogLevel(o, cfg)
	log.Infof("groundlink %s", buildinfo.Version())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, o, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
