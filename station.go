package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"groundlink/internal/config"
	"groundlink/internal/recorder"
	"groundlink/internal/replay"
	"groundlink/internal/serialfwd"
	"groundlink/telemetry"
	"groundlink/transceiver"
	"groundlink/wire"
)

func remoteAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Remote.Host, strconv.Itoa(cfg.Remote.Port))
}

// station is the ground side: the transceiver plus the optional
// recorder and serial bridge fed by it
type station struct {
	cfg   *config.Config
	codec *wire.Codec

	rec     *recorder.Recorder
	sink    *recorder.Sink
	forward *serialfwd.Forwarder
	tr      *transceiver.Transceiver
}

func newStation(ctx context.Context, cfg *config.Config) (_ *station, err error) {
	s := &station{cfg: cfg}
	if s.codec, err = cfg.Codec(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	if cfg.Recorder.Path != "" {
		if s.rec, err = recorder.Open(ctx, cfg.Recorder.Path); err != nil {
			return nil, err
		}
		session, err := s.rec.StartSession(ctx, remoteAddr(cfg))
		if err != nil {
			return nil, err
		}
		log.WithField("session", session).Infof("recording to %s", cfg.Recorder.Path)
		s.sink = recorder.NewSink(s.rec, session, cfg.Recorder.Queue)
	}
	if cfg.Forward.Port != "" {
		if s.forward, err = serialfwd.Open(cfg.Forward.Port, cfg.Forward.Baud, s.codec); err != nil {
			return nil, err
		}
	}

	s.tr = transceiver.New(transceiver.Config{
		RemoteHost: cfg.Remote.Host,
		RemotePort: cfg.Remote.Port,
		ListenPort: cfg.ListenPort,
		Codec:      s.codec,
		OnReport:   s.onReport,
		OnStatus:   s.onStatus,
	})
	return s, nil
}

func (s *station) onReport(r *telemetry.Report) {
	log.Tracef("report: %s", r)
	if s.forward != nil {
		if err := s.forward.Forward(r); err != nil && !errors.Is(err, serialfwd.ErrClosed) {
			log.Warnf("forwarding report: %v", err)
		}
	}
	if s.sink != nil {
		s.sink.Put(r)
	}
}

func (s *station) onStatus(st transceiver.Status) {
	log.WithFields(log.Fields{
		"linked":  st.Linked,
		"traffic": st.HaveTraffic,
		"halted":  st.Halted,
	}).Debugf("link %s", st.State)
}

func (s *station) logStats(prev transceiver.Stats, elapsed time.Duration) transceiver.Stats {
	st := s.tr.Stats()
	rate := float64(st.Reports-prev.Reports) / elapsed.Seconds()
	fields := log.Fields{
		"reports":    humanize.Comma(int64(st.Reports)),
		"received":   humanize.Bytes(st.Bytes),
		"malformed":  st.Malformed,
		"reconnects": st.Reconnects,
		"sent":       humanize.Comma(int64(st.Sends)),
	}
	if s.sink != nil {
		fields["recorded"] = humanize.Comma(int64(s.sink.Written()))
		fields["dropped"] = s.sink.Dropped()
	}
	if s.forward != nil {
		fields["forwarded"] = humanize.Comma(int64(s.forward.Forwarded()))
	}
	log.WithFields(fields).Infof("%s, %.1f reports/s", s.tr.State(), rate)
	return st
}

func (s *station) reportStats(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	var prev transceiver.Stats
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev = s.logStats(prev, every)
		}
	}
}

func (s *station) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.reportStats(ctx, s.cfg.StatsInterval)
	}()
	if s.forward != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.forward.Run(ctx, s.tr.SendPacket); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("serial bridge stopped: %v", err)
			}
		}()
	}

	log.Infof("linking with vehicle at %s", remoteAddr(s.cfg))
	err := s.tr.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

func (s *station) close() {
	if s.forward != nil {
		s.forward.Close()
	}
	if s.sink != nil {
		s.sink.Close()
		log.Infof("recorded %s reports, %d dropped", humanize.Comma(int64(s.sink.Written())), s.sink.Dropped())
	}
	if s.rec != nil {
		if err := s.rec.Close(); err != nil {
			log.Errorf("closing recorder: %v", err)
		}
	}
}

func runStation(ctx context.Context, cfg *config.Config) error {
	s, err := newStation(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()
	return s.run(ctx)
}

func replayCapture(ctx context.Context, cfg *config.Config, path string) error {
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	var record func(time.Time, *telemetry.Report) error
	if cfg.Recorder.Path != "" {
		rec, err := recorder.Open(ctx, cfg.Recorder.Path)
		if err != nil {
			return err
		}
		defer rec.Close()
		session, err := rec.StartSession(ctx, "replay:"+path)
		if err != nil {
			return err
		}
		log.WithField("session", session).Infof("recording to %s", cfg.Recorder.Path)
		record = func(at time.Time, r *telemetry.Report) error {
			return rec.Record(ctx, session, at, r)
		}
	}
	var recordErr error
	summary, err := replay.ReadFile(ctx, path, replay.Options{Port: cfg.ListenPort, Codec: codec},
		func(at time.Time, r *telemetry.Report) {
			log.Debugf("%s %s", at.Format(time.RFC3339Nano), r)
			if record != nil && recordErr == nil {
				recordErr = record(at, r)
			}
		})
	if err == nil {
		err = recordErr
	}
	if err != nil {
		return err
	}
	fmt.Printf("%d packets, %d datagrams, %d reports, %d malformed over %v\n",
		summary.Packets, summary.Datagrams, summary.Reports, summary.Malformed, summary.Duration())
	return nil
}

func listSessions(ctx context.Context, cfg *config.Config) error {
	if cfg.Recorder.Path == "" {
		return errors.New("recorder.path is not configured")
	}
	rec, err := recorder.Open(ctx, cfg.Recorder.Path)
	if err != nil {
		return err
	}
	defer rec.Close()
	sessions, err := rec.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%s  %-24s %s  %s reports\n", s.ID, s.Remote,
			s.StartedAt.Format(time.RFC3339), humanize.Comma(int64(s.Reports)))
	}
	return nil
}
