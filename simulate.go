package main

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"groundlink/internal/config"
	"groundlink/internal/emitter"
	"groundlink/telemetry"
)

// simulate runs a vehicle on remote.port sending reports to the
// ground station at target, for bench testing without hardware
func simulate(ctx context.Context, cfg *config.Config, target string, rate, multiplier int) error {
	if rate <= 0 {
		return errors.New("rate must be positive")
	}
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	em, err := emitter.Listen(net.JoinHostPort("", strconv.Itoa(cfg.Remote.Port)), codec)
	if err != nil {
		return err
	}
	defer em.Close()
	if err := em.SetTarget(target); err != nil {
		return err
	}
	em.SetMultiplier(multiplier)

	v := emitter.NewVehicle()
	v.Update(func(r *telemetry.Report) {
		r.SensorData.Battery = 12600
	})
	go func() {
		err := em.Commands(ctx, v.Apply)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("command socket: %v", err)
		}
	}()

	log.Infof("simulated vehicle on %v sending to %s at %d Hz", em.LocalAddr(), target, rate)
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()
	for tick := 0; ; tick++ {
		select {
		case <-ctx.Done():
			log.Infof("sent %d reports, %d skipped", em.Reports(), em.Skipped())
			return ctx.Err()
		case <-ticker.C:
		}
		v.Update(func(r *telemetry.Report) {
			r.SensorData.Yaw = int16((tick * 10) % 3600)
			// drain 1 mV per second
			if tick%rate == 0 && r.SensorData.Battery > 0 {
				r.SensorData.Battery--
			}
		})
		if _, err := em.SendReport(v.Report()); err != nil {
			log.Warnf("sending report: %v", err)
		}
	}
}
