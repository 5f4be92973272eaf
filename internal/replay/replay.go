package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	log "github.com/sirupsen/logrus"

	"groundlink/telemetry"
	"groundlink/wire"
)

// Options selects which datagrams of a capture are replayed
type Options struct {
	// Port is the UDP destination port ground reports were sent to
	Port int
	// Codec defaults to a sum16 codec
	Codec *wire.Codec
}

// Handler receives each decoded report with its capture timestamp
type Handler func(at time.Time, r *telemetry.Report)

// Summary counts what a replay saw
type Summary struct {
	Packets   int
	Datagrams int
	Reports   int
	Malformed int
	First     time.Time
	Last      time.Time
}

// Duration returns the capture time spanned by the replayed reports
func (s Summary) Duration() time.Duration {
	if s.Reports == 0 {
		return 0
	}
	return s.Last.Sub(s.First)
}

// ReadFile replays the pcap capture at path, see Read
func ReadFile(ctx context.Context, path string, opts Options, fn Handler) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	s, err := Read(ctx, f, opts, fn)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes the UDP datagrams sent to opts.Port in a pcap capture
// and passes every valid ground report to fn. Datagrams that fail
// validation are counted and skipped.
func Read(ctx context.Context, r io.Reader, opts Options, fn Handler) (Summary, error) {
	var s Summary
	codec := opts.Codec
	if codec == nil {
		codec = wire.NewCodec(wire.ChecksumSum16)
	}
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return s, fmt.Errorf("opening capture: %w", err)
	}

	source := gopacket.NewPacketSource(pr, pr.LinkType())
	source.NoCopy = true
	for {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}
		packet, err := source.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s, err
		}
		s.Packets++

		udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok || int(udp.DstPort) != opts.Port {
			continue
		}
		s.Datagrams++

		at := packet.Metadata().Timestamp
		p, err := codec.Decode(udp.Payload, wire.TypeGroundReport, telemetry.ReportSize)
		if err != nil {
			s.Malformed++
			log.Debugf("packet %d: %v", s.Packets, err)
			continue
		}
		report, err := telemetry.DecodeReport(p.Payload)
		if err != nil {
			s.Malformed++
			log.Debugf("packet %d: %v", s.Packets, err)
			continue
		}
		if s.Reports == 0 {
			s.First = at
		}
		s.Last = at
		s.Reports++
		if fn != nil {
			fn(at, report)
		}
	}
	log.Debugf("replay complete: %d packets, %d reports, %d malformed", s.Packets, s.Reports, s.Malformed)
	return s, nil
}
