package transceiver

import "sync/atomic"

// Stats counts transceiver activity since creation
type Stats struct {
	Datagrams  uint64
	Bytes      uint64
	Malformed  uint64
	Reports    uint64
	Reconnects uint64
	Sends      uint64
	SendFaults uint64
}

type counters struct {
	datagrams  atomic.Uint64
	bytes      atomic.Uint64
	malformed  atomic.Uint64
	reports    atomic.Uint64
	reconnects atomic.Uint64
	sends      atomic.Uint64
	sendFaults atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Datagrams:  c.datagrams.Load(),
		Bytes:      c.bytes.Load(),
		Malformed:  c.malformed.Load(),
		Reports:    c.reports.Load(),
		Reconnects: c.reconnects.Load(),
		Sends:      c.sends.Load(),
		SendFaults: c.sendFaults.Load(),
	}
}
