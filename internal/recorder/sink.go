package recorder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"groundlink/telemetry"
)

type queued struct {
	at     time.Time
	report *telemetry.Report
}

// Sink feeds reports to a Recorder from a bounded queue so callers
// never wait on the disk. Reports arriving while the queue is full
// are dropped and counted.
type Sink struct {
	rec     *Recorder
	session uuid.UUID

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	done   chan struct{}

	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewSink starts a worker writing into session. size is the queue
// capacity.
func NewSink(rec *Recorder, session uuid.UUID, size int) *Sink {
	if size < 1 {
		size = 1
	}
	s := &Sink{
		rec:     rec,
		session: session,
		queue:   make(chan queued, size),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Sink) run() {
	defer close(s.done)
	for q := range s.queue {
		if err := s.rec.Record(context.Background(), s.session, q.at, q.report); err != nil {
			s.failed.Add(1)
			log.WithField("session", s.session).Errorf("can't record report: %v", err)
			continue
		}
		s.written.Add(1)
	}
}

// Put queues report for writing, returning false if it was dropped.
// The sink takes ownership of report.
func (s *Sink) Put(report *telemetry.Report) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return false
	}
	select {
	case s.queue <- queued{at: time.Now(), report: report}:
		return true
	default:
		if s.dropped.Add(1) == 1 {
			log.Warn("recorder queue full, dropping reports")
		}
		return false
	}
}

// Written returns the number of reports stored
func (s *Sink) Written() uint64 { return s.written.Load() }

// Dropped returns the number of reports that were not queued
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

// Failed returns the number of reports the database refused
func (s *Sink) Failed() uint64 { return s.failed.Load() }

// Close stops accepting reports and waits until the queued ones
// are written. It does not close the Recorder.
func (s *Sink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}
