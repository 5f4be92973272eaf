package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"groundlink/telemetry"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id   TEXT PRIMARY KEY,
		remote       TEXT NOT NULL,
		started_at   INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reports (
		session_id   TEXT NOT NULL,
		received_at  INTEGER NOT NULL,
		roll         INTEGER,
		pitch        INTEGER,
		yaw          INTEGER,
		z            INTEGER,
		battery      INTEGER,
		alt_mode     INTEGER,
		payload      BLOB NOT NULL,
		FOREIGN KEY(session_id) REFERENCES sessions(session_id)
	);
	CREATE INDEX IF NOT EXISTS reports_session_time ON reports (session_id, received_at);
`

// Session is one run of the ground station against a vehicle
type Session struct {
	ID        uuid.UUID
	Remote    string
	StartedAt time.Time
	Reports   int
}

// Entry is a stored report with its receive time
type Entry struct {
	At     time.Time
	Report *telemetry.Report
}

// Recorder stores ground reports in a sqlite database
type Recorder struct {
	db *sql.DB
}

// Open opens or creates the database at path and makes sure the
// schema exists
func Open(ctx context.Context, path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// a single writer keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// StartSession registers a new session for reports coming from
// remote and returns its id
func (r *Recorder) StartSession(ctx context.Context, remote string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, remote, started_at) VALUES (?, ?, ?)`,
		id.String(), remote, time.Now().UnixNano(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

// Record stores report as received at the given time
func (r *Recorder) Record(ctx context.Context, session uuid.UUID, at time.Time, report *telemetry.Report) error {
	s := &report.SensorData
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (
			session_id, received_at, roll, pitch, yaw, z, battery, alt_mode, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.String(), at.UnixNano(), s.Roll, s.Pitch, s.Yaw, s.Z, s.Battery,
		int(report.StateAndMode.AltMode), report.Encode(),
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

// Reports returns the reports of a session in receive order
func (r *Recorder) Reports(ctx context.Context, session uuid.UUID) (entries []Entry, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT received_at, payload FROM reports WHERE session_id = ? ORDER BY received_at, rowid`,
		session.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var at int64
		var payload []byte
		if err := rows.Scan(&at, &payload); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		report, err := telemetry.DecodeReport(payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{At: time.Unix(0, at), Report: report})
	}
	return entries, rows.Err()
}

// Sessions lists all sessions, oldest first, with their report counts
func (r *Recorder) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.session_id, s.remote, s.started_at, COUNT(r.session_id)
		FROM sessions s LEFT JOIN reports r ON r.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.started_at, s.session_id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var id string
		var started int64
		var s Session
		if err := rows.Scan(&id, &s.Remote, &started, &s.Reports); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("session %q: %w", id, err)
		}
		s.StartedAt = time.Unix(0, started)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Close closes the database
func (r *Recorder) Close() error {
	return r.db.Close()
}
