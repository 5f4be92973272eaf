package telemetry

import "fmt"

// TruncatedRecordError is returned when a payload is shorter than
// the fixed size of the record being decoded.
type TruncatedRecordError struct {
	Record string
	Want   int
	Got    int
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("truncated %s: got %d bytes, expecting %d", e.Record, e.Got, e.Want)
}

func checkSize(record string, payload []byte, want int) error {
	if len(payload) < want {
		return &TruncatedRecordError{Record: record, Want: want, Got: len(payload)}
	}
	return nil
}
