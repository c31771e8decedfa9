// Package telemetry records per-tick run traces as CSV and summarizes score
// history.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Sample is one trace row.
type Sample struct {
	Tick     int     `csv:"tick"`
	SimTime  float64 `csv:"sim_time"`
	TimeLeft float64 `csv:"time_left"`
	Score    int     `csv:"score"`
	Mood     string  `csv:"mood"`
	Live     int     `csv:"live"`
	Phase    string  `csv:"phase"`
	Spawned  bool    `csv:"spawned"`
	Matches  int     `csv:"matches"`
	Stale    int     `csv:"stale"`
}

// Recorder appends samples to a CSV stream, writing the header once.
// A nil *Recorder is a valid no-op recorder.
type Recorder struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
	rows          int
}

// NewRecorder writes samples to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// CreateRecorder creates (or truncates) a CSV file at path.
// Returns nil if path is empty (recording disabled).
func CreateRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return &Recorder{w: f, closer: f}, nil
}

// Write appends one sample.
func (r *Recorder) Write(s Sample) error {
	if r == nil {
		return nil
	}

	records := []Sample{s}

	if !r.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	r.rows++

	return nil
}

// Rows returns how many samples have been written.
func (r *Recorder) Rows() int {
	if r == nil {
		return 0
	}
	return r.rows
}

// Close closes the underlying file, if the recorder owns one.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadSamples parses a trace written by a Recorder.
func ReadSamples(data []byte) ([]Sample, error) {
	var samples []Sample
	if err := gocsv.UnmarshalBytes(data, &samples); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return samples, nil
}
