package midiprocessor

import (
	"errors"
	"time"
)

// ErrEncoding means the roll could not be encoded or written. Nothing is
// left in the output store when it is returned.
var ErrEncoding = errors.New("midiprocessor: encoding failure")

// Result reports one input file.
type Result struct {
	Input    string
	Output   string
	Location string
	Tempo    int
	Height   int
	Holes    int
	Skipped  bool
	Elapsed  time.Duration
	Err      error
}

// Summary counts the outcome of a batch.
type Summary struct {
	RunID    string
	Rendered int
	Skipped  int
	Failed   int
	Elapsed  time.Duration
}

func Summarize(runID string, results []Result, elapsed time.Duration) Summary {
	s := Summary{RunID: runID, Elapsed: elapsed}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Skipped:
			s.Skipped++
		default:
			s.Rendered++
		}
	}
	return s
}
