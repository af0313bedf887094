// Package report collects per-stage counts, warnings and notes of a migration
// run and renders them as the end-of-run JSON summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Log is what the stages of one write attempt accumulate. A retried
// transaction starts from a fresh Log so nothing is counted twice.
type Log struct {
	Counts   map[string]int `json:"counts"`
	Warnings []string       `json:"warnings"`
	Notes    []string       `json:"notes"`
}

func NewLog() *Log {
	return &Log{
		Counts:   map[string]int{},
		Warnings: []string{},
		Notes:    []string{},
	}
}

// SetCurrent records how many legacy documents a stage read.
func (l *Log) SetCurrent(entity string, n int) {
	l.Counts[entity+"_current"] = n
}

// AddNew adds to the number of documents a stage wrote (or would write).
func (l *Log) AddNew(entity string, n int) {
	l.Counts[entity+"_new"] += n
}

// Add increments an arbitrary counter, e.g. "tm_tags_skipped".
func (l *Log) Add(key string, n int) {
	l.Counts[key] += n
}

// DiscardWrites turns every <entity>_new count into <entity>_attempted and
// zeroes the original. Used when an aborted transaction rolled the writes back.
func (l *Log) DiscardWrites() {
	for key, n := range l.Counts {
		entity, ok := strings.CutSuffix(key, "_new")
		if !ok {
			continue
		}
		l.Counts[entity+"_attempted"] += n
		l.Counts[key] = 0
	}
}

func (l *Log) Warn(format string, args ...interface{}) {
	l.Warnings = append(l.Warnings, fmt.Sprintf(format, args...))
}

func (l *Log) Note(format string, args ...interface{}) {
	l.Notes = append(l.Notes, fmt.Sprintf(format, args...))
}

// Report is the summary of a whole run.
type Report struct {
	RunID         string    `json:"runId"`
	Mode          string    `json:"mode"`
	Transactional bool      `json:"transactional"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Log
	Error string `json:"error,omitempty"`
}

func New(dryRun bool) *Report {
	mode := "live"
	if dryRun {
		mode = "dry-run"
	}
	return &Report{
		RunID:     uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		Log:       *NewLog(),
	}
}

// Absorb merges an attempt log into the report.
func (r *Report) Absorb(l *Log) {
	if l == nil {
		return
	}
	for k, v := range l.Counts {
		r.Counts[k] += v
	}
	r.Warnings = append(r.Warnings, l.Warnings...)
	r.Notes = append(r.Notes, l.Notes...)
}

// Count returns a counter, 0 if unset.
func (r *Report) Count(key string) int {
	return r.Counts[key]
}

// Finish stamps the end time and records err, if any.
func (r *Report) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		r.Error = err.Error()
	}
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
