// Package timehost adapts the host clock for in-process use behind
// core.HostBridge.
//
// Grounded on mod-time/main.go's now/format/parse/add/diff operation
// set, adapted from its JSON-over-socket handlers (each a
// func(map[string]any) (any, string)) into direct Go methods — no
// socket, no envelope, called straight out of a HostCallable.
package timehost

import (
	"fmt"
	"time"
)

type NowResult struct {
	Unix int64
	ISO  string
}

type DiffResult struct {
	Duration string
	Seconds  float64
}

type Clock struct{}

func NewClock() *Clock { return &Clock{} }

func (Clock) Now() NowResult {
	now := time.Now()
	return NowResult{Unix: now.Unix(), ISO: now.UTC().Format(time.RFC3339)}
}

func (Clock) Format(unixSeconds int64, layout string) string {
	return time.Unix(unixSeconds, 0).UTC().Format(layout)
}

func (Clock) Parse(value, layout string) (int64, error) {
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return 0, fmt.Errorf("parse error: %w", err)
	}
	return parsed.Unix(), nil
}

func (Clock) Add(unixSeconds int64, duration string) (NowResult, error) {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return NowResult{}, fmt.Errorf("invalid duration: %w", err)
	}
	result := time.Unix(unixSeconds, 0).Add(dur).UTC()
	return NowResult{Unix: result.Unix(), ISO: result.Format(time.RFC3339)}, nil
}

func (Clock) Diff(fromUnix, toUnix int64) DiffResult {
	diff := time.Unix(toUnix, 0).Sub(time.Unix(fromUnix, 0))
	return DiffResult{Duration: diff.String(), Seconds: diff.Seconds()}
}
