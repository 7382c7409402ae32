package chx

import "time"

// Clock is the Inserter's pluggable time source (spec §9 "Time source
// injection... so tests can advance virtual time deterministically").
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
