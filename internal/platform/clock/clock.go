// Package clock defines the injectable time source (§6, §9): the
// session and scheduler never consult wall-clock directly, so tests
// can freeze time.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the production Clock backed by time.Now.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Frozen is a test Clock that always returns the same instant until
// Advance is called.
type Frozen struct {
	t time.Time
}

// NewFrozen returns a Frozen clock fixed at t.
func NewFrozen(t time.Time) *Frozen { return &Frozen{t: t} }

func (f *Frozen) Now() time.Time { return f.t }

// Advance moves the frozen clock forward by d.
func (f *Frozen) Advance(d time.Duration) { f.t = f.t.Add(d) }

// Set pins the frozen clock to t.
func (f *Frozen) Set(t time.Time) { f.t = t }
