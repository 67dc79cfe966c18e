package scheduler

import "time"

// Policy computes the debounce delay of a check from the size of the buffer.
// Every LinesPerStep lines add Base to the delay, up to Max.
type Policy struct {
	Base         time.Duration
	Max          time.Duration
	LinesPerStep int
}

// DefaultPolicy waits 200ms per 2000 lines, never more than 10s.
func DefaultPolicy() Policy {
	return Policy{
		Base:         200 * time.Millisecond,
		Max:          10 * time.Second,
		LinesPerStep: 2000,
	}
}

// Delay returns the debounce delay for a buffer of lineCount lines.
// Buffers smaller than one step still wait Base.
func (p Policy) Delay(lineCount int) time.Duration {
	def := DefaultPolicy()
	if p.Base <= 0 {
		p.Base = def.Base
	}
	if p.Max <= 0 {
		p.Max = def.Max
	}
	if p.LinesPerStep <= 0 {
		p.LinesPerStep = def.LinesPerStep
	}

	steps := max(1, lineCount/p.LinesPerStep)
	if steps > int(p.Max/p.Base) {
		return p.Max
	}
	return min(p.Max, p.Base*time.Duration(steps))
}
