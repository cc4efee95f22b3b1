// Package variant provides time-dependent scalar schedules keyed by
// simulation timestep, used for temperature targets and box-size
// interpolation.
package variant

// Variant maps a simulation timestep to a scalar value.
type Variant interface {
	Value(timestep uint64) float64
}

// Constant always returns the same value.
type Constant float64

func (c Constant) Value(uint64) float64 { return float64(c) }

// Ramp interpolates linearly from A to B over [TStart, TStop], clamping
// outside the window.
type Ramp struct {
	A, B          float64
	TStart, TStop uint64
}

func (r Ramp) Value(timestep uint64) float64 {
	if timestep <= r.TStart || r.TStop <= r.TStart {
		return r.A
	}
	if timestep >= r.TStop {
		return r.B
	}
	f := float64(timestep-r.TStart) / float64(r.TStop-r.TStart)
	return r.A + (r.B-r.A)*f
}

// Fraction returns the interpolation fraction in [0,1] for a timestep,
// which box resizing uses to mix two boxes.
func (r Ramp) Fraction(timestep uint64) float64 {
	if timestep <= r.TStart || r.TStop <= r.TStart {
		return 0
	}
	if timestep >= r.TStop {
		return 1
	}
	return float64(timestep-r.TStart) / float64(r.TStop-r.TStart)
}

// Cycle ramps from A to B and back with the given period.
type Cycle struct {
	A, B   float64
	Period uint64
}

func (c Cycle) Value(timestep uint64) float64 {
	if c.Period == 0 {
		return c.A
	}
	phase := timestep % c.Period
	half := c.Period / 2
	if half == 0 {
		return c.A
	}
	if phase < half {
		return c.A + (c.B-c.A)*float64(phase)/float64(half)
	}
	return c.B + (c.A-c.B)*float64(phase-half)/float64(c.Period-half)
}
