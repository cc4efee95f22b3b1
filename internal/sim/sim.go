// Package sim drives the per-timestep simulation loop: force
// computation into the aggregate buffers, the two integrator half
// steps, periodic updaters and observation hooks.
package sim

import (
	"context"
	"fmt"

	"github.com/wouterel/meshmd/internal/forces"
	"github.com/wouterel/meshmd/internal/integrate"
	"github.com/wouterel/meshmd/internal/particle"
)

// Metric observes the particle state once per step and reduces it to a
// single value at the end of a run.
type Metric interface {
	Name() string
	Observe(store *particle.Store, timestep uint64)
	Value() float64
	Reset()
}

// Observer receives the state after every completed step.
type Observer interface {
	OnStep(store *particle.Store, timestep uint64)
}

// Updater mutates simulation state between integration steps.
type Updater interface {
	Update(timestep uint64)
}

type Config struct {
	Steps uint64
	// ValidateState aborts the run when positions or velocities go
	// NaN/Inf. Off by default: numerical faults otherwise propagate
	// silently, matching the integrator kernels.
	ValidateState bool
}

type Result struct {
	StepsTaken uint64
	Metrics    map[string]float64
}

type scheduledUpdater struct {
	u      Updater
	period uint64
}

// Simulation owns the force computes and integration method for one
// particle store. Force and virial buffers follow a single-writer
// discipline: each compute overwrites its own buffers, and only the
// loop here merges them into the store's aggregate.
type Simulation struct {
	store     *particle.Store
	method    integrate.Method
	computes  []forces.Compute
	updaters  []scheduledUpdater
	metrics   []Metric
	observers []Observer
}

func New(store *particle.Store, method integrate.Method) *Simulation {
	return &Simulation{
		store:  store,
		method: method,
	}
}

func (s *Simulation) AddForceCompute(c forces.Compute) { s.computes = append(s.computes, c) }
func (s *Simulation) AddMetric(m Metric)               { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer)           { s.observers = append(s.observers, o) }

// AddUpdater schedules an updater to run every period steps.
func (s *Simulation) AddUpdater(u Updater, period uint64) {
	if period == 0 {
		period = 1
	}
	s.updaters = append(s.updaters, scheduledUpdater{u: u, period: period})
}

// computeForces zeroes the aggregate buffers and merges every compute's
// freshly overwritten output into them.
func (s *Simulation) computeForces(timestep uint64) error {
	s.store.ZeroNetForce()

	netForce := s.store.Forces()
	netEnergy := s.store.Energies()
	netVirial := s.store.Virial()

	for _, c := range s.computes {
		if err := c.ComputeForces(timestep); err != nil {
			return fmt.Errorf("sim: step %d: %w", timestep, err)
		}
		for i, f := range c.Forces() {
			netForce[i] = netForce[i].Add(f)
		}
		for i, e := range c.Energies() {
			netEnergy[i] += e
		}
		for i, v := range c.Virial() {
			netVirial[i] += v
		}
	}
	return nil
}

// primeAccelerations computes initial forces and seeds a = F/m so the
// first half step sees a consistent acceleration.
func (s *Simulation) primeAccelerations() error {
	if err := s.computeForces(0); err != nil {
		return err
	}
	accel := s.store.Accelerations()
	force := s.store.Forces()
	mass := s.store.Masses()
	for i := 0; i < s.store.N(); i++ {
		accel[i] = force[i].Scale(1.0 / mass[i])
	}
	return nil
}

func (s *Simulation) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Steps == 0 {
		return nil, fmt.Errorf("sim: steps must be positive")
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	if err := s.primeAccelerations(); err != nil {
		return nil, err
	}

	result := &Result{Metrics: make(map[string]float64)}

	for t := uint64(0); t < cfg.Steps; t++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.method.StepOne(t)

		for _, su := range s.updaters {
			if t%su.period == 0 {
				su.u.Update(t)
			}
		}

		if err := s.computeForces(t); err != nil {
			return result, err
		}

		s.method.StepTwo(t)

		for _, m := range s.metrics {
			m.Observe(s.store, t)
		}
		for _, o := range s.observers {
			o.OnStep(s.store, t)
		}

		if cfg.ValidateState && !s.store.Valid() {
			return result, fmt.Errorf("sim: invalid state (NaN/Inf) at step %d", t)
		}

		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
