// Package metrics reduces per-step particle state to run-level
// observables: kinetic temperature, pressure and potential energy.
package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wouterel/meshmd/internal/particle"
)

// sampler accumulates one scalar per observed step.
type sampler struct {
	samples []float64
}

func (s *sampler) add(v float64) { s.samples = append(s.samples, v) }

func (s *sampler) reset() { s.samples = s.samples[:0] }

func (s *sampler) mean() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	return stat.Mean(s.samples, nil)
}

// Trace returns the raw per-step samples, in observation order.
func (s *sampler) Trace() []float64 { return s.samples }

// KineticTemperature tracks sum(m*|v|^2)/ndof over the local particles.
type KineticTemperature struct {
	sampler
	ndof int
}

func NewKineticTemperature(ndof int) *KineticTemperature {
	if ndof < 1 {
		ndof = 1
	}
	return &KineticTemperature{ndof: ndof}
}

func (m *KineticTemperature) Name() string { return "temperature" }

func (m *KineticTemperature) Observe(store *particle.Store, timestep uint64) {
	vel := store.Velocities()
	mass := store.Masses()
	sum := 0.0
	for i := 0; i < store.N(); i++ {
		sum += mass[i] * vel[i].NormSq()
	}
	m.add(sum / float64(m.ndof))
}

func (m *KineticTemperature) Value() float64 { return m.mean() }
func (m *KineticTemperature) Reset()         { m.reset() }

// StdDev reports the spread of the temperature trace.
func (m *KineticTemperature) StdDev() float64 {
	if len(m.samples) < 2 {
		return 0
	}
	return stat.StdDev(m.samples, nil)
}

// Pressure estimates the isotropic pressure from kinetic energy and the
// virial trace: P = (sum m|v|^2 + W) / (3V).
type Pressure struct {
	sampler
}

func NewPressure() *Pressure { return &Pressure{} }

func (m *Pressure) Name() string { return "pressure" }

func (m *Pressure) Observe(store *particle.Store, timestep uint64) {
	vel := store.Velocities()
	mass := store.Masses()
	ke2 := 0.0
	for i := 0; i < store.N(); i++ {
		ke2 += mass[i] * vel[i].NormSq()
	}

	virial := store.Virial()
	pitch := store.VirialPitch()
	w := 0.0
	for _, row := range [3]int{0, 3, 5} {
		w += floats.Sum(virial[row*pitch : row*pitch+store.N()])
	}

	m.add((ke2 + w) / (3 * store.Box().Volume()))
}

func (m *Pressure) Value() float64 { return m.mean() }
func (m *Pressure) Reset()         { m.reset() }

// PotentialEnergy sums the aggregate per-particle potential energies.
type PotentialEnergy struct {
	sampler
}

func NewPotentialEnergy() *PotentialEnergy { return &PotentialEnergy{} }

func (m *PotentialEnergy) Name() string { return "potential_energy" }

func (m *PotentialEnergy) Observe(store *particle.Store, timestep uint64) {
	m.add(floats.Sum(store.Energies()[:store.N()]))
}

func (m *PotentialEnergy) Value() float64 { return m.mean() }
func (m *PotentialEnergy) Reset()         { m.reset() }

// TemperatureDrift tracks the maximum relative excursion of the kinetic
// temperature from its first observed value.
type TemperatureDrift struct {
	ndof     int
	initial  float64
	maxDrift float64
	samples  int
}

func NewTemperatureDrift(ndof int) *TemperatureDrift {
	if ndof < 1 {
		ndof = 1
	}
	return &TemperatureDrift{ndof: ndof}
}

func (m *TemperatureDrift) Name() string { return "temperature_drift" }

func (m *TemperatureDrift) Observe(store *particle.Store, timestep uint64) {
	vel := store.Velocities()
	mass := store.Masses()
	sum := 0.0
	for i := 0; i < store.N(); i++ {
		sum += mass[i] * vel[i].NormSq()
	}
	temp := sum / float64(m.ndof)

	if m.samples == 0 {
		m.initial = temp
	}
	m.samples++

	if m.initial != 0 {
		drift := (temp - m.initial) / m.initial
		if drift < 0 {
			drift = -drift
		}
		if drift > m.maxDrift {
			m.maxDrift = drift
		}
	}
}

func (m *TemperatureDrift) Value() float64 { return m.maxDrift }

func (m *TemperatureDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
