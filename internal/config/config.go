package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.005
	DefaultSteps     = 1000
	DefaultCells     = 5
	DefaultSpacing   = 1.5
	DefaultEpsilon   = 1.0
	DefaultSigma     = 1.0
	DefaultRCut      = 2.5
	DefaultStiffness = 1.0
	DefaultRadius    = 1.5
	DefaultTau       = 1.0
	DefaultTauS      = 1.0
	DefaultTemp      = 1.0
	DefaultPressure  = 0.5
	DefaultBlockSize = 64
)

type Config struct {
	Steps      int              `yaml:"steps"`
	Dt         float64          `yaml:"dt"`
	Seed       int64            `yaml:"seed"`
	BlockSize  int              `yaml:"block_size"`
	Lattice    LatticeConfig    `yaml:"lattice"`
	Pair       PairConfig       `yaml:"pair"`
	Mesh       MeshConfig       `yaml:"mesh"`
	Integrator IntegratorConfig `yaml:"integrator"`
	Resize     ResizeConfig     `yaml:"resize"`
}

type LatticeConfig struct {
	Cells   int     `yaml:"cells"`
	Spacing float64 `yaml:"spacing"`
}

type PairConfig struct {
	Epsilon float64 `yaml:"epsilon"`
	Sigma   float64 `yaml:"sigma"`
	Delta   float64 `yaml:"delta"`
	RCut    float64 `yaml:"r_cut"`
	Shift   bool    `yaml:"shift"`
}

// MeshConfig switches the run from a lattice gas to a closed membrane:
// the particles become the vertices of an icosahedron of the given
// circumradius under the bending force, with the pair potential acting
// as excluded volume.
type MeshConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Stiffness float64 `yaml:"stiffness"`
	Radius    float64 `yaml:"radius"`
}

type IntegratorConfig struct {
	Kind      string  `yaml:"kind"`
	Tau       float64 `yaml:"tau"`
	TauS      float64 `yaml:"tau_s"`
	Pressure  float64 `yaml:"pressure"`
	TempStart float64 `yaml:"temp_start"`
	TempStop  float64 `yaml:"temp_stop"`
}

type ResizeConfig struct {
	Enabled        bool    `yaml:"enabled"`
	FinalScale     float64 `yaml:"final_scale"`
	TStart         uint64  `yaml:"t_start"`
	TStop          uint64  `yaml:"t_stop"`
	Period         uint64  `yaml:"period"`
	ScaleParticles bool    `yaml:"scale_particles"`
}

func DefaultConfig() *Config {
	return &Config{
		Steps:     DefaultSteps,
		Dt:        DefaultDt,
		BlockSize: DefaultBlockSize,
		Lattice: LatticeConfig{
			Cells:   DefaultCells,
			Spacing: DefaultSpacing,
		},
		Pair: PairConfig{
			Epsilon: DefaultEpsilon,
			Sigma:   DefaultSigma,
			RCut:    DefaultRCut,
			Shift:   true,
		},
		Mesh: MeshConfig{
			Stiffness: DefaultStiffness,
			Radius:    DefaultRadius,
		},
		Integrator: IntegratorConfig{
			Kind:      "npt",
			Tau:       DefaultTau,
			TauS:      DefaultTauS,
			Pressure:  DefaultPressure,
			TempStart: DefaultTemp,
			TempStop:  DefaultTemp,
		},
		Resize: ResizeConfig{
			FinalScale:     0.9,
			Period:         10,
			ScaleParticles: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block_size must be positive, got %d", c.BlockSize)
	}
	if c.Lattice.Cells <= 0 {
		return fmt.Errorf("lattice cells must be positive, got %d", c.Lattice.Cells)
	}
	if c.Lattice.Spacing <= 0 {
		return fmt.Errorf("lattice spacing must be positive, got %g", c.Lattice.Spacing)
	}
	if c.Pair.RCut <= 0 {
		return fmt.Errorf("pair r_cut must be positive, got %g", c.Pair.RCut)
	}
	boxL := float64(c.Lattice.Cells) * c.Lattice.Spacing
	if c.Pair.RCut > boxL/2 {
		return fmt.Errorf("pair r_cut %g exceeds half the box length %g", c.Pair.RCut, boxL/2)
	}
	if c.Mesh.Enabled {
		if c.Mesh.Radius <= 0 {
			return fmt.Errorf("mesh radius must be positive, got %g", c.Mesh.Radius)
		}
		// the membrane diameter must stay under half the box so no pair
		// of vertices folds through the minimum image
		if 4*c.Mesh.Radius >= boxL {
			return fmt.Errorf("mesh diameter %g exceeds half the box length %g", 2*c.Mesh.Radius, boxL/2)
		}
	}
	switch c.Integrator.Kind {
	case "npt", "nvt":
	default:
		return fmt.Errorf("unknown integrator kind %q", c.Integrator.Kind)
	}
	if c.Integrator.Tau <= 0 {
		return fmt.Errorf("integrator tau must be positive, got %g", c.Integrator.Tau)
	}
	if c.Integrator.Kind == "npt" && c.Integrator.TauS <= 0 {
		return fmt.Errorf("integrator tau_s must be positive, got %g", c.Integrator.TauS)
	}
	if c.Integrator.TempStart <= 0 || c.Integrator.TempStop <= 0 {
		return fmt.Errorf("integrator temperatures must be positive, got %g to %g",
			c.Integrator.TempStart, c.Integrator.TempStop)
	}
	if c.Resize.Enabled {
		if c.Resize.FinalScale <= 0 {
			return fmt.Errorf("resize final_scale must be positive, got %g", c.Resize.FinalScale)
		}
		if c.Resize.TStop <= c.Resize.TStart {
			return fmt.Errorf("resize t_stop %d must be after t_start %d",
				c.Resize.TStop, c.Resize.TStart)
		}
		if c.Resize.Period == 0 {
			return fmt.Errorf("resize period must be positive")
		}
	}
	return nil
}

// BoxLength returns the cubic box edge implied by the lattice settings.
func (c *Config) BoxLength() float64 {
	return float64(c.Lattice.Cells) * c.Lattice.Spacing
}

// NParticles returns the particle count implied by the lattice settings.
func (c *Config) NParticles() int {
	n := c.Lattice.Cells
	return n * n * n
}
