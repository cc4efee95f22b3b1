package config

var Presets = map[string]*Config{
	"gas": {
		Steps: 2000, Dt: 0.005, BlockSize: DefaultBlockSize,
		Lattice:    LatticeConfig{Cells: 5, Spacing: 2.0},
		Pair:       PairConfig{Epsilon: 1.0, Sigma: 1.0, RCut: 2.5, Shift: true},
		Integrator: IntegratorConfig{Kind: "nvt", Tau: 1.0, TempStart: 1.5, TempStop: 1.5},
	},
	"liquid": {
		Steps: 5000, Dt: 0.002, BlockSize: DefaultBlockSize,
		Lattice:    LatticeConfig{Cells: 6, Spacing: 1.2},
		Pair:       PairConfig{Epsilon: 1.0, Sigma: 1.0, RCut: 2.5, Shift: true},
		Integrator: IntegratorConfig{Kind: "npt", Tau: 0.5, TauS: 1.0, Pressure: 1.0, TempStart: 0.8, TempStop: 0.8},
	},
	"quench": {
		Steps: 10000, Dt: 0.002, BlockSize: DefaultBlockSize,
		Lattice:    LatticeConfig{Cells: 6, Spacing: 1.5},
		Pair:       PairConfig{Epsilon: 1.0, Sigma: 1.0, RCut: 2.5, Shift: true},
		Integrator: IntegratorConfig{Kind: "npt", Tau: 0.5, TauS: 1.0, Pressure: 0.5, TempStart: 1.5, TempStop: 0.3},
	},
	"membrane": {
		Steps: 5000, Dt: 0.001, BlockSize: DefaultBlockSize,
		Lattice:    LatticeConfig{Cells: 8, Spacing: 2.0},
		Pair:       PairConfig{Epsilon: 1.0, Sigma: 0.5, RCut: 1.25, Shift: true},
		Mesh:       MeshConfig{Enabled: true, Stiffness: 5.0, Radius: 1.5},
		Integrator: IntegratorConfig{Kind: "nvt", Tau: 1.0, TempStart: 0.2, TempStop: 0.2},
	},
	"compress": {
		Steps: 4000, Dt: 0.002, BlockSize: DefaultBlockSize,
		Lattice:    LatticeConfig{Cells: 6, Spacing: 1.8},
		Pair:       PairConfig{Epsilon: 1.0, Sigma: 1.0, RCut: 2.5, Shift: true},
		Integrator: IntegratorConfig{Kind: "nvt", Tau: 1.0, TempStart: 1.0, TempStop: 1.0},
		Resize: ResizeConfig{
			Enabled: true, FinalScale: 0.8,
			TStart: 500, TStop: 3500, Period: 10, ScaleParticles: true,
		},
	},
}

// GetPreset returns a copy of the named preset, so callers can layer
// flag overrides without mutating the shared table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cpy := *cfg
	return &cpy
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
