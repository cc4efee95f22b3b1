package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/wouterel/meshmd/internal/analysis"
	"github.com/wouterel/meshmd/internal/compute"
	"github.com/wouterel/meshmd/internal/config"
	"github.com/wouterel/meshmd/internal/forces"
	"github.com/wouterel/meshmd/internal/geometry"
	"github.com/wouterel/meshmd/internal/integrate"
	"github.com/wouterel/meshmd/internal/mesh"
	"github.com/wouterel/meshmd/internal/metrics"
	"github.com/wouterel/meshmd/internal/particle"
	"github.com/wouterel/meshmd/internal/sim"
	"github.com/wouterel/meshmd/internal/storage"
	"github.com/wouterel/meshmd/internal/updater"
	"github.com/wouterel/meshmd/internal/variant"
)

const version = "0.3.0"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))
	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ff88"))
	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))
)

var (
	dataDir    string
	configFile string
	preset     string
	steps      int
	dt         float64
	seed       int64
	plot       bool
	save       bool
	validate   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meshmd",
		Short: "molecular dynamics with pair and mesh bending forces",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".meshmd", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&steps, "steps", 0, "override step count")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "override timestep")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the temperature trace")
	runCmd.Flags().BoolVar(&save, "save", false, "archive the run under the data directory")
	runCmd.Flags().BoolVar(&validate, "validate", false, "abort on NaN/Inf state")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot an archived run's metric traces",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and correlation analysis of the temperature trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	backendCmd := &cobra.Command{
		Use:   "backend",
		Short: "show the active compute backend",
		Run: func(cmd *cobra.Command, args []string) {
			b := compute.AutoSelectBackend()
			if b.Available() {
				fmt.Println(okStyle.Render(b.Name()))
			} else {
				fmt.Println(warnStyle.Render(b.Name() + " (unavailable)"))
			}
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("meshmd %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, presetsCmd, initCmd, backendCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	backend := compute.AutoSelectBackend()

	var store *particle.Store
	var membrane *mesh.Mesh
	if cfg.Mesh.Enabled {
		var err error
		store, membrane, err = buildMembrane(cfg)
		if err != nil {
			return err
		}
	} else {
		store = buildLattice(cfg)
	}
	group := particle.All(store)
	seedVelocities(store, cfg.Integrator.TempStart, cfg.Seed)

	pair := forces.NewPairPotential(store)
	pair.EnergyShift = cfg.Pair.Shift
	params := forces.NewLJParams(cfg.Pair.Sigma, cfg.Pair.Epsilon, cfg.Pair.Delta)
	if err := pair.SetParams("A", "A", params, cfg.Pair.RCut); err != nil {
		return err
	}

	tVariant := temperatureVariant(cfg)
	var method integrate.Method
	switch cfg.Integrator.Kind {
	case "npt":
		npt := integrate.NewNPTMTK(store, group, backend, cfg.Dt, tVariant,
			cfg.Integrator.Tau, cfg.Integrator.Pressure, cfg.Integrator.TauS)
		npt.BlockSize = cfg.BlockSize
		method = npt
	case "nvt":
		nvt := integrate.NewNVT(store, group, backend, cfg.Dt, tVariant, cfg.Integrator.Tau)
		nvt.BlockSize = cfg.BlockSize
		method = nvt
	}

	s := sim.New(store, method)
	s.AddForceCompute(pair)

	if membrane != nil {
		bend := forces.NewHelfrichBending(store, membrane)
		if err := bend.SetParams("membrane", cfg.Mesh.Stiffness); err != nil {
			return err
		}
		s.AddForceCompute(bend)
	}

	temp := metrics.NewKineticTemperature(group.NDOF())
	press := metrics.NewPressure()
	poten := metrics.NewPotentialEnergy()
	s.AddMetric(temp)
	s.AddMetric(press)
	s.AddMetric(poten)
	s.AddMetric(metrics.NewTemperatureDrift(group.NDOF()))

	if cfg.Resize.Enabled {
		box1 := store.Box()
		box2 := geometry.Box{
			Lx: box1.Lx * cfg.Resize.FinalScale,
			Ly: box1.Ly * cfg.Resize.FinalScale,
			Lz: box1.Lz * cfg.Resize.FinalScale,
		}
		ramp := variant.Ramp{A: 0, B: 1, TStart: cfg.Resize.TStart, TStop: cfg.Resize.TStop}
		s.AddUpdater(updater.NewBoxResize(store, backend, box1, box2, ramp), cfg.Resize.Period)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(titleStyle.Render("meshmd"))
	fmt.Printf("%d particles, %s, backend %s\n", store.N(), cfg.Integrator.Kind, backend.Name())

	start := time.Now()
	result, err := s.Run(ctx, sim.Config{Steps: uint64(cfg.Steps), ValidateState: validate})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed)
	fmt.Fprintf(w, "steps/sec\t%.0f\n", float64(result.StepsTaken)/elapsed.Seconds())
	fmt.Fprintf(w, "box\t%.3f x %.3f x %.3f\n", store.Box().Lx, store.Box().Ly, store.Box().Lz)
	for name, val := range result.Metrics {
		fmt.Fprintf(w, "%s\t%.6f\n", name, val)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{
			Seed:       cfg.Seed,
			Dt:         cfg.Dt,
			Steps:      result.StepsTaken,
			Integrator: cfg.Integrator.Kind,
			Metrics:    result.Metrics,
		}
		traces := map[string][]float64{
			"temperature":      temp.Trace(),
			"pressure":         press.Trace(),
			"potential_energy": poten.Trace(),
		}
		runID, err := st.Save(meta, traces, store)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if plot {
		trace := temp.Trace()
		if len(trace) > 0 {
			fmt.Println()
			fmt.Println(asciigraph.Plot(trace,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("kinetic temperature"),
			))
		}

		_, g := analysis.RadialDistribution(store, cfg.Pair.RCut, 40)
		if len(g) > 0 {
			fmt.Println()
			fmt.Println(asciigraph.Plot(g,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("g(r), final configuration"),
			))
		}
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traces, err := st.LoadTraces(runID)
	if err != nil {
		return err
	}

	data := traces["temperature"]
	if len(data) < 2 {
		return fmt.Errorf("no temperature trace for run %s", runID)
	}

	fmt.Printf("analysis: %s (%d samples)\n\n", meta.ID, len(data))

	ps := analysis.PowerSpectrum(data)
	fmt.Println(asciigraph.Plot(ps[:len(ps)/2],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("temperature power spectrum"),
	))
	fmt.Println()

	maxLag := len(data) / 4
	acf := analysis.Autocorrelation(data, maxLag)
	fmt.Println(asciigraph.Plot(acf,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("temperature autocorrelation"),
	))

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tINTEG\tN\tSTEPS\tDT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.NParticles,
			run.Steps,
			run.Dt,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traces, err := st.LoadTraces(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", int(meta.Steps))

	for _, name := range []string{"temperature", "pressure", "potential_energy"} {
		data := traces[name]
		if len(data) == 0 {
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		))
		fmt.Println()
	}

	return nil
}

// buildLattice places particles on a simple cubic lattice filling the
// periodic box, one particle per cell.
func buildLattice(cfg *config.Config) *particle.Store {
	n := cfg.Lattice.Cells
	l := cfg.BoxLength()
	store := particle.NewStore(cfg.NParticles(), geometry.Box{Lx: l, Ly: l, Lz: l}, []string{"A"})

	pos := store.Positions()
	idx := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				pos[idx] = geometry.Vec3{
					X: (float64(i)+0.5)*cfg.Lattice.Spacing - l/2,
					Y: (float64(j)+0.5)*cfg.Lattice.Spacing - l/2,
					Z: (float64(k)+0.5)*cfg.Lattice.Spacing - l/2,
				}
				idx++
			}
		}
	}
	return store
}

// buildMembrane places the particles on a closed icosahedron membrane
// centered in the periodic box, with the bond topology derived from its
// faces.
func buildMembrane(cfg *config.Config) (*particle.Store, *mesh.Mesh, error) {
	verts, faces := mesh.Icosahedron(cfg.Mesh.Radius)
	m, err := mesh.FromTriangles(faces, []string{"membrane"})
	if err != nil {
		return nil, nil, err
	}

	l := cfg.BoxLength()
	store := particle.NewStore(len(verts), geometry.NewCubicBox(l), []string{"A"})
	copy(store.Positions(), verts)
	return store, m, nil
}

// seedVelocities draws Maxwell-Boltzmann velocities at the given
// temperature and removes the net momentum.
func seedVelocities(store *particle.Store, temp float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	vel := store.Velocities()
	mass := store.Masses()

	var pSum geometry.Vec3
	for i := 0; i < store.N(); i++ {
		scale := math.Sqrt(temp / mass[i])
		vel[i] = geometry.Vec3{
			X: rng.NormFloat64() * scale,
			Y: rng.NormFloat64() * scale,
			Z: rng.NormFloat64() * scale,
		}
		pSum = pSum.Add(vel[i].Scale(mass[i]))
	}

	drift := pSum.Scale(1 / float64(store.N()))
	for i := 0; i < store.N(); i++ {
		vel[i] = vel[i].Sub(drift.Scale(1 / mass[i]))
	}
}

func temperatureVariant(cfg *config.Config) variant.Variant {
	if cfg.Integrator.TempStart == cfg.Integrator.TempStop {
		return variant.Constant(cfg.Integrator.TempStart)
	}
	return variant.Ramp{
		A:      cfg.Integrator.TempStart,
		B:      cfg.Integrator.TempStop,
		TStart: 0,
		TStop:  uint64(cfg.Steps),
	}
}
