package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/config"
	"github.com/san-kum/plife/internal/export"
	"github.com/san-kum/plife/internal/gui"
	"github.com/san-kum/plife/internal/metrics"
	"github.com/san-kum/plife/internal/sim"
	"github.com/san-kum/plife/internal/store"
	"github.com/san-kum/plife/internal/tui"
	"github.com/san-kum/plife/internal/viz"
)

const fixedDt = 1.0 / 60

var (
	configFile string
	preset     string
	particles  int
	colors     int
	radius     float64
	seed       int64
	neighbors  string
	workers    int
	rulesFile  string
	verbose    bool

	benchTicks int
	snapTicks  int
	snapOut    string
	brailleOut string
	energyOut  string
	recordDir  string
	rulesOut   string
	runsDir    string
	runMetric  string
	runSVG     string
	termWidth  int
	termHeight int
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "plife",
		Short:         "particle life simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWindow,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.IntVar(&particles, "particles", config.DefaultParticles, "particle count")
	pf.IntVar(&colors, "colors", config.DefaultColors, "color count")
	pf.Float64Var(&radius, "radius", config.DefaultSensingRadius, "sensing radius in world units")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	pf.StringVar(&neighbors, "neighbors", string(sim.NeighborsBrute), "neighbor search: brute or grid")
	pf.IntVar(&workers, "workers", 1, "force pass goroutines")
	pf.StringVar(&rulesFile, "rules", "", "rule matrix file (yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "open the simulation window",
		RunE:  runWindow,
	}

	headlessCmd := &cobra.Command{
		Use:   "headless",
		Short: "run in the terminal without a GPU",
		RunE:  runHeadless,
	}
	addTermFlags(headlessCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "pick a preset and run it in the terminal",
		RunE:  runMenu,
	}
	addTermFlags(tuiCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure ticks per second for each neighbor strategy",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 120, "ticks per strategy")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "advance headless and write the frame as svg",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&snapTicks, "ticks", 600, "ticks to simulate before the snapshot")
	snapshotCmd.Flags().StringVarP(&snapOut, "out", "o", "snapshot.svg", "output svg")
	snapshotCmd.Flags().StringVar(&brailleOut, "braille", "", "also write the terminal raster as svg")
	snapshotCmd.Flags().StringVar(&energyOut, "energy", "", "also write kinetic energy over time as svg")
	snapshotCmd.Flags().StringVar(&recordDir, "record", "", "store the run and its metrics under this directory")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list recorded runs",
		RunE:  listRuns,
	}
	runsCmd.PersistentFlags().StringVar(&runsDir, "dir", "runs", "run store directory")
	runsShowCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "print a recorded run and plot one of its metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	runsShowCmd.Flags().StringVar(&runMetric, "metric", "kinetic_energy", "series to plot")
	runsShowCmd.Flags().StringVar(&runSVG, "svg", "", "also write the series as svg")
	runsCmd.AddCommand(runsShowCmd)

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "inspect or generate rule matrices",
	}
	rulesShowCmd := &cobra.Command{
		Use:   "show",
		Short: "print the matrix the config seeds",
		RunE:  func(cmd *cobra.Command, args []string) error { return showRules(cmd, false) },
	}
	rulesRandomCmd := &cobra.Command{
		Use:   "random",
		Short: "print a freshly randomized matrix",
		RunE:  func(cmd *cobra.Command, args []string) error { return showRules(cmd, true) },
	}
	rulesSaveCmd := &cobra.Command{
		Use:   "save",
		Short: "write the seeded matrix to a rules file",
		RunE:  saveRules,
	}
	rulesSaveCmd.Flags().StringVarP(&rulesOut, "out", "o", "rules.yaml", "output file")
	rulesCmd.AddCommand(rulesShowCmd, rulesRandomCmd, rulesSaveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, headlessCmd, tuiCmd, benchCmd, snapshotCmd, rulesCmd, presetsCmd, runsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addTermFlags(cmd *cobra.Command) {
	def := tui.DefaultOptions()
	cmd.Flags().IntVar(&termWidth, "width", def.Width, "canvas width in cells")
	cmd.Flags().IntVar(&termHeight, "height", def.Height, "canvas height in cells")
	cmd.Flags().IntVar(&frameRate, "fps", def.FrameRate, "ticks per second")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig resolves the config file or preset and then applies flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("colors") {
		cfg.Colors = colors
		if len(cfg.Rules) != colors {
			// a matrix for another color count cannot carry over
			cfg.Rules = nil
		}
	}
	if flags.Changed("radius") {
		cfg.SensingRadius = radius
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("neighbors") {
		cfg.Neighbors = neighbors
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if rulesFile != "" {
		rows, err := config.LoadRules(rulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rows
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	return gui.Run(ctx, gui.Options{
		Config:     cfg,
		ConfigPath: configFile,
		Logger:     newLogger(),
	})
}

func termOptions() tui.Options {
	return tui.Options{Width: termWidth, Height: termHeight, FrameRate: frameRate}
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := cfg.NewEngine()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	return tui.RunLive(ctx, eng, termOptions())
}

func runMenu(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return tui.RunInteractive(ctx, termOptions())
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if benchTicks < 1 {
		return fmt.Errorf("ticks must be >= 1, got %d", benchTicks)
	}

	type variant struct {
		neighbors sim.Neighbors
		workers   int
	}
	variants := []variant{
		{sim.NeighborsBrute, 1},
		{sim.NeighborsGrid, 1},
	}
	if n := runtime.NumCPU(); n > 1 {
		variants = append(variants, variant{sim.NeighborsBrute, n}, variant{sim.NeighborsGrid, n})
	}

	fmt.Printf("benchmarking %d particles, %d colors, %d ticks\n\n", cfg.Particles, cfg.Colors, benchTicks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NEIGHBORS\tWORKERS\tTIME\tTICKS/SEC\tMS/TICK")

	for _, v := range variants {
		p := cfg.SimParams()
		p.Neighbors = v.neighbors
		p.Workers = v.workers
		if p.Seed == 0 {
			p.Seed = 1
		}
		eng, err := sim.New(p)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < benchTicks; i++ {
			eng.Tick(fixedDt)
		}
		elapsed := time.Since(start)

		rate := float64(benchTicks) / elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%v\t%.1f\t%.2f\n",
			v.neighbors, v.workers, elapsed.Round(time.Millisecond), rate, 1000/rate)
	}
	return w.Flush()
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := cfg.NewEngine()
	if err != nil {
		return err
	}
	if snapTicks < 0 {
		return fmt.Errorf("ticks must be >= 0, got %d", snapTicks)
	}
	log := newLogger()

	p := eng.Params()
	set := metrics.Set{
		metrics.NewKineticEnergy(),
		metrics.NewMeanSpeed(),
		metrics.NewSaturation(0.95 * p.MaxSpeed),
	}
	names := make([]string, len(set))
	for i, m := range set {
		names[i] = m.Name()
	}
	rec := store.NewRecording(names...)
	for i := 0; i < snapTicks; i++ {
		eng.Tick(fixedDt)
		t := float64(i+1) * fixedDt
		set.Observe(eng, t)
		rec.Append(t, set.Values())
	}

	f, err := os.Create(snapOut)
	if err != nil {
		return err
	}
	err = export.FrameToSVG(f, eng.Frame(), export.FrameOptions{WorldWidth: p.Width, WorldHeight: p.Height})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Info("snapshot written", "path", snapOut, "ticks", snapTicks, "particles", eng.Len())

	if brailleOut != "" {
		canvas := viz.NewCanvas(tui.DefaultOptions().Width, tui.DefaultOptions().Height)
		w, h := canvas.SubSize()
		cam := camera.New(float64(w), float64(h))
		fit := min(float64(w)/p.Width, float64(h)/p.Height)
		if err := cam.SetZoomConstraints(fit, fit); err != nil {
			return err
		}
		viz.DrawParticles(canvas, eng, cam)
		svg := export.CanvasToSVG(canvas, 4, sim.Palette(eng.ColorCount()))
		if err := os.WriteFile(brailleOut, []byte(svg), 0644); err != nil {
			return err
		}
		log.Info("raster written", "path", brailleOut)
	}

	if energyOut != "" {
		if err := os.WriteFile(energyOut, []byte(export.SeriesToSVG(rec.Series("kinetic_energy"), 800, 300, "#00ffcc")), 0644); err != nil {
			return err
		}
		log.Info("energy plot written", "path", energyOut, "samples", rec.Len())
	}

	if recordDir != "" {
		st := store.New(recordDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(store.RunMetadata{
			Preset:    preset,
			Seed:      p.Seed,
			Particles: eng.Len(),
			Colors:    eng.ColorCount(),
			Neighbors: string(p.Neighbors),
			Dt:        fixedDt,
			Ticks:     snapTicks,
			Metrics:   rec.Last(),
			Rules:     eng.Rules(),
		}, rec)
		if err != nil {
			return err
		}
		log.Info("run recorded", "dir", recordDir, "id", id)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(runsDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("no runs in %s\n", runsDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tPARTICLES\tCOLORS\tTICKS\tENERGY\tSPEED")
	for _, r := range runs {
		name := r.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.3g\t%.3g\n",
			r.ID, name, r.Particles, r.Colors, r.Ticks, r.Metrics["kinetic_energy"], r.Metrics["mean_speed"])
	}
	return w.Flush()
}

func rulesEngine(cmd *cobra.Command) (*sim.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	// the matrix does not depend on the population
	cfg.Particles = 1
	return cfg.NewEngine()
}

func showRules(cmd *cobra.Command, randomize bool) error {
	eng, err := rulesEngine(cmd)
	if err != nil {
		return err
	}
	if randomize {
		eng.RandomizeRules()
	}
	fmt.Print(viz.MatrixView(eng.Rules(), sim.Palette(eng.ColorCount())))
	return nil
}

func saveRules(cmd *cobra.Command, args []string) error {
	eng, err := rulesEngine(cmd)
	if err != nil {
		return err
	}
	if err := config.SaveRules(rulesOut, eng.Rules()); err != nil {
		return err
	}
	fmt.Printf("wrote %dx%d matrix to %s\n", eng.ColorCount(), eng.ColorCount(), rulesOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tCOLORS\tRADIUS\tNEIGHBORS\tRULES")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		rules := "seeded"
		if len(p.Rules) > 0 {
			rules = "fixed"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%s\t%s\n", name, p.Particles, p.Colors, p.SensingRadius, p.Neighbors, rules)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := store.New(runsDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rec, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}
	series := rec.Series(runMetric)
	if series == nil {
		return fmt.Errorf("run %s has no series %q (have %v)", meta.ID, runMetric, rec.Names)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", meta.ID)
	fmt.Fprintf(w, "recorded\t%s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "seed\t%d\n", meta.Seed)
	fmt.Fprintf(w, "particles\t%d\n", meta.Particles)
	fmt.Fprintf(w, "colors\t%d\n", meta.Colors)
	fmt.Fprintf(w, "neighbors\t%s\n", meta.Neighbors)
	fmt.Fprintf(w, "ticks\t%d\n", meta.Ticks)
	for _, name := range rec.Names {
		fmt.Fprintf(w, "%s\t%.4g\n", name, meta.Metrics[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(series) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(series, asciigraph.Height(10), asciigraph.Width(72), asciigraph.Caption(runMetric)))
	}
	if len(meta.Rules) > 0 {
		fmt.Println()
		fmt.Print(viz.MatrixView(meta.Rules, sim.Palette(len(meta.Rules))))
	}

	if runSVG != "" {
		if err := os.WriteFile(runSVG, []byte(export.SeriesToSVG(series, 800, 300, "#00ffcc")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d samples)\n", runSVG, len(series))
	}
	return nil
}
