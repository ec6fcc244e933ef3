package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pastryfall/internal/automation"
	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/experiment"
	"github.com/san-kum/pastryfall/internal/export"
	"github.com/san-kum/pastryfall/internal/logging"
	"github.com/san-kum/pastryfall/internal/optim"
	"github.com/san-kum/pastryfall/internal/scene"
	"github.com/san-kum/pastryfall/internal/storage"
	"github.com/san-kum/pastryfall/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	assetDir   string
	seed       int64
	frameRate  int
	every      int
	resetAt    []int
	async      bool
	series     int
	runs       int
	tuneParam  string
	tuneValues []float64
	tuneMetric string
	svgScale   float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pastryfall",
		Short: "pastries falling onto a dessert plate",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetLogger(logging.NewText(os.Stderr, true))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return viz.RunInteractive(ctx, scene.NewLoader(assetDir))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pastryfall", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	rootCmd.Flags().StringVar(&assetDir, "assets", "", "directory containing models/<name>.obj")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the pastries fall",
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frames per second")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and record heights",
		RunE:  runHeadless,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().Int("frames", 6000, "frames to simulate")
	runCmd.Flags().IntVar(&every, "every", 10, "record heights every n frames")
	runCmd.Flags().IntSliceVar(&resetAt, "reset-at", nil, "frames before which every pastry is dropped again")
	runCmd.Flags().BoolVar(&async, "async", false, "spawn batches as they finish loading instead of waiting")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded heights",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&series, "body", -1, "plot a single body instead of the mean")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trace as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, n := range names {
				fmt.Println(n)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write a config file (default or --preset)",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	configCmd.Flags().StringVar(&preset, "preset", "", "preset to write")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the scene under consecutive seeds in parallel",
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")
	sweepCmd.Flags().Int("frames", 6000, "frames per run")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search one physics parameter",
		RunE:  runTune,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneParam, "param", "bounce_factor", fmt.Sprintf("parameter to vary %v", optim.ParamNames()))
	tuneCmd.Flags().Float64SliceVar(&tuneValues, "values", []float64{0.5, 0.6, 0.7, 0.8}, "values to try")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "settle_tick", "metric to minimise")
	tuneCmd.Flags().Int("frames", 6000, "frames per trial")

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id] [out]",
		Short: "plot recorded heights to an svg file",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [out]",
		Short: "render the scene after n frames to an svg file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshot,
	}
	addSceneFlags(snapshotCmd)
	snapshotCmd.Flags().Int("frames", 300, "frames to simulate before rendering")
	snapshotCmd.Flags().Float64Var(&svgScale, "scale", 4, "svg pixels per braille dot")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario and save every step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&assetDir, "assets", "", "directory containing models/<name>.obj")

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, exportCmd, presetsCmd, configCmd,
		sweepCmd, tuneCmd, svgCmd, snapshotCmd, scenarioCmd)
	return rootCmd
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&assetDir, "assets", "", "directory containing models/<name>.obj")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
}

// resolveConfig applies preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			names := config.ListPresets()
			sort.Strings(names)
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, names)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("assets") {
		cfg.AssetDir = assetDir
	}
	if f := cmd.Flags().Lookup("fps"); f != nil && f.Changed {
		cfg.FPS = frameRate
	}
	return cfg, cfg.Validate()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return viz.Run(ctx, cfg, scene.NewLoader(cfg.AssetDir))
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	frames, err := cmd.Flags().GetInt("frames")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	exp := experiment.New(cfg, scene.NewLoader(cfg.AssetDir))
	result, err := exp.Run(ctx, experiment.Options{
		Frames:        frames,
		SampleEvery:   every,
		ResetAt:       resetAt,
		WaitForAssets: !async,
	})
	if err != nil {
		return err
	}
	for _, b := range result.Failed {
		fmt.Fprintf(os.Stderr, "warning: %s not loaded: %v\n", b.Kind.Name, b.Err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Preset:   preset,
		Seed:     cfg.Seed,
		Frames:   result.Frames,
		Bodies:   result.Bodies,
		Every:    every,
		Params:   cfg.Physics,
		Pastries: cfg.Pastries,
		Metrics:  result.Metrics,
	}, result.Trace)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "run: %s\n", runID)
	fmt.Fprintf(out, "frames: %d  bodies: %d  elapsed: %s\n", result.Frames, result.Bodies, result.Elapsed)
	names := make([]string, 0, len(result.Metrics))
	for k := range result.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(out, "  %-18s %.4f\n", k, result.Metrics[k])
	}
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tBODIES\tSEED\tSETTLED")
	for _, run := range runs {
		settled := "-"
		if t, ok := run.Metrics["settle_tick"]; ok && t >= 0 {
			settled = fmt.Sprintf("%.0f", t)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Bodies,
			run.Seed,
			settled,
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
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	data, caption := tr.Mean(), "mean height"
	if series >= 0 {
		if series >= tr.Width() {
			return fmt.Errorf("body %d out of range (run has %d)", series, tr.Width())
		}
		data, caption = tr.Series(series), fmt.Sprintf("body %d height", series)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bodies: %d\n", meta.Bodies)
	fmt.Printf("samples: %d\n\n", tr.Len())
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, tr)
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return fmt.Errorf("unknown preset: %s", preset)
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	frames, err := cmd.Flags().GetInt("frames")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ens := experiment.NewEnsemble(cfg, scene.NewLoader(cfg.AssetDir), runs, cfg.Seed)
	results, err := ens.Run(ctx, experiment.Options{Frames: frames, WaitForAssets: true})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tBODIES\tBOUNCES\tSETTLED\tPEAK")
	settled := 0
	for i, r := range results {
		tick := "-"
		if t := r.Metrics["settle_tick"]; t >= 0 {
			tick = fmt.Sprintf("%.0f", t)
			settled++
		}
		fmt.Fprintf(w, "%d\t%d\t%.0f\t%s\t%.2f\n", ens.Seed(i), r.Bodies, r.Metrics["bounces"], tick, r.Metrics["peak_height"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d/%d runs settled within %d frames\n", settled, len(results), frames)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	frames, err := cmd.Flags().GetInt("frames")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	g, err := optim.NewGridSearch([]string{tuneParam}, [][]float64{tuneValues})
	if err != nil {
		return err
	}
	best, score, trials, err := g.Search(ctx, cfg, scene.NewLoader(cfg.AssetDir),
		experiment.Options{Frames: frames, WaitForAssets: true}, tuneMetric)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no valid %s among %v", tuneParam, tuneValues)
	}

	for _, tr := range trials {
		fmt.Fprintf(out, "  %s=%-10g %s=%g\n", tuneParam, tr.Params[tuneParam], tuneMetric, tr.Score)
	}
	fmt.Fprintf(out, "\nbest: %s=%g (%s=%g)\n", tuneParam, best[tuneParam], tuneMetric, score)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	tr, err := storage.New(dataDir).LoadTrace(args[0])
	if err != nil {
		return err
	}
	svg := export.HeightsToSVG(tr, 800, 400)
	if svg == "" {
		return fmt.Errorf("no data to plot")
	}
	return os.WriteFile(args[1], []byte(svg), 0644)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	frames, err := cmd.Flags().GetInt("frames")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	exp := experiment.New(cfg, scene.NewLoader(cfg.AssetDir))
	if _, err := exp.Run(cmd.Context(), experiment.Options{Frames: frames, WaitForAssets: true}); err != nil {
		return err
	}

	cv := viz.NewCanvas(80, 40)
	viz.RenderScene(cv, viz.NewCamera(), scene.Plate(), exp.Simulator().Bodies())
	if err := os.WriteFile(args[0], []byte(export.CanvasToSVG(cv, svgScale)), 0644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d bodies, frame %d)\n", args[0], exp.Simulator().Len(), exp.Simulator().Tick())
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	results, err := automation.RunScenario(ctx, sc, scene.NewLoader(assetDir), st)
	for i, r := range results {
		fmt.Printf("step %d: %s  bounces=%.0f settle_tick=%.0f\n", i+1, r.RunID, r.Result.Metrics["bounces"], r.Result.Metrics["settle_tick"])
	}
	return err
}
