// Command whendo runs a level headless: every actor's WHEN/DO program
// drives it for a fixed number of ticks, with optional CSV tracing.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pthm-cable/whendo/config"
	"github.com/pthm-cable/whendo/program"
	"github.com/pthm-cable/whendo/telemetry"
	"github.com/pthm-cable/whendo/tiles"
	"github.com/pthm-cable/whendo/world"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	levelPath := flag.String("level", "levels/orchard/level.yaml", "Path to a level file")
	seed := flag.Int64("seed", 0, "RNG seed (0 = level seed, then config seed)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV traces (empty = use config)")
	perfWindow := flag.Int("perf-window", 300, "Ticks per perf record")
	migrate := flag.Bool("migrate", false, "Rewrite the level's programs at the current version and exit")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	tiles.InitTuning()

	lvl, err := program.LoadLevel(*levelPath)
	if err != nil {
		slog.Error("failed to load level", "error", err)
		os.Exit(1)
	}
	if *migrate {
		if err := migratePrograms(lvl); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		return
	}

	reg, err := tiles.Default()
	if err != nil {
		slog.Error("failed to load tile catalog", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = lvl.Seed
	}
	if rngSeed == 0 {
		rngSeed = cfg.Sim.Seed
	}
	ticks := cfg.Sim.Ticks
	if *maxTicks > 0 {
		ticks = *maxTicks
	}
	dir := cfg.Trace.Dir
	if *outputDir != "" {
		dir = *outputDir
	}

	w, err := buildWorld(cfg, reg, lvl, rngSeed)
	if err != nil {
		slog.Error("failed to build level", "level", *levelPath, "error", err)
		os.Exit(1)
	}

	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting level",
		"level", lvl.Name,
		"seed", rngSeed,
		"ticks", ticks,
		"actors", len(w.Actors()),
		"things", w.Len(),
	)

	if err := run(ctx, w, om, ticks, *perfWindow); err != nil {
		slog.Error("run stopped", "tick", w.Tick(), "error", err)
	}
	slog.Info("finished", "tick", w.Tick(), "time", w.Time(), "scores", w.Scores())
}

// run steps the level, tracing every cfg.Trace.Every ticks, and writes the
// rule summary at the end.
func run(ctx context.Context, w *world.World, om *telemetry.OutputManager, ticks, perfWindow int) error {
	cfg := config.Cfg()
	every := max(cfg.Trace.Every, 1)
	perf := telemetry.NewPerfCollector(perfWindow)
	w.SetPerf(perf)
	collector := telemetry.NewCollector()

	var rows []telemetry.ReflexTrace
	var stepErr error
	for int(w.Tick()) < ticks {
		if stepErr = w.Step(ctx, nil); stepErr != nil {
			break
		}
		if w.Tick()%uint64(every) == 0 {
			rows = w.Trace(rows[:0])
			collector.Record(rows)
			if err := om.WriteTrace(rows); err != nil {
				return err
			}
		}
		if perfWindow > 0 && w.Tick()%uint64(perfWindow) == 0 {
			stats := perf.Stats()
			stats.LogStats()
			if err := om.WritePerf(stats, w.Tick()); err != nil {
				return err
			}
		}
	}

	rules := collector.Rules()
	summary := telemetry.Summarize(collector.Ticks(), rules)
	if cfg.Trace.Summary {
		summary.LogStats()
	}
	if err := om.WriteRules(rules, summary); err != nil {
		return err
	}
	return stepErr
}
