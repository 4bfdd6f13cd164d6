// Command citysim runs the city simulation: traffic routing across the
// zones and the mobile agents (vehicles and disasters) moving over the map.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-city/internal/agents"
	"github.com/talgya/mini-city/internal/api"
	"github.com/talgya/mini-city/internal/assets"
	"github.com/talgya/mini-city/internal/config"
	"github.com/talgya/mini-city/internal/engine"
	"github.com/talgya/mini-city/internal/entropy"
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/persistence"
	"github.com/talgya/mini-city/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $"+config.EnvConfigPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.RandomSeed()
	}
	slog.Info("Mini City starting", "seed", seed, "width", cfg.Sim.Width, "height", cfg.Sim.Height)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		slog.Error("failed to create data dir", "dir", cfg.Storage.DataDir, "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	runID, err := db.StartRun(seed)
	if err != nil {
		slog.Error("failed to start run", "error", err)
		os.Exit(1)
	}
	slog.Info("database opened", "path", cfg.Storage.DBPath, "run", runID)

	var ticks *persistence.TickLogger
	if cfg.Storage.TickLog {
		ticks = persistence.NewTickLogger(cfg.Storage.DataDir)
		defer ticks.Close()
	}

	// ── Frame assets ──────────────────────────────────────────────────
	table := assets.DefaultTable()
	if cfg.FrameManifest != "" {
		table, err = assets.LoadManifest(cfg.FrameManifest)
		if err != nil {
			slog.Error("failed to load frame manifest", "path", cfg.FrameManifest, "error", err)
			os.Exit(1)
		}
	}
	frames := assets.NewCache(table)
	if err := frames.Preload(agents.TypeNames()...); err != nil {
		slog.Error("frame assets incomplete", "error", err)
		os.Exit(1)
	}

	// ── City map (deterministic from seed) ───────────────────────────
	gen := world.DefaultGenConfig()
	gen.Width, gen.Height, gen.Seed = cfg.Sim.Width, cfg.Sim.Height, seed
	cityMap := world.Generate(gen)
	zones := world.PlaceZones(cityMap, seed)
	for class, n := range world.ClassCounts(cityMap) {
		slog.Debug("tiles", "class", class, "count", n)
	}
	slog.Info("city laid out", "zones", len(zones))
	if len(zones) > 0 {
		slog.Info("most desirable district", "name", zones[0].Name, "category", zones[0].Category, "center", zones[0].Center)
	}
	if err := db.SaveMeta("seed", fmt.Sprint(seed)); err != nil {
		slog.Warn("failed to record seed", "error", err)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(engine.Deps{
		Map:    cityMap,
		Zones:  zones,
		Rand:   entropy.New(seed),
		Frames: frames,
		Audio:  notify.Log{Logger: logger},
	}, engine.Config{
		Disasters:         cfg.Disasters.Enabled,
		Animations:        cfg.Sim.Animations,
		TornadoOdds:       cfg.Disasters.TornadoOdds,
		MonsterOdds:       cfg.Disasters.MonsterOdds,
		ShipOdds:          cfg.Disasters.ShipOdds,
		TrafficSweepEvery: cfg.Sim.TrafficSweepEvery,
	})
	sim.AddSink(notify.Log{Logger: logger})

	hub := api.NewHub()
	go hub.Run()
	defer hub.Stop()
	sim.AddSink(hub)

	eng := engine.NewEngine()
	eng.Interval = cfg.Sim.Interval
	eng.Speed = cfg.Sim.Speed
	sim.Paused = cfg.Sim.Speed == 0

	save := func() {
		if err := db.SaveSnapshot(sim); err != nil {
			slog.Error("snapshot failed", "error", err)
		}
	}

	// Wire tick callbacks; the journal is flushed every sim-hour.
	eng.OnTick = func(tick uint64) {
		sim.Step(tick)
		if ticks == nil {
			return
		}
		stats := sim.Stats
		active := make(map[string]int)
		for t, n := range sim.Agents.CountActive() {
			active[t.String()] = n
		}
		if err := ticks.WriteTick(persistence.TickEntry{
			Tick:        tick,
			Paused:      sim.Paused,
			Agents:      active,
			TrafficPeak: stats.TrafficPeak,
			Notices:     stats.Notices,
		}); err != nil {
			slog.Warn("tick log write failed", "tick", tick, "error", err)
		}
	}
	eng.OnHour = func(tick uint64) {
		sim.TickHour(tick)
		save()
		if ticks != nil {
			if err := ticks.Flush(); err != nil {
				slog.Warn("tick log flush failed", "error", err)
			}
		}
	}
	eng.OnDay = func(tick uint64) {
		stats := sim.Snapshot()
		slog.Info("daily report",
			"time", engine.SimTime(tick),
			"population", humanize.Comma(int64(stats.Population)),
			"routes_found", humanize.Comma(int64(stats.Routes.Found)),
			"routes_failed", humanize.Comma(int64(stats.Routes.NotFound+stats.Routes.NoTransport)),
			"notices", stats.Notices,
		)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn(config.EnvAdminKey + " not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Hub:      hub,
		Port:     cfg.API.Port,
		AdminKey: cfg.API.AdminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nMini City is running: %d zones on a %dx%d map.\n", len(zones), cfg.Sim.Width, cfg.Sim.Height)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	slog.Info("final save...")
	eng.Do(save)
	fmt.Println("Simulation stopped. Journal saved.")
}
