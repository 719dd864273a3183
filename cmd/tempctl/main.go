package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tempctl/internal/ambient"
	"tempctl/internal/buttons"
	"tempctl/internal/config"
	"tempctl/internal/process"
	"tempctl/internal/scenario"
	"tempctl/internal/sim"
	"tempctl/internal/telemetry"
	"tempctl/internal/web"
)

func main() {
	var configPath, scenarioPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.StringVar(&scenarioPath, "scenario", "", "Replay a YAML script deterministically and exit")
	flag.Parse()

	log := initLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	core := sim.New(log, sim.Options{
		PhysicsInterval: cfg.Sim.PhysicsInterval,
		ControlInterval: cfg.Sim.ControlInterval,
		PollInterval:    cfg.Sim.PollInterval,
		InitialSV:       cfg.Sim.InitialSV,
		InitialPV:       cfg.Sim.InitialPV,
		NoiseSeed:       cfg.Sim.NoiseSeed,
		Physics: process.Config{
			AmbientTemp:     cfg.Sim.AmbientTemp,
			ThermalInertia:  cfg.Sim.ThermalInertia,
			CoolingRate:     cfg.Sim.CoolingRate,
			HeaterGain:      cfg.Sim.HeaterGain,
			SensorConnected: true,
		},
	})

	if scenarioPath != "" {
		runScenario(log, core, cfg, scenarioPath)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("tempctl starting",
		"physics", cfg.Sim.PhysicsInterval.String(),
		"control", cfg.Sim.ControlInterval.String())

	core.Start(ctx)
	defer core.Close()

	if cfg.Buttons.Enable {
		rd, err := buttons.Open(cfg.Buttons.Lines, core)
		if err != nil {
			log.Error("gpio buttons unavailable", "err", err)
		} else {
			defer rd.Close()
			log.Info("gpio buttons attached", "lines", cfg.Buttons.Lines)
		}
	}

	if cfg.Ambient.Enable {
		rd, err := ambient.Open(log, cfg.Ambient.Bus, cfg.Ambient.Addr)
		if err != nil {
			log.Error("ambient sensor unavailable", "err", err)
		} else {
			defer rd.Close()
			go rd.Run(ctx, cfg.Ambient.Interval, core.SetAmbientTemp)
		}
	}

	var broadcaster *web.Broadcaster
	if cfg.Web.Enable {
		broadcaster = web.NewBroadcaster()
		metrics := web.NewMetrics(prometheus.DefaultRegisterer)
		srv := &http.Server{
			Addr:    cfg.Web.Addr,
			Handler: web.NewServer(core, broadcaster, metrics).Handler(os.Stdout),
		}
		go func() {
			log.Info("web server listening", "addr", cfg.Web.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("web server stopped", "err", err)
				cancel()
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()

		// Feed the live stream and the gauges at the poll cadence.
		go func() {
			t := time.NewTicker(cfg.Sim.PollInterval)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					snap := core.Snapshot()
					broadcaster.Publish(snap)
					metrics.Observe(snap)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	if cfg.Telemetry.Enable {
		pub := telemetry.NewPublisher(log, cfg.Telemetry.Brokers, cfg.Telemetry.Topic, cfg.Telemetry.DeviceID)
		defer pub.Close()
		go pub.Run(ctx, cfg.Telemetry.Rate, core.Snapshot)
	}

	<-ctx.Done()
	log.Info("tempctl stopping")
}

// runScenario replays a script on a synthetic clock and prints the final
// state as JSON.
func runScenario(log *slog.Logger, core *sim.Simulator, cfg config.Config, path string) {
	sc, err := scenario.Load(path)
	if err != nil {
		log.Error("scenario load failed", "err", err)
		os.Exit(1)
	}

	r := &scenario.Runner{
		Sim:             core,
		PhysicsInterval: cfg.Sim.PhysicsInterval,
		ControlInterval: cfg.Sim.ControlInterval,
	}
	applied := r.Run(sc)
	log.Info("scenario finished", "events", applied, "duration", sc.Duration.String())

	b, err := json.MarshalIndent(core.Snapshot(), "", "  ")
	if err != nil {
		log.Error("snapshot marshal failed", "err", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(append(b, '\n'))
}

func initLogger() *slog.Logger {
	var w io.Writer = os.Stdout
	if path := os.Getenv("LOG_PATH"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = io.MultiWriter(os.Stdout, f)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
