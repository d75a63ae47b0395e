// Command demo runs a small simulated sentry against a behavior tree loaded
// from a YAML scenario, ticking it at a fixed rate until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/behave/internal/core/behavior"
)

const defaultScenario = `
trees:
  - name: sentry
    type: priority
    preemptive: true
    children:
      - name: cooldown
        type: timer
        background: true
        delay: 2.0
        children:
          - name: chase
            type: leaf
            prioritizer: threat
            action: chase
      - name: wander
        type: random
        uniform: true
        children:
          - name: patrol
            type: leaf
            prioritizer: calm
            action: patrol
          - name: rest
            type: leaf
            prioritizer: calm
            action: rest
`

// world is the simulated state the prioritizers and actions read and write.
// threat is stored in thousandths so it fits an atomic integer.
type world struct {
	threat atomic.Int64
}

func (w *world) threatLevel() float64 { return float64(w.threat.Load()) / 1000 }

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML scenario (built-in sentry scenario if empty)")
		metricsAddr = flag.String("metrics", ":9091", "listen address for Prometheus metrics, empty to disable")
		seed        = flag.Int64("seed", 0, "random seed, 0 derives one from the scenario name")
		tickRate    = flag.Duration("tick", 50*time.Millisecond, "tick interval")
	)
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, log, *configPath, *metricsAddr, *seed, *tickRate); err != nil {
		log.Fatal("demo failed", zap.Error(err))
	}
}

func run(ctx context.Context, log *zap.Logger, configPath, metricsAddr string, seed int64, tickRate time.Duration) error {
	w := &world{}

	parser := behavior.NewParser()
	registrations := []error{
		parser.AddPrioritizer("threat", w.threatLevel),
		parser.AddPrioritizer("calm", func() float64 { return 1 - w.threatLevel() }),
		parser.AddAction("chase", &behavior.ActionDef{
			Name:  "chase",
			Start: func() { log.Info("chasing intruder") },
			Update: func(dt time.Duration) bool {
				// Closing in drains the threat; the chase ends when it is gone.
				w.threat.Add(-int64(dt.Milliseconds()))
				return w.threat.Load() <= 0
			},
			Terminate: func() { log.Info("chase broken off") },
		}),
		parser.AddAction("patrol", &behavior.ActionDef{
			Name:  "patrol",
			Start: func() { log.Info("patrolling") },
		}),
		parser.AddAction("rest", &behavior.ActionDef{
			Name:  "rest",
			Start: func() { log.Info("resting") },
		}),
	}
	if err := errors.Join(registrations...); err != nil {
		return err
	}

	var scenario io.Reader = strings.NewReader(defaultScenario)
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		scenario = f
	}
	defs, err := parser.ParseYAML(scenario)
	if err != nil {
		return err
	}
	return loop(ctx, log, w, defs, metricsAddr, seed, tickRate)
}

func loop(ctx context.Context, log *zap.Logger, w *world, defs map[string]*behavior.NodeDef, metricsAddr string, seed int64, tickRate time.Duration) error {
	reg := prometheus.NewRegistry()
	opts := []behavior.Option{
		behavior.WithLogger(log),
		behavior.WithMetrics(behavior.NewMetrics(reg)),
	}
	if seed != 0 {
		opts = append(opts, behavior.WithSeed(seed))
	} else {
		opts = append(opts, behavior.WithSeedLabel("behave-demo"))
	}

	manager := behavior.NewManager(opts...)
	for name, def := range defs {
		if err := manager.AddTree(name, def); err != nil {
			return err
		}
		if err := manager.StartTree(name); err != nil {
			return err
		}
		log.Info("tree started", zap.String("tree", name))
	}

	group, ctx := errgroup.WithContext(ctx)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		group.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	group.Go(func() error {
		ticker := time.NewTicker(tickRate)
		defer ticker.Stop()
		spawn := time.NewTicker(5 * time.Second)
		defer spawn.Stop()
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))

		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-spawn.C:
				// An intruder shows up with a random threat level.
				level := 300 + rng.Int63n(700)
				w.threat.Store(level)
				log.Info("intruder spotted", zap.Float64("threat", float64(level)/1000))
			case now := <-ticker.C:
				manager.Update(now.Sub(last))
				last = now
			}
		}
	})

	err := group.Wait()
	log.Info("demo stopped")
	return err
}
