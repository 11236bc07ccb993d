package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/diag"
	"github.com/comalice/osalx/internal/extensibility"
	"github.com/comalice/osalx/internal/platform"
	"github.com/comalice/osalx/internal/primitives"
	"github.com/comalice/osalx/internal/production"
)

func main() {
	var (
		profilePath = flag.String("profile", "", "YAML thread profile (default: three built-in workers)")
		snapDir     = flag.String("snapshots", os.TempDir(), "directory for process snapshots")
		format      = flag.String("format", "json", "snapshot format: json or yaml")
		cycles      = flag.Int("cycles", 6, "suspend/resume cycles before shutdown")
		interval    = flag.Duration("interval", 500*time.Millisecond, "time between cycles")
		showDOT     = flag.Bool("dot", false, "print the lifecycle graph of the first thread each cycle")
	)
	flag.Parse()

	if err := run(*profilePath, *snapDir, *format, *cycles, *interval, *showDOT); err != nil {
		fmt.Fprintln(diag.Err(), "demo:", err)
		os.Exit(1)
	}
}

func loadProfile(path string) (primitives.Profile, error) {
	if path == "" {
		return primitives.Profile{
			Version: "v1.0.0",
			Threads: []primitives.ThreadConfig{
				{Name: "sampler", Priority: primitives.AboveNormal},
				{Name: "indexer", Priority: primitives.Normal},
				{Name: "janitor", Priority: primitives.Lowest},
			},
		}, nil
	}
	return production.LoadProfile(path)
}

func newPersister(format, dir string) (core.Persister, error) {
	switch format {
	case "json":
		return production.NewJSONPersister(dir)
	case "yaml":
		return production.NewYAMLPersister(dir)
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}

func run(profilePath, snapDir, format string, cycles int, interval time.Duration, showDOT bool) error {
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}
	persister, err := newPersister(format, snapDir)
	if err != nil {
		return err
	}

	out := diag.Out()
	logger := diag.Logger()
	fmt.Fprintf(out, "profile %s (%d threads) on %s\n", profile.Digest(), len(profile.Threads), platform.Name())
	table := core.NewTable()
	publishChan := make(chan primitives.TransitionEvent, 100)
	publisher := production.NewChannelPublisher(publishChan)
	visualizer := &production.DefaultVisualizer{}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var threads []*core.Thread
	for _, cfg := range profile.Threads {
		name := cfg.Name
		routine := extensibility.WithLogging(logger, extensibility.Every(50*time.Millisecond, func(context.Context) error {
			logger.Debug("work", "thread", name)
			return nil
		}))
		th, err := core.NewThread(routine,
			core.WithConfig(cfg),
			core.WithContext(ctx),
			core.WithRegistry(table),
			core.WithPublisher(publisher),
			core.WithVisualizer(visualizer),
		)
		if err != nil {
			return err
		}
		if err := th.Start(); err != nil {
			return err
		}
		threads = append(threads, th)
	}
	defer func() {
		for _, th := range threads {
			th.Terminate()
			th.Join()
			th.Close()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for cycle := 1; cycle <= cycles; cycle++ {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			fmt.Fprintln(out, "\nShutting down gracefully...")
			return nil
		}

		// Alternate: odd cycles suspend every other thread, even cycles resume them.
		for i, th := range threads {
			if i%2 != 0 {
				continue
			}
			if cycle%2 == 1 {
				err = th.SuspendWait(ctx)
			} else {
				err = th.Resume()
			}
			if err != nil {
				logger.Warn("lifecycle request failed", "thread", th.Name(), "err", err)
			}
		}

		fmt.Fprintf(out, "\n--- Cycle %d ---\n", cycle)
		for _, th := range threads {
			fmt.Fprintf(out, "%-10s %-12v priority=%v effective=%v native=%d\n",
				th.Name(), th.State(), th.Priority(), th.EffectivePriority(), th.NativeID())
		}
		if showDOT && len(threads) > 0 {
			fmt.Fprintln(out, "DOT:\n"+threads[0].Visualize())
		}
	drain:
		for {
			select {
			case ev := <-publishChan:
				fmt.Fprintf(out, "Published: %s %s (%v -> %v)\n", ev.Name, ev.Label(), ev.From, ev.To)
			default:
				break drain
			}
		}

		snap := table.Snapshot("osalx-demo")
		if err := persister.Save(ctx, snap); err != nil {
			logger.Warn("snapshot save failed", "err", err)
		}
	}
	fmt.Fprintf(out, "Demo complete after %d cycles; snapshot in %s\n", cycles, snapDir)
	return nil
}
