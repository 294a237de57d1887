// Command portalbench spins up one portal pair, one producer
// goroutine and one consumer goroutine, and reports the throughput
// achieved over the run.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoxc-go/portal"
	"github.com/zoxc-go/portal/internal/config"
	"github.com/zoxc-go/portal/internal/service"
)

var flags struct {
	configPath   string
	capacity     uint64
	batch        int
	duration     time.Duration
	uniprocessor bool
	metricsAddr  string
}

var rootCmd = &cobra.Command{
	Use:   "portalbench",
	Short: "Benchmark a portal pair's batched-publish throughput",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.configPath, "config", "", "YAML config file to load (flags below override its values)")
	rootCmd.Flags().Uint64Var(&flags.capacity, "capacity", portal.DefaultCapacity, "ring capacity per direction (must be a power of two)")
	rootCmd.Flags().IntVar(&flags.batch, "batch", 20, "messages written per producer batch before Notify")
	rootCmd.Flags().DurationVar(&flags.duration, "duration", 2*time.Second, "how long to run the benchmark")
	rootCmd.Flags().BoolVar(&flags.uniprocessor, "uniprocessor", false, "publish write_count immediately on every Write instead of batching")
	rootCmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables it)")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Development = false
	zapCfg.Level.SetLevel(zap.InfoLevel)

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	var cfg *config.PortalConfig
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg, err = config.Parse(nil)
		if err != nil {
			return fmt.Errorf("build default config: %w", err)
		}
	}

	// Flags explicitly passed on the command line override whatever
	// the config file (or its defaults) set.
	if cmd.Flags().Changed("capacity") {
		cfg.Capacity = flags.capacity
	}
	if cmd.Flags().Changed("uniprocessor") {
		cfg.Uniprocessor = flags.uniprocessor
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = flags.metricsAddr
	}
	if cmd.Flags().Changed("batch") {
		cfg.ProducerBatch = flags.batch
	}

	registry := prometheus.NewRegistry()
	svc, err := service.New(logger, registry)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Sugar().Errorw("metrics server failed", "error", err)
			}
		}()
		defer server.Close()
	}

	pair := portal.NewPair(cfg.Capacity, cfg.Uniprocessor)
	defer pair.Close()

	runCtx, cancel := context.WithTimeout(ctx, flags.duration)
	defer cancel()

	in := make(chan portal.Message, cfg.ProducerBatch*4)
	out := make(chan portal.Message, cfg.ProducerBatch*4)

	var sent, received uint64
	genDone := make(chan struct{})
	go func() {
		defer close(genDone)
		defer close(in)
		var i uint64
		for {
			select {
			case <-runCtx.Done():
				return
			case in <- portal.Message{i, i, i, i}:
				i++
				sent = i
			}
		}
	}()

	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for {
			select {
			case <-out:
				received++
			case <-runCtx.Done():
				for {
					select {
					case <-out:
						received++
					default:
						return
					}
				}
			}
		}
	}()

	start := time.Now()
	runErr := svc.RunPair(runCtx, pair, in, out, cfg.ProducerBatch)
	<-genDone
	<-drainDone
	elapsed := time.Since(start)

	logger.Sugar().Infow("portal benchmark complete",
		"sent", sent,
		"received", received,
		"elapsed", elapsed,
		"messages_per_second", float64(received)/elapsed.Seconds(),
		"capacity", cfg.Capacity,
		"uniprocessor", cfg.Uniprocessor,
	)

	if runErr != nil && ctx.Err() == nil && runCtx.Err() != context.DeadlineExceeded {
		return fmt.Errorf("portal run: %w", runErr)
	}
	return nil
}
