package commands

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mean-machine-gc/ubispec/loader"
)

// NewWatchCommand revalidates the document set on every change.
func NewWatchCommand() *cobra.Command {
	var (
		root        string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Revalidate documents on every file change",
		Long: `Watch validates the set once, then watches the root for document
changes and revalidates after a debounce window. With a metrics
address set, run counters are exposed in Prometheus format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			env, err := NewEnv(root, logger)
			if err != nil {
				return err
			}
			if metricsAddr == "" {
				metricsAddr = env.Config.Watch.MetricsAddr
			}

			var metrics *loader.Metrics
			if metricsAddr != "" {
				registry := prometheus.NewRegistry()
				metrics = loader.NewMetrics(registry)
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
				server := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("metrics server failed", "error", err)
					}
				}()
				defer server.Close()
				logger.Info("metrics exposed", "addr", metricsAddr)
			}

			ctx := cmd.Context()
			runOnce := func() {
				start := time.Now()
				result, err := env.load(ctx)
				if err != nil {
					logger.Error("validation run failed", "error", err)
					return
				}
				if err := result.Report.WriteText(os.Stdout); err != nil {
					logger.Warn("failed to render report", "error", err)
				}
				metrics.ObserveRun(result, time.Since(start))
			}
			runOnce()

			watcher, err := loader.NewWatcher(env.Config.Specs.Root, loader.WatchConfig{
				Debounce:    env.Config.Watch.Debounce,
				ExcludeDirs: env.Config.Specs.ExcludeDirs,
			}, logger)
			if err != nil {
				return err
			}
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := watcher.Stop(); err != nil {
					logger.Warn("failed to stop watcher", "error", err)
				}
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case batch, ok := <-watcher.Batches():
					if !ok {
						return nil
					}
					logger.Info("documents changed", "count", len(batch))
					runOnce()
				}
			}
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory searched for documents (default: configured root)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for Prometheus metrics (default: configured address)")
	return cmd
}
