package commands

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/mean-machine-gc/ubispec/export"
	"github.com/mean-machine-gc/ubispec/graph"
	"github.com/mean-machine-gc/ubispec/storage"
)

// NewGraphCommand builds the topology graph of the validated set.
func NewGraphCommand() *cobra.Command {
	var (
		root    string
		format  string
		out     string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the message-flow topology graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			env, err := NewEnv(root, logger)
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				out = env.Config.Artifacts.Dir
			}

			eng, result, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}
			g := graph.Build(eng.Set())

			if publish {
				if env.Config.NATS.URL == "" {
					return fmt.Errorf("publishing requires nats.url in the configuration")
				}
				nc, err := nats.Connect(env.Config.NATS.URL, nats.Name("ubispec"))
				if err != nil {
					return fmt.Errorf("connect to NATS: %w", err)
				}
				defer nc.Close()
				publisher := graph.NewPublisher(nc)
				if err := publisher.PublishReport(result.Report); err != nil {
					return err
				}
				if js, err := jetstream.New(nc); err != nil {
					logger.Warn("run history disabled, no JetStream", "error", err)
				} else if store, err := storage.NewReportStore(cmd.Context(), js); err != nil {
					logger.Warn("run history disabled", "error", err)
				} else if err := store.Put(cmd.Context(), result.Report); err != nil {
					logger.Warn("failed to store run report", "error", err)
				}
				if err := publisher.PublishTopology(result.Report.RunID, g); err != nil {
					return err
				}
				if err := publisher.Flush(); err != nil {
					return err
				}
				logger.Info("published topology", "run_id", result.Report.RunID)
			}

			info, _ := export.GetFormatInfo(f)
			var data []byte
			if f == export.FormatDOT {
				data = []byte(export.DOT(g))
			} else {
				data, err = export.Structured(f, g)
				if err != nil {
					return err
				}
			}
			return writeArtifact(out, "topology", info.Extension, data)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory searched for documents (default: configured root)")
	cmd.Flags().StringVar(&format, "format", "dot", "Output format: dot, json, yaml")
	cmd.Flags().StringVar(&out, "out", "", "Output directory, or - for stdout (default: configured directory)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the report and topology to NATS")
	return cmd
}
