package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewValidateCommand validates every document under the root and
// prints the aggregated report.
func NewValidateCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate all specification documents",
		Long: `Validate parses every document under the root, runs per-document
structural and reference checks, then cross-document checks over the
structurally valid subset, and prints one aggregated report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			env, err := NewEnv(root, logger)
			if err != nil {
				return err
			}
			result, err := env.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := result.Report.WriteText(os.Stdout); err != nil {
				return err
			}
			if result.Report.HasBlocking() {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory searched for documents (default: configured root)")
	return cmd
}
