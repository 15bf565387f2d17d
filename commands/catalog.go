package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mean-machine-gc/ubispec/derive"
	"github.com/mean-machine-gc/ubispec/export"
)

// NewCatalogCommand prints the command catalog. Shorthand for
// "derive catalog" with stdout output.
func NewCatalogCommand() *cobra.Command {
	var (
		root   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the command catalog",
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
			eng, _, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}
			return runDerive(eng, "catalog", f, "-", derive.TableOptions{})
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory searched for documents (default: configured root)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, json, yaml")
	return cmd
}
