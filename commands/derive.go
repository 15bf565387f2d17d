package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mean-machine-gc/ubispec/derive"
	"github.com/mean-machine-gc/ubispec/export"
)

// artifactNames lists the derivable artifact families.
var artifactNames = []string{"tables", "scenarios", "checklist", "trace", "manifest", "catalog"}

// NewDeriveCommand derives one artifact family from the validated set.
func NewDeriveCommand() *cobra.Command {
	var (
		root    string
		format  string
		out     string
		allFail bool
	)

	cmd := &cobra.Command{
		Use:   "derive <artifact>",
		Short: "Derive an artifact from the validated set",
		Long: `Derive builds one artifact family from the validated document set:

  tables     decision tables, one per command
  scenarios  test scenarios, one per decision-table row
  checklist  validation checklists, one section per command
  trace      traceability matrix
  manifest   integration dependency manifest
  catalog    command catalog

Derivation refuses to run while blocking validation issues remain.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: artifactNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			artifact := args[0]
			env, err := NewEnv(root, logger)
			if err != nil {
				return err
			}
			if format == "" {
				format = env.Config.Artifacts.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.FormatDOT {
				return fmt.Errorf("dot output is only available for the graph command")
			}
			if out == "" {
				out = env.Config.Artifacts.Dir
			}

			eng, _, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}
			return runDerive(eng, artifact, f, out, derive.TableOptions{IncludeAllFail: allFail})
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory searched for documents (default: configured root)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: markdown, json, yaml (default: configured format)")
	cmd.Flags().StringVar(&out, "out", "", "Output directory, or - for stdout (default: configured directory)")
	cmd.Flags().BoolVar(&allFail, "all-fail", false, "Include the all-constraints-violated row in tables and scenarios")
	return cmd
}

func runDerive(eng *derive.Engine, artifact string, f export.Format, out string, tableOpts derive.TableOptions) error {
	info, _ := export.GetFormatInfo(f)

	var payload any
	var markdown func() string
	switch artifact {
	case "tables":
		tables := eng.DecisionTables(tableOpts)
		payload = tables
		markdown = func() string {
			var sb strings.Builder
			for _, t := range tables {
				sb.WriteString(export.DecisionTableMarkdown(t))
			}
			return sb.String()
		}
	case "scenarios":
		payload = eng.Scenarios(tableOpts)
	case "checklist":
		cl := eng.Checklist()
		payload = cl
		markdown = func() string { return export.ChecklistMarkdown(cl) }
	case "trace":
		payload = eng.Traceability()
	case "manifest":
		payload = eng.Manifest()
	case "catalog":
		rows := eng.Catalog()
		payload = rows
		markdown = func() string { return export.CatalogMarkdown(rows) }
	default:
		return fmt.Errorf("unknown artifact %q (one of: %s)", artifact, strings.Join(artifactNames, ", "))
	}

	if f == export.FormatMarkdown {
		if markdown == nil {
			return fmt.Errorf("artifact %s has no markdown rendering, use json or yaml", artifact)
		}
		return writeArtifact(out, artifact, info.Extension, []byte(markdown()))
	}

	data, err := export.Structured(f, payload)
	if err != nil {
		return err
	}
	return writeArtifact(out, artifact, info.Extension, data)
}
