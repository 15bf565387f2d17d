// Package commands implements the ubispec CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mean-machine-gc/ubispec/config"
	"github.com/mean-machine-gc/ubispec/derive"
	"github.com/mean-machine-gc/ubispec/loader"
	"github.com/mean-machine-gc/ubispec/validate"
)

// Env carries the resolved configuration into each subcommand.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
}

// NewEnv loads the layered configuration, applying the optional root
// override.
func NewEnv(rootOverride string, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rootOverride != "" {
		abs, err := filepath.Abs(rootOverride)
		if err != nil {
			return nil, fmt.Errorf("resolve root: %w", err)
		}
		cfg.Specs.Root = abs
	}
	return &Env{Config: cfg, Logger: logger}, nil
}

// load runs discovery, parsing, and validation under the configured
// root.
func (e *Env) load(ctx context.Context) (*loader.Result, error) {
	allow := e.Config.Validation.ExternalDecidersAllowed()
	l := loader.New(e.Config.Specs.Root, loader.Options{
		Patterns:    e.Config.Specs.Patterns,
		ExcludeDirs: e.Config.Specs.ExcludeDirs,
		Validation:  validate.Options{AllowExternalDeciders: allow},
		Logger:      e.Logger,
	})
	return l.Load(ctx)
}

// engine validates and builds a derivation engine, failing with the
// full report on stderr when blocking issues remain.
func (e *Env) engine(ctx context.Context) (*derive.Engine, *loader.Result, error) {
	result, err := e.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	eng, err := derive.New(result.Set, result.Report)
	if err != nil {
		if writeErr := result.Report.WriteText(os.Stderr); writeErr != nil {
			e.Logger.Warn("failed to render report", "error", writeErr)
		}
		return nil, nil, err
	}
	return eng, result, nil
}

// writeArtifact writes data to <dir>/<name><ext>, or stdout when dir
// is "-".
func writeArtifact(dir, name, ext string, data []byte) error {
	if dir == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	path := filepath.Join(dir, name+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	fmt.Println(path)
	return nil
}
