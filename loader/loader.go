// Package loader discovers specification documents on disk, parses
// them in parallel, and assembles the validated set plus the
// aggregated report for one run. Cross-document validation runs only
// after every per-document pass has finished.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/mean-machine-gc/ubispec/lifecycle"
	"github.com/mean-machine-gc/ubispec/process"
	"github.com/mean-machine-gc/ubispec/spec"
	"github.com/mean-machine-gc/ubispec/system"
	"github.com/mean-machine-gc/ubispec/validate"
)

// File is one discovered document and its per-document findings.
type File struct {
	Path   string
	Kind   spec.Kind
	Issues spec.Issues

	lifecycle *lifecycle.Spec
	process   *process.Spec
	system    *system.Spec
}

// Excluded reports whether structural errors keep the document out of
// the cross-validated set.
func (f *File) Excluded() bool {
	return len(f.Issues.BySeverity(spec.SeverityStructural)) > 0
}

// Result is the outcome of one load run.
type Result struct {
	Set    *validate.Set
	Report *validate.Report
	Files  []*File
}

// Options configures a load run.
type Options struct {
	// Patterns are doublestar globs relative to the root.
	Patterns []string

	// ExcludeDirs names directories skipped during discovery.
	ExcludeDirs []string

	// Validation is passed through to cross-document validation.
	Validation validate.Options

	Logger *slog.Logger
}

// Loader runs discovery, parsing, and validation over a root
// directory.
type Loader struct {
	root   string
	opts   Options
	logger *slog.Logger
}

// New creates a loader over the root directory.
func New(root string, opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns
	}
	return &Loader{root: root, opts: opts, logger: logger}
}

// Load discovers, parses, and validates every document under the
// root. Per-document parsing runs in parallel; cross-document checks
// run after the join over the structurally valid subset.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	paths, err := Discover(l.root, l.opts.Patterns, l.opts.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("discover documents: %w", err)
	}
	l.logger.Debug("discovered documents", "root", l.root, "count", len(paths))

	files := make([]*File, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			files[i] = l.loadOne(path)
		}(i, path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.logger.Info("parsed documents", "kinds", sortedKinds(files))

	report := validate.NewReport()
	var lifecycles []*lifecycle.Spec
	var processes []*process.Spec
	var systems []*system.Spec
	for _, f := range files {
		report.AddDocument(f.Path, f.Kind, f.Issues)
		if f.Excluded() {
			l.logger.Warn("document excluded from cross-validation", "path", f.Path)
			continue
		}
		switch {
		case f.lifecycle != nil:
			lifecycles = append(lifecycles, f.lifecycle)
		case f.process != nil:
			processes = append(processes, f.process)
		case f.system != nil:
			systems = append(systems, f.system)
		}
	}

	var sys *system.Spec
	if len(systems) > 0 {
		sys = systems[0]
		for _, extra := range systems[1:] {
			report.CrossDocument = append(report.CrossDocument,
				spec.CrossDoc(spec.CodeDuplicateModule, "system", extra.System,
					"more than one system document in the set"))
		}
	}

	set := validate.NewSet(lifecycles, processes, sys)
	report.CrossDocument = append(report.CrossDocument,
		validate.CrossValidate(set, l.opts.Validation)...)

	return &Result{Set: set, Report: report, Files: files}, nil
}

func (l *Loader) loadOne(path string) *File {
	f := &File{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		f.Issues = spec.Issues{spec.Structural(spec.CodeMissingField, "", path,
			"read document: %v", err)}
		return f
	}

	kind, err := SniffKind(data)
	if err != nil {
		f.Issues = spec.Issues{spec.Structural(spec.CodeUnsupportedVersion, "ubispec", path, "%v", err)}
		return f
	}
	f.Kind = kind

	switch kind {
	case spec.KindLifecycle:
		f.lifecycle, f.Issues = lifecycle.Parse(path, data)
	case spec.KindProcess:
		f.process, f.Issues = process.Parse(path, data)
	case spec.KindSystem:
		f.system, f.Issues = system.Parse(path, data)
	}
	return f
}

// sortedKinds is used for stable log output only.
func sortedKinds(files []*File) []string {
	counts := make(map[string]int)
	for _, f := range files {
		counts[string(f.Kind)]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	sort.Strings(kinds)
	return kinds
}
