package derive

import (
	"sort"
	"strings"

	"github.com/mean-machine-gc/ubispec/spec"
)

// Dependency is one predicate that reads external context (dm.ctx or
// rm.ctx) inside a command decision or a process reaction.
type Dependency struct {
	Document  string `json:"document"`
	Owner     string `json:"owner"` // command for lifecycles, trigger for processes
	Predicate string `json:"predicate"`
	Expr      string `json:"expr,omitempty"`

	// Hint is the adjacent "# shell:" resolution hint. Nil when the
	// predicate is written at scope-annotation level, where no concrete
	// resolution exists yet.
	Hint *string `json:"hint"`
}

// ServiceDeps groups the dependencies resolved against one external
// service, inferred from the hint's leading identifier.
type ServiceDeps struct {
	Service      string       `json:"service"` // "" when unresolved
	Dependencies []Dependency `json:"dependencies"`
}

// ManifestEntry holds all external dependencies of one command or
// reaction, grouped by service.
type ManifestEntry struct {
	Document string        `json:"document"`
	Owner    string        `json:"owner"`
	Services []ServiceDeps `json:"services"`
}

// Manifest scans every predicate value in the set for dm.ctx or rm.ctx
// references and assembles the integration dependency manifest.
func (e *Engine) Manifest() []ManifestEntry {
	var deps []Dependency

	for _, l := range e.set.Lifecycles {
		for _, d := range l.Lifecycle {
			collect := func(entry spec.PredicateEntry) {
				if dep, ok := contextDep(l.Decider, d.When, entry, l.Common); ok {
					deps = append(deps, dep)
				}
			}
			for _, c := range d.And {
				collect(c)
			}
			for _, ev := range d.Then {
				for _, c := range ev.Conditions {
					collect(c)
				}
			}
			for _, a := range d.Outcome.Always {
				collect(a)
			}
			for _, entry := range d.Outcome.Keyed {
				for _, a := range entry.Assertions {
					collect(a)
				}
			}
		}
	}

	for _, p := range e.set.Processes {
		for _, r := range p.Reactions {
			owner := strings.Join(r.Trigger.EventNames(), " | ")
			collect := func(entry spec.PredicateEntry) {
				if dep, ok := contextDep(p.Process, owner, entry, p.Common); ok {
					deps = append(deps, dep)
				}
			}
			for _, c := range r.And {
				collect(c)
			}
			for _, cmd := range r.Then {
				for _, c := range cmd.Conditions {
					collect(c)
				}
			}
			for _, a := range r.Outcome.Always {
				collect(a)
			}
			for _, entry := range r.Outcome.Keyed {
				for _, a := range entry.Assertions {
					collect(a)
				}
			}
		}
	}

	return groupManifest(deps)
}

// contextDep resolves a predicate entry against the document's common
// map and reports whether its expression touches external context.
func contextDep(document, owner string, entry spec.PredicateEntry, common spec.PredicateMap) (Dependency, bool) {
	expr, hint := entry.Expr, entry.Hint
	if entry.Bare {
		def, ok := common.Get(entry.Name)
		if !ok {
			return Dependency{}, false
		}
		expr = def.Expr
		if hint == "" {
			hint = def.Hint
		}
	}
	if !strings.Contains(expr, "dm.ctx") && !strings.Contains(expr, "rm.ctx") {
		return Dependency{}, false
	}
	dep := Dependency{Document: document, Owner: owner, Predicate: entry.Name, Expr: expr}
	if spec.ClassifyDetail(expr) != spec.DetailScope && hint != "" {
		dep.Hint = &hint
	}
	return dep, true
}

// ServiceName extracts the external-service name from a resolution
// hint: the leading identifier before the first dot.
func ServiceName(hint string) string {
	hint = strings.TrimSpace(hint)
	if i := strings.IndexAny(hint, ". ("); i > 0 {
		return hint[:i]
	}
	return hint
}

func groupManifest(deps []Dependency) []ManifestEntry {
	type ownerKey struct{ document, owner string }

	byOwner := make(map[ownerKey][]Dependency)
	var order []ownerKey
	for _, d := range deps {
		k := ownerKey{d.Document, d.Owner}
		if _, seen := byOwner[k]; !seen {
			order = append(order, k)
		}
		byOwner[k] = append(byOwner[k], d)
	}

	entries := make([]ManifestEntry, 0, len(order))
	for _, k := range order {
		byService := make(map[string][]Dependency)
		for _, d := range byOwner[k] {
			svc := ""
			if d.Hint != nil {
				svc = ServiceName(*d.Hint)
			}
			byService[svc] = append(byService[svc], d)
		}
		services := make([]ServiceDeps, 0, len(byService))
		for svc, list := range byService {
			services = append(services, ServiceDeps{Service: svc, Dependencies: list})
		}
		sort.Slice(services, func(i, j int) bool { return services[i].Service < services[j].Service })
		entries = append(entries, ManifestEntry{Document: k.document, Owner: k.owner, Services: services})
	}
	return entries
}
