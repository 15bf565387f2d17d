// Package validate checks inter-document consistency that no single
// document can verify alone: event and command resolution between
// process and lifecycle documents, decider presence, correlate-field
// coverage, and module/decider integrity against the system map. It
// also assembles the aggregated validation report for a whole run.
package validate

import (
	"github.com/mean-machine-gc/ubispec/lifecycle"
	"github.com/mean-machine-gc/ubispec/process"
	"github.com/mean-machine-gc/ubispec/system"
)

// Set is the arena of parsed documents under validation. Names are soft
// references: lookup tables keyed by decider and process name, never
// object pointers, so documents can reference each other freely.
type Set struct {
	Lifecycles []*lifecycle.Spec
	Processes  []*process.Spec
	System     *system.Spec

	lifecycleByDecider map[string]*lifecycle.Spec
	processByName      map[string]*process.Spec
	eventsByDecider    map[string]map[string]bool
	commandsByDecider  map[string]map[string]bool
}

// NewSet indexes the given documents for cross-validation and
// derivation. The system document may be nil.
func NewSet(lifecycles []*lifecycle.Spec, processes []*process.Spec, sys *system.Spec) *Set {
	s := &Set{
		Lifecycles:         lifecycles,
		Processes:          processes,
		System:             sys,
		lifecycleByDecider: make(map[string]*lifecycle.Spec, len(lifecycles)),
		processByName:      make(map[string]*process.Spec, len(processes)),
		eventsByDecider:    make(map[string]map[string]bool, len(lifecycles)),
		commandsByDecider:  make(map[string]map[string]bool, len(lifecycles)),
	}
	for _, l := range lifecycles {
		s.lifecycleByDecider[l.Decider] = l
		events := make(map[string]bool)
		for _, e := range l.Events() {
			events[e] = true
		}
		s.eventsByDecider[l.Decider] = events
		commands := make(map[string]bool)
		for _, c := range l.Commands() {
			commands[c] = true
		}
		s.commandsByDecider[l.Decider] = commands
	}
	for _, p := range processes {
		s.processByName[p.Process] = p
	}
	return s
}

// Lifecycle returns the lifecycle document for the named decider.
func (s *Set) Lifecycle(decider string) (*lifecycle.Spec, bool) {
	l, ok := s.lifecycleByDecider[decider]
	return l, ok
}

// Process returns the named process document.
func (s *Set) Process(name string) (*process.Spec, bool) {
	p, ok := s.processByName[name]
	return p, ok
}

// HasDecider reports whether the set contains a lifecycle document for
// the decider.
func (s *Set) HasDecider(decider string) bool {
	_, ok := s.lifecycleByDecider[decider]
	return ok
}

// DeciderEmits reports whether the decider's lifecycle declares the
// event in some Then block.
func (s *Set) DeciderEmits(decider, event string) bool {
	return s.eventsByDecider[decider][event]
}

// DeciderHandles reports whether the decider's lifecycle declares the
// command as a When.
func (s *Set) DeciderHandles(decider, command string) bool {
	return s.commandsByDecider[decider][command]
}

// CommandReactedTo reports whether any process trigger can ever lead to
// the command being dispatched, i.e. the command appears as a Then
// target in some process document.
func (s *Set) CommandReactedTo(command string) bool {
	for _, p := range s.Processes {
		if p.DispatchesCommand(command) {
			return true
		}
	}
	return false
}

// ProcessesReactingTo returns every process with a trigger naming the
// event, in set order.
func (s *Set) ProcessesReactingTo(event string) []*process.Spec {
	var out []*process.Spec
	for _, p := range s.Processes {
		if p.ReactsToEvent(event) {
			out = append(out, p)
		}
	}
	return out
}
