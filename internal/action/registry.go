package action

import (
	"sort"
	"strings"

	proverr "provision/internal/errors"
)

// Registry holds the named actions and their dependency graph.
type Registry struct {
	actions map[string]Action
	names   []string // registration order, for deterministic iteration
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{actions: map[string]Action{}}
}

// Register adds an action. Registration order is free: dependencies on
// not-yet-registered names are checked by ResolveOrder, so the catalog
// can be declared in any order.
func (r *Registry) Register(a Action) error {
	name := a.Name()
	if name == "" {
		return proverr.New(proverr.InvalidParameter, "action has no name")
	}
	if _, dup := r.actions[name]; dup {
		return proverr.Newf(proverr.DuplicateName, "action %q already registered", name)
	}
	r.actions[name] = a
	r.names = append(r.names, name)
	return nil
}

// Get returns a registered action by name.
func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.actions)
}

// ResolveOrder validates the graph and returns the actions in
// topological order (Kahn's algorithm, name-sorted tie-break so the
// order is stable across runs). Fails with UnknownDependency if an edge
// points at an unregistered action and CycleDetected, naming the cycle
// members, if the graph is not acyclic.
func (r *Registry) ResolveOrder() ([]Action, error) {
	inDegree := map[string]int{}
	dependents := map[string][]string{}

	for _, name := range r.names {
		inDegree[name] += 0
		for _, dep := range r.actions[name].DependsOn() {
			if _, ok := r.actions[dep]; !ok {
				return nil, proverr.Newf(proverr.UnknownDependency,
					"action %q depends on unregistered action %q", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]Action, 0, len(r.actions))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, r.actions[name])

		var unlocked []string
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		sort.Strings(unlocked)
		ready = mergeSorted(ready, unlocked)
	}

	if len(order) != len(r.actions) {
		return nil, proverr.Newf(proverr.CycleDetected,
			"dependency cycle between actions: %s", strings.Join(r.cycleMembers(inDegree), ", "))
	}
	return order, nil
}

// cycleMembers narrows the unsorted remainder of Kahn's algorithm down
// to the nodes actually on cycles by repeatedly stripping nodes without
// incoming or outgoing edges inside the remainder.
func (r *Registry) cycleMembers(inDegree map[string]int) []string {
	remaining := map[string]bool{}
	for name, deg := range inDegree {
		if deg > 0 {
			remaining[name] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for name := range remaining {
			hasIn, hasOut := false, false
			for _, dep := range r.actions[name].DependsOn() {
				if remaining[dep] {
					hasIn = true
				}
				// A self-edge counts as both directions.
				if dep == name {
					hasOut = true
				}
			}
			for other := range remaining {
				if hasOut {
					break
				}
				if other == name {
					continue
				}
				for _, dep := range r.actions[other].DependsOn() {
					if dep == name {
						hasOut = true
						break
					}
				}
				if hasOut {
					break
				}
			}
			if !hasIn || !hasOut {
				delete(remaining, name)
				changed = true
			}
		}
	}

	members := make([]string, 0, len(remaining))
	for name := range remaining {
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}

func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
