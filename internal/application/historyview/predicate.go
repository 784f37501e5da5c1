package historyview

import (
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/termind/internal/domain"
)

// Predicate decides whether an event is kept.
type Predicate func(domain.CommandEvent) bool

// All keeps every event.
func All(domain.CommandEvent) bool { return true }

// Contains keeps events whose command contains sub.
func Contains(sub string) Predicate {
	if sub == "" {
		return All
	}
	return func(e domain.CommandEvent) bool {
		return strings.Contains(e.Command, sub)
	}
}

// Fuzzy keeps events whose command fuzzily matches pattern.
func Fuzzy(pattern string) Predicate {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return All
	}
	return func(e domain.CommandEvent) bool {
		return len(fuzzy.Find(pattern, []string{e.Command})) > 0
	}
}

// And keeps events accepted by every predicate.
func And(predicates ...Predicate) Predicate {
	return func(e domain.CommandEvent) bool {
		for _, p := range predicates {
			if p != nil && !p(e) {
				return false
			}
		}
		return true
	}
}

// ExcludeInvocationsOf drops events that run any of the named programs,
// anywhere in a pipeline or list.
func ExcludeInvocationsOf(names ...string) Predicate {
	if len(names) == 0 {
		return All
	}
	return func(e domain.CommandEvent) bool {
		return !lo.Some(InvokedPrograms(e.Command), names)
	}
}

// InvokedPrograms returns the base names of the programs a command line calls.
// Lines that do not parse fall back to their first whitespace-separated field.
func InvokedPrograms(command string) []string {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return nil
		}
		return []string{filepath.Base(fields[0])}
	}
	var programs []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		if name := call.Args[0].Lit(); name != "" {
			programs = append(programs, filepath.Base(name))
		}
		return true
	})
	return lo.Uniq(programs)
}
