// Package historyview filters decoded shell history and renders it as the
// text block embedded in model prompts.
package historyview

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

const (
	header         = "Command History: \n"
	unknownDate    = "unknown"
	blockSeparator = "\n"
)

// Select returns the first max events accepted by keep, in input order.
// Duplicates are preserved. A nil keep accepts everything.
func Select(events iter.Seq[domain.CommandEvent], keep Predicate, max int) []domain.CommandEvent {
	if events == nil || max <= 0 {
		return nil
	}
	if keep == nil {
		keep = All
	}
	selected := make([]domain.CommandEvent, 0, min(max, 64))
	for event := range events {
		if !keep(event) {
			continue
		}
		selected = append(selected, event)
		if len(selected) == max {
			break
		}
	}
	return selected
}

// Format renders events as the prompt history block.
func Format(events []domain.CommandEvent) string {
	blocks := make([]string, 0, len(events))
	for _, event := range events {
		blocks = append(blocks, formatEvent(event))
	}
	return header + strings.Join(blocks, blockSeparator)
}

// Normalize is Format(Select(events, keep, max)).
func Normalize(events iter.Seq[domain.CommandEvent], keep Predicate, max int) string {
	return Format(Select(events, keep, max))
}

func formatEvent(event domain.CommandEvent) string {
	date := unknownDate
	if event.HasTimestamp() {
		date = event.Timestamp.Format(domain.HistoryDateLayout)
	}
	return fmt.Sprintf("Command: %s\nExecution Date: %s\n", event.Command, date)
}

// Empty is the sequence substituted when no history is available.
func Empty() iter.Seq[domain.CommandEvent] {
	return func(func(domain.CommandEvent) bool) {}
}

// Load reads the session's history, degrading to an empty sequence when the
// history file cannot be used.
func Load(source ports.HistorySource, logger ports.Logger) iter.Seq[domain.CommandEvent] {
	if source == nil {
		return Empty()
	}
	profile := source.Profile()
	events, err := source.Events(profile)
	if err != nil {
		if logger != nil {
			fields := map[string]interface{}{"shell": string(profile.Kind), "path": profile.HistoryPath}
			if errors.Is(err, domain.ErrHistoryUnavailable) {
				logger.Debug("shell history unavailable", fields)
			} else {
				logger.Warn("shell history read failed", fields)
			}
		}
		return Empty()
	}
	return events
}
