// Package shellhistory reads bash, zsh, fish and PowerShell history files into
// a single stream of domain.CommandEvent values.
package shellhistory

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"unicode/utf8"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

// FileSource decodes the history file named by a ShellProfile.
type FileSource struct {
	profile domain.ShellProfile
}

// NewFileSource returns a source bound to the session's resolved profile.
func NewFileSource(profile domain.ShellProfile) *FileSource {
	return &FileSource{profile: profile}
}

// Profile implements ports.HistorySource.
func (s *FileSource) Profile() domain.ShellProfile {
	return s.profile
}

// Events implements ports.HistorySource. The file is re-read on every call;
// the returned sequence yields the most recent command first.
func (s *FileSource) Events(profile domain.ShellProfile) (iter.Seq[domain.CommandEvent], error) {
	if !profile.Supported() {
		return nil, fmt.Errorf("%w: shell %q is not supported", domain.ErrHistoryUnavailable, profile.Kind)
	}
	file, err := os.Open(profile.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	defer file.Close()

	events, err := Decode(file, profile.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrHistoryUnavailable, profile.HistoryPath, err)
	}
	return func(yield func(domain.CommandEvent) bool) {
		for i := len(events) - 1; i >= 0; i-- {
			if !yield(events[i]) {
				return
			}
		}
	}, nil
}

// Decode parses r in file order (oldest first). Lines that do not match the
// grammar or are not valid UTF-8 are skipped.
func Decode(r io.Reader, format domain.HistoryFormat) ([]domain.CommandEvent, error) {
	dec := newDecoder(format)
	reader := bufio.NewReader(r)
	var events []domain.CommandEvent
	for {
		raw, err := reader.ReadBytes('\n')
		if len(raw) > 0 {
			line := bytes.TrimRight(raw, "\r\n")
			if format == domain.HistoryTimestamped {
				line = unmetafy(line)
			}
			if utf8.Valid(line) {
				if event, ok := dec.feed(string(line)); ok {
					events = append(events, event)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if event, ok := dec.flush(); ok {
		events = append(events, event)
	}
	return events, nil
}

var _ ports.HistorySource = (*FileSource)(nil)
