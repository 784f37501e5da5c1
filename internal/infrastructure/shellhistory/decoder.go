package shellhistory

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/termind/internal/domain"
)

// decoder is a line-fed state machine for one history grammar.
type decoder interface {
	// feed consumes one line (without its trailing newline).
	feed(line string) (domain.CommandEvent, bool)
	// flush emits whatever is still pending at end of input.
	flush() (domain.CommandEvent, bool)
}

func newDecoder(format domain.HistoryFormat) decoder {
	switch format {
	case domain.HistoryTimestamped:
		return &timestampedDecoder{}
	case domain.HistoryStructured:
		return &structuredDecoder{}
	default:
		return &plainDecoder{}
	}
}

var bashTimestampLine = regexp.MustCompile(`^#(\d+)$`)

// plainDecoder handles bash and PowerShell: one command per line. With
// HISTTIMEFORMAT set, bash writes a "#<epoch>" line before each command; it
// stamps the next command and is never emitted itself.
type plainDecoder struct {
	pending *time.Time
}

func (d *plainDecoder) feed(line string) (domain.CommandEvent, bool) {
	cmd := strings.TrimSpace(line)
	if m := bashTimestampLine.FindStringSubmatch(cmd); m != nil {
		d.pending = nil
		if epoch, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			ts := time.Unix(epoch, 0)
			d.pending = &ts
		}
		return domain.CommandEvent{}, false
	}
	if cmd == "" {
		return domain.CommandEvent{}, false
	}
	event := domain.CommandEvent{Command: cmd, Timestamp: d.pending}
	d.pending = nil
	return event, true
}

func (d *plainDecoder) flush() (domain.CommandEvent, bool) {
	d.pending = nil
	return domain.CommandEvent{}, false
}

var extendedHistoryLine = regexp.MustCompile(`^: (\d+):(\d+);(.*)$`)

// timestampedDecoder handles zsh EXTENDED_HISTORY lines.
type timestampedDecoder struct{}

func (timestampedDecoder) feed(line string) (domain.CommandEvent, bool) {
	m := extendedHistoryLine.FindStringSubmatch(line)
	if m == nil {
		return domain.CommandEvent{}, false
	}
	epoch, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return domain.CommandEvent{}, false
	}
	cmd := strings.TrimSpace(m[3])
	if cmd == "" {
		return domain.CommandEvent{}, false
	}
	ts := time.Unix(epoch, 0)
	return domain.CommandEvent{Command: cmd, Timestamp: &ts}, true
}

func (timestampedDecoder) flush() (domain.CommandEvent, bool) {
	return domain.CommandEvent{}, false
}

// structuredDecoder handles the fish history pseudo-YAML. An entry looks
// like this:
//
//	- cmd: git status
//	  when: 1700000000
//	  paths:
//	    - foo
//
// A cmd without a when before the next cmd (or EOF) is emitted untimed.
type structuredDecoder struct {
	pending *string
}

func (d *structuredDecoder) feed(line string) (domain.CommandEvent, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "- cmd:"):
		prev, ok := d.flush()
		cmd := unescapeFish(strings.TrimSpace(strings.TrimPrefix(trimmed, "- cmd:")))
		if cmd != "" {
			d.pending = &cmd
		}
		return prev, ok
	case strings.HasPrefix(trimmed, "when:"):
		if d.pending == nil {
			return domain.CommandEvent{}, false
		}
		epoch, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(trimmed, "when:")), 10, 64)
		if err != nil {
			return domain.CommandEvent{}, false
		}
		ts := time.Unix(epoch, 0)
		event := domain.CommandEvent{Command: *d.pending, Timestamp: &ts}
		d.pending = nil
		return event, true
	default:
		return domain.CommandEvent{}, false
	}
}

func (d *structuredDecoder) flush() (domain.CommandEvent, bool) {
	if d.pending == nil {
		return domain.CommandEvent{}, false
	}
	event := domain.CommandEvent{Command: *d.pending}
	d.pending = nil
	return event, true
}

// unescapeFish reverses fish's history escaping of backslash and newline.
func unescapeFish(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// zsh writes bytes 0x83-0xa2 (and NUL) as Meta followed by byte^0x20.
const zshMeta = 0x83

func unmetafy(line []byte) []byte {
	idx := -1
	for i, c := range line {
		if c == zshMeta {
			idx = i
			break
		}
	}
	if idx < 0 {
		return line
	}
	out := make([]byte, 0, len(line))
	out = append(out, line[:idx]...)
	for i := idx; i < len(line); i++ {
		if line[i] == zshMeta && i+1 < len(line) {
			i++
			out = append(out, line[i]^0x20)
			continue
		}
		out = append(out, line[i])
	}
	return out
}
