package ai

import (
	"regexp"
	"strings"
)

const commandsMarker = "Commands: "

var codeBlockPattern = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9]+)?\n(.*?)```")

// ExtractCommand pulls the shell command out of a model reply. It prefers the
// text after a "Commands: " marker, then fenced code blocks (joined by a blank
// line), then a "command:" line, and finally a reply that is a single line.
// Multi-line prose yields "".
func ExtractCommand(reply string) string {
	if idx := strings.Index(reply, commandsMarker); idx >= 0 {
		rest := strings.TrimSpace(reply[idx+len(commandsMarker):])
		if blocks := extractCodeBlocks(rest); blocks != "" {
			return blocks
		}
		return strings.TrimSpace(strings.Trim(rest, "`"))
	}
	if blocks := extractCodeBlocks(reply); blocks != "" {
		return blocks
	}
	if cmd := extractCommandLine(reply); cmd != "" {
		return cmd
	}
	trimmed := strings.TrimSpace(reply)
	if strings.Contains(trimmed, "\n") {
		return ""
	}
	return strings.TrimSpace(strings.Trim(trimmed, "`"))
}

func extractCodeBlocks(content string) string {
	matches := codeBlockPattern.FindAllStringSubmatch(content, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		if block := strings.TrimSpace(m[1]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// extractCommandLine looks for lines prefixed with "command:" and extracts the text after it.
func extractCommandLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "command:") {
			return strings.TrimSpace(line[len("command:"):])
		}
	}
	return ""
}
