package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_WritesPlainTextToBuffers(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut)

	r.ShowCommand("ls -la")
	r.ShowText("Lists files.\n\n")
	r.ShowWarning("command not saved to memory: boom")

	assert.Equal(t, "ls -la\nLists files.\n", out.String())
	assert.Equal(t, "warning: command not saved to memory: boom\n", errOut.String())
}
