package cli

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/doeshing/termind/internal/ports"
)

// Clipboard implements ports.Clipboard on top of the platform clipboard
// utilities (pbcopy, xclip/xsel/wl-copy, or the Windows API).
type Clipboard struct{}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Enabled is false when no clipboard utility was found.
func (c *Clipboard) Enabled() bool {
	return !clipboard.Unsupported
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Enabled() {
		return errors.New("clipboard utilities not found")
	}
	return clipboard.WriteAll(text)
}

var _ ports.Clipboard = (*Clipboard)(nil)
