package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/doeshing/shcmd/internal/ports"
)

// clipboardTool is an external program pair for one platform.
type clipboardTool struct {
	copy  []string
	paste []string
}

func clipboardTools(goos string) []clipboardTool {
	switch goos {
	case "darwin":
		return []clipboardTool{{copy: []string{"pbcopy"}, paste: []string{"pbpaste"}}}
	case "windows":
		return []clipboardTool{{
			copy:  []string{"clip"},
			paste: []string{"powershell", "-NoProfile", "-Command", "Get-Clipboard -Raw"},
		}}
	default:
		return []clipboardTool{
			{copy: []string{"wl-copy"}, paste: []string{"wl-paste", "--no-newline"}},
			{copy: []string{"xclip", "-selection", "clipboard"}, paste: []string{"xclip", "-selection", "clipboard", "-o"}},
			{copy: []string{"xsel", "--clipboard", "--input"}, paste: []string{"xsel", "--clipboard", "--output"}},
		}
	}
}

// Clipboard implements ports.Clipboard using platform-specific tools.
type Clipboard struct {
	goos     string
	lookPath func(string) (string, error)
}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{goos: runtime.GOOS, lookPath: exec.LookPath}
}

var errNoClipboard = errors.New("clipboard utilities not found")

func (c *Clipboard) tool() (clipboardTool, error) {
	for _, t := range clipboardTools(c.goos) {
		if _, err := c.lookPath(t.copy[0]); err != nil {
			continue
		}
		if _, err := c.lookPath(t.paste[0]); err != nil {
			continue
		}
		return t, nil
	}
	return clipboardTool{}, errNoClipboard
}

// Enabled reports whether a clipboard tool is installed.
func (c *Clipboard) Enabled() bool {
	_, err := c.tool()
	return err == nil
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	t, err := c.tool()
	if err != nil {
		return err
	}
	cmd := exec.Command(t.copy[0], t.copy[1:]...)
	cmd.Stdin = bytes.NewBufferString(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", t.copy[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Read returns the clipboard text.
func (c *Clipboard) Read() (string, error) {
	t, err := c.tool()
	if err != nil {
		return "", err
	}
	var stderr bytes.Buffer
	cmd := exec.Command(t.paste[0], t.paste[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", t.paste[0], err, strings.TrimSpace(stderr.String()))
	}
	text := string(out)
	if c.goos == "windows" {
		text = strings.TrimSuffix(text, "\r\n")
	}
	return text, nil
}

var _ ports.Clipboard = (*Clipboard)(nil)
