package output

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
)

type ignore struct{}

func (ignore) Code() domain.OutputHandlerCode                            { return domain.OutputIgnore }
func (ignore) Handle(context.Context, domain.OutputStream, string) error { return nil }
func (ignore) Finalize(context.Context) error                            { return nil }

// notification shows complete lines only. A partial trailing line waits for the next
// chunk of its stream, or for Finalize.
type notification struct {
	notifier ports.Notifier
	duration time.Duration
	pending  map[domain.OutputStream]string
}

func (n *notification) Code() domain.OutputHandlerCode { return domain.OutputNotification }

func (n *notification) Handle(_ context.Context, stream domain.OutputStream, content string) error {
	if n.pending == nil {
		n.pending = make(map[domain.OutputStream]string, 2)
	}
	buffered := n.pending[stream] + content
	idx := strings.LastIndexByte(buffered, '\n')
	if idx < 0 {
		n.pending[stream] = buffered
		return nil
	}
	n.pending[stream] = buffered[idx+1:]
	n.show(stream, buffered[:idx])
	return nil
}

func (n *notification) Finalize(context.Context) error {
	for _, stream := range []domain.OutputStream{domain.StreamStdout, domain.StreamStderr} {
		if rest := n.pending[stream]; rest != "" {
			n.show(stream, rest)
		}
	}
	n.pending = nil
	return nil
}

func (n *notification) show(stream domain.OutputStream, content string) {
	content = strings.TrimRight(content, "\r\n")
	if content == "" {
		return
	}
	if stream == domain.StreamStderr {
		n.notifier.Error(content, n.duration)
		return
	}
	n.notifier.Notify(content, n.duration)
}

type terminal struct {
	stdout io.Writer
	stderr io.Writer
}

func (t *terminal) Code() domain.OutputHandlerCode { return domain.OutputTerminal }

func (t *terminal) Handle(_ context.Context, stream domain.OutputStream, content string) error {
	w := t.stdout
	if stream == domain.StreamStderr {
		w = t.stderr
	}
	if w == nil {
		w = os.Stdout
	}
	_, err := io.WriteString(w, content)
	return err
}

func (t *terminal) Finalize(context.Context) error { return nil }

// clipboard collects everything and copies it when finalized.
type clipboard struct {
	clipboard ports.Clipboard
	notifier  ports.Notifier
	duration  time.Duration
	buf       strings.Builder
}

func (c *clipboard) Code() domain.OutputHandlerCode { return domain.OutputClipboard }

func (c *clipboard) Handle(_ context.Context, _ domain.OutputStream, content string) error {
	c.buf.WriteString(content)
	return nil
}

func (c *clipboard) Finalize(context.Context) error {
	if c.buf.Len() == 0 {
		return nil
	}
	if err := c.clipboard.Copy(c.buf.String()); err != nil {
		return err
	}
	if c.notifier != nil {
		c.notifier.Notify("Output copied to the clipboard", c.duration)
	}
	return nil
}

// currentFile inserts output at the top or bottom of the active file.
type currentFile struct {
	fs   afero.Fs
	path string
	top  bool
	buf  strings.Builder
}

func (f *currentFile) Code() domain.OutputHandlerCode {
	if f.top {
		return domain.OutputCurrentFileTop
	}
	return domain.OutputCurrentFileBottom
}

func (f *currentFile) Handle(_ context.Context, _ domain.OutputStream, content string) error {
	f.buf.WriteString(content)
	return nil
}

func (f *currentFile) Finalize(context.Context) error {
	if f.buf.Len() == 0 {
		return nil
	}
	info, err := f.fs.Stat(f.path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New(f.path + " is a directory")
	}
	existing, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return err
	}

	addition := f.buf.String()
	var out string
	if f.top {
		out = joinLines(addition, string(existing))
	} else {
		out = joinLines(string(existing), addition)
	}
	return afero.WriteFile(f.fs, f.path, []byte(out), info.Mode().Perm())
}

// joinLines concatenates a and b, making sure b starts on its own line.
func joinLines(a, b string) string {
	if a == "" || b == "" || strings.HasSuffix(a, "\n") {
		return a + b
	}
	return a + "\n" + b
}
