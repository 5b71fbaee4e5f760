package shell

import (
	"regexp"
	"strings"

	"github.com/doeshing/shcmd/internal/domain"
)

// PathTranslator maps host paths into the namespace a shell sees.
type PathTranslator interface {
	Absolute(path string) string
	Relative(path string) string
}

// nativeTranslator only normalises separators, and only on Windows hosts where both
// separators are legal. Elsewhere a backslash is part of a file name and is kept.
type nativeTranslator struct {
	separator string
	host      domain.Platform
}

func (n nativeTranslator) Absolute(path string) string { return n.normalize(path) }
func (n nativeTranslator) Relative(path string) string { return n.normalize(path) }

func (n nativeTranslator) normalize(path string) string {
	if n.host != domain.PlatformWindows {
		return path
	}
	if n.separator == "/" {
		return strings.ReplaceAll(path, `\`, "/")
	}
	return strings.ReplaceAll(path, "/", `\`)
}

var windowsDrive = regexp.MustCompile(`^([A-Za-z]):[\\/]?`)

// wslTranslator maps Windows paths to the WSL mount namespace: C:\a\b -> /mnt/c/a/b.
type wslTranslator struct {
	mountRoot string
}

func (w wslTranslator) Absolute(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	m := windowsDrive.FindStringSubmatch(path)
	if m == nil {
		return path
	}
	rest := strings.TrimPrefix(path[len(m[0]):], "/")
	out := w.mountRoot + "/" + strings.ToLower(m[1])
	if rest != "" {
		out += "/" + rest
	}
	return out
}

func (w wslTranslator) Relative(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

func translatorByName(name string, separator string) (PathTranslator, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "native":
		return nativeTranslator{separator: separator, host: domain.CurrentPlatform()}, true
	case "wsl":
		return wslTranslator{mountRoot: "/mnt"}, true
	default:
		return nil, false
	}
}
