package domain

import (
	"runtime"
	"strings"
)

// Platform identifies a host operating system.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformWindows Platform = "windows"
)

// AllPlatforms lists every supported host platform in display order.
var AllPlatforms = []Platform{PlatformLinux, PlatformDarwin, PlatformWindows}

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	return ParsePlatform(runtime.GOOS)
}

// ParsePlatform converts GOOS-like strings ("macos" is accepted) into a Platform.
// Unknown values map to linux since every non-windows host gets a POSIX shell.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows", "win32":
		return PlatformWindows
	case "darwin", "macos":
		return PlatformDarwin
	default:
		return PlatformLinux
	}
}

// DisplayName returns a human readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformDarwin:
		return "macOS"
	case PlatformWindows:
		return "Windows"
	default:
		return "Linux"
	}
}
