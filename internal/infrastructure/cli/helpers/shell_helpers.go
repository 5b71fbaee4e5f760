package helpers

import (
	"path/filepath"
	"strings"

	"github.com/doeshing/shcmd/internal/domain"
)

// NormalizeShellName extracts the basename and normalizes a shell name
// Handles both simple names and full paths (e.g., "/bin/zsh" -> "zsh", "pwsh.exe" -> "pwsh")
func NormalizeShellName(value string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(value), `\`, "/"))
	base = strings.ToLower(base)
	return strings.TrimSuffix(base, ".exe")
}

// MatchShell reports whether a descriptor is meant by query, given as an id or a binary.
func MatchShell(d domain.ShellDescriptor, query string) bool {
	if strings.EqualFold(d.ID, query) {
		return true
	}
	return NormalizeShellName(d.Binary) == NormalizeShellName(query)
}

// FormatPlatforms joins platform display names.
func FormatPlatforms(platforms []domain.Platform) string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.DisplayName())
	}
	return strings.Join(names, ", ")
}
