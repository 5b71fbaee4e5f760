package shell

import "path/filepath"

// HostWorkingDirectory resolves the configured working directory on the host:
// absolute paths are used as is, relative ones are joined to the vault root, and
// an empty setting means the vault root itself.
func HostWorkingDirectory(configured, vaultRoot string) string {
	switch {
	case configured == "":
		return vaultRoot
	case filepath.IsAbs(configured) || isWindowsAbs(configured):
		return configured
	default:
		return filepath.Join(vaultRoot, configured)
	}
}

// WorkingDirectory is HostWorkingDirectory as seen from inside s.
func WorkingDirectory(configured, vaultRoot string, s Shell) string {
	return s.TranslateAbsolutePath(HostWorkingDirectory(configured, vaultRoot))
}

func isWindowsAbs(path string) bool {
	return windowsDrive.MatchString(path) && len(path) > 2
}
