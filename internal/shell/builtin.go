package shell

import (
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/escaper"
)

var unixLike = []domain.Platform{domain.PlatformLinux, domain.PlatformDarwin}

func posixShell(id, name, binary string, esc escaper.Escaper) Shell {
	return &augmenting{
		Definition: &Definition{
			id:            id,
			name:          name,
			binary:        binary,
			args:          []string{"-c", "{{shell_command}}"},
			platforms:     unixLike,
			listSeparator: ":",
			translator:    nativeTranslator{separator: "/", host: domain.CurrentPlatform()},
			escaper:       esc,
		},
		pathToken: "$PATH",
	}
}

// Builtins returns fresh instances of the shells every installation knows.
func Builtins() []Shell {
	host := domain.CurrentPlatform()
	return []Shell{
		posixShell("bash", "Bash", "bash", escaper.NewBash()),
		posixShell("dash", "Dash", "dash", escaper.NewPosix()),
		posixShell("zsh", "Zsh", "zsh", escaper.NewBash()),
		posixShell("sh", "Bourne shell", "sh", escaper.NewPosix()),
		&augmenting{
			Definition: &Definition{
				id:            "powershell",
				name:          "PowerShell 5",
				binary:        "powershell.exe",
				args:          []string{"-NoProfile", "-NonInteractive", "-Command", "{{shell_command}}"},
				platforms:     []domain.Platform{domain.PlatformWindows},
				listSeparator: ";",
				translator:    nativeTranslator{separator: `\`, host: host},
				escaper:       escaper.PowerShell{},
			},
			pathToken: "$env:PATH",
		},
		&augmenting{
			Definition: &Definition{
				id:         "pwsh",
				name:       "PowerShell Core",
				binary:     "pwsh",
				args:       []string{"-NoProfile", "-NonInteractive", "-Command", "{{shell_command}}"},
				platforms:  domain.AllPlatforms,
				translator: nativeTranslator{separator: hostSeparator(host), host: host},
				escaper:    escaper.PowerShell{},
			},
			pathToken: "$env:PATH",
		},
		&augmenting{
			Definition: &Definition{
				id:            "cmd",
				name:          "Command prompt (cmd.exe)",
				binary:        "cmd.exe",
				args:          []string{"/d", "/s", "/c", `"{{shell_command}}"`},
				platforms:     []domain.Platform{domain.PlatformWindows},
				listSeparator: ";",
				translator:    nativeTranslator{separator: `\`, host: host},
				escaper:       escaper.Passthrough{},
				verbatimArgs:  true,
			},
			pathToken: "%PATH%",
		},
		// wsl.exe does not forward the Windows environment, so no PATH augmentation.
		&Definition{
			id:            "wsl",
			name:          "Windows Subsystem for Linux",
			binary:        "wsl.exe",
			args:          []string{"--cd", "{{working_directory}}", "bash", "-c", "{{shell_command}}"},
			platforms:     []domain.Platform{domain.PlatformWindows},
			listSeparator: ":",
			translator:    wslTranslator{mountRoot: "/mnt"},
			escaper:       escaper.NewBash(),
		},
	}
}

// BuiltinDefault is the shell used when neither the command nor the config picks one.
func BuiltinDefault(p domain.Platform) string {
	switch p {
	case domain.PlatformDarwin:
		return "zsh"
	case domain.PlatformWindows:
		return "powershell"
	default:
		return "bash"
	}
}

func hostSeparator(host domain.Platform) string {
	if host == domain.PlatformWindows {
		return `\`
	}
	return "/"
}
