package variables

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ncruces/go-strftime"

	"github.com/doeshing/shcmd/internal/domain"
)

var (
	errNoDocument  = errors.New("no file is active")
	errNoSelection = errors.New("no text is selected")
	errNoShell     = errors.New("no shell is selected")
)

var pathMode = Parameter{Name: "mode", Options: []string{"absolute", "relative"}, Required: true}

// Builtins returns the variables available in every installation.
func Builtins() []Variable {
	vars := []Variable{
		document("title", "Name of the active file without its extension.", nil,
			func(_ context.Context, vc *Context, _ []string) (string, error) {
				base := filepath.Base(vc.Document.Path)
				return strings.TrimSuffix(base, filepath.Ext(base)), nil
			}),
		document("file_name", "Name of the active file including its extension.", nil,
			func(_ context.Context, vc *Context, _ []string) (string, error) {
				return filepath.Base(vc.Document.Path), nil
			}),
		document("file_extension", "Extension of the active file.",
			[]Parameter{{Name: "dot", Options: []string{"with-dot", "no-dot"}, Required: true}},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				ext := filepath.Ext(vc.Document.Path)
				if args[0] == "no-dot" {
					return strings.TrimPrefix(ext, "."), nil
				}
				return ext, nil
			}),
		document("file_path", "Path of the active file.", []Parameter{pathMode},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				return vc.translate(vc.Document.Path, args[0])
			}),
		document("folder_name", "Name of the folder containing the active file.", nil,
			func(_ context.Context, vc *Context, _ []string) (string, error) {
				return filepath.Base(filepath.Dir(vc.Document.Path)), nil
			}),
		document("folder_path", "Path of the folder containing the active file.", []Parameter{pathMode},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				return vc.translate(filepath.Dir(vc.Document.Path), args[0])
			}),
		document("yaml_value", "A value from the active file's YAML front matter, addressed with a dotted key.",
			[]Parameter{{Name: "key", Required: true, Rest: true}},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				return frontMatterValue(vc.fs(), vc.Document.Path, args[0])
			}),
		NewGuarded(
			NewFunc("selection", "Text selected in the active file.", nil,
				func(_ context.Context, vc *Context, _ []string) (string, error) {
					return *vc.Document.Selection, nil
				}),
			func(vc *Context) error {
				if !vc.Document.HasSelection() {
					return errNoSelection
				}
				return nil
			}),
		NewGuarded(
			NewFunc("vault_path", "Absolute path of the vault root.", nil,
				func(_ context.Context, vc *Context, _ []string) (string, error) {
					return vc.Shell.TranslateAbsolutePath(vc.VaultRoot), nil
				}),
			requireShell),
		NewFunc("date", "Current date and time, formatted with strftime directives (e.g. %Y-%m-%d).",
			[]Parameter{{Name: "format", Required: true, Rest: true}},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				return strftime.Format(args[0], vc.now()), nil
			}),
		NewFunc("environment", "Value of an environment variable of the shcmd process.",
			[]Parameter{{Name: "name", Required: true}},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				getenv := vc.Getenv
				if getenv == nil {
					return "", errors.New("environment is not accessible")
				}
				value := getenv(args[0])
				if value == "" {
					return "", fmt.Errorf("environment variable %s is not set", args[0])
				}
				return value, nil
			}),
		NewGuarded(
			NewFunc("clipboard", "Current clipboard text.", nil,
				func(_ context.Context, vc *Context, _ []string) (string, error) {
					return vc.Clipboard.Read()
				}),
			func(vc *Context) error {
				if vc.Clipboard == nil || !vc.Clipboard.Enabled() {
					return errors.New("clipboard is not accessible")
				}
				return nil
			}),
		NewFunc("operating_system", "Name of the host operating system.", nil,
			func(context.Context, *Context, []string) (string, error) {
				return domain.CurrentPlatform().DisplayName(), nil
			}),
		NewGuarded(
			NewFunc("shell", "Name of the shell the command runs in.", nil,
				func(_ context.Context, vc *Context, _ []string) (string, error) {
					return vc.Shell.Name(), nil
				}),
			requireShell),
		NewFunc("newline", "A line break.", nil,
			func(context.Context, *Context, []string) (string, error) {
				return "\n", nil
			}),
	}
	return append(vars, eventVariables()...)
}

func document(name, help string, params []Parameter, resolve func(context.Context, *Context, []string) (string, error)) Variable {
	return NewGuarded(NewFunc(name, help, params, resolve), func(vc *Context) error {
		if vc.Document == nil || vc.Document.Path == "" {
			return errNoDocument
		}
		return requireShell(vc)
	})
}

func requireShell(vc *Context) error {
	if vc.Shell == nil {
		return errNoShell
	}
	return nil
}

// translate renders a host path as the shell sees it, either absolute or relative to the vault.
func (vc *Context) translate(path, mode string) (string, error) {
	if mode == "absolute" {
		return vc.Shell.TranslateAbsolutePath(path), nil
	}
	rel, err := filepath.Rel(vc.VaultRoot, path)
	if err != nil {
		return "", fmt.Errorf("%s is not inside the vault: %w", path, err)
	}
	return vc.Shell.TranslateRelativePath(rel), nil
}
