package variables

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

var errNoEvent = errors.New("the command was not triggered by an event")

func eventVariables() []Variable {
	return []Variable{
		NewGuarded(
			NewFunc("event_type", "Type of the event that triggered the command.", nil,
				func(_ context.Context, vc *Context, _ []string) (string, error) {
					return string(vc.Event.Type), nil
				}),
			func(vc *Context) error {
				if vc.Event == nil {
					return errNoEvent
				}
				return nil
			}),
		fileEvent("event_file_path", "Path of the file the event concerns.", []Parameter{pathMode},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				return vc.translate(vc.Event.FilePath, args[0])
			}),
		fileEvent("event_file_name", "Name of the file the event concerns.", nil,
			func(_ context.Context, vc *Context, _ []string) (string, error) {
				return filepath.Base(vc.Event.FilePath), nil
			}),
		fileEvent("event_folder_path", "Folder of the file the event concerns.", []Parameter{pathMode},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				return vc.translate(filepath.Dir(vc.Event.FilePath), args[0])
			}),
		fileEvent("event_old_file_path", "Previous path of a renamed file.", []Parameter{pathMode},
			func(_ context.Context, vc *Context, args []string) (string, error) {
				if vc.Event.OldFilePath == "" {
					return "", fmt.Errorf("event %s has no previous path", vc.Event.Type)
				}
				return vc.translate(vc.Event.OldFilePath, args[0])
			}),
	}
}

func fileEvent(name, help string, params []Parameter, resolve func(context.Context, *Context, []string) (string, error)) Variable {
	return NewGuarded(NewFunc(name, help, params, resolve), func(vc *Context) error {
		if !vc.Event.IsFileEvent() {
			return fmt.Errorf("%w concerning a file", errNoEvent)
		}
		return requireShell(vc)
	})
}
