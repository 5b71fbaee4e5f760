package execution

import (
	"os"
	"strings"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/escaper"
	"github.com/doeshing/shcmd/internal/parsing"
	"github.com/doeshing/shcmd/internal/shell"
	"github.com/doeshing/shcmd/internal/variables"
)

// newProcess splits the command into parsing fields. A field is deferred when it refers
// to a custom variable that one of the command's prompts writes.
func (s *Service) newProcess(req Request, sh shell.Shell) *parsing.Process {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	vc := &variables.Context{
		Document:  req.Document,
		Event:     req.Event,
		Shell:     sh,
		VaultRoot: s.Config.VaultRoot,
		Store:     s.Store,
		Clipboard: s.Clipboard,
		Fs:        s.fs(),
		Getenv:    getenv,
	}

	var prompted []string
	for _, id := range req.Command.PromptTargetIDs() {
		if cv, ok := s.Config.FindCustomVariableByID(id); ok {
			prompted = append(prompted, variables.CustomPrefix+cv.Name)
		}
	}
	field := func(name, template string, esc escaper.Escaper, passthrough ...string) parsing.Field {
		return parsing.Field{
			Name:        name,
			Template:    template,
			Escaper:     esc,
			Deferred:    len(prompted) > 0 && parsing.References(template, prompted...),
			Passthrough: passthrough,
		}
	}

	cmd := req.Command
	fields := []parsing.Field{
		field(domain.FieldCommand, cmd.CommandFor(s.platform()), sh.Escaper()),
		field(domain.FieldAlias, cmd.Alias, nil),
		field(domain.FieldPathAugmentation, s.Config.GetPathAugmentation(s.platform()), nil),
	}
	if w := sh.Wrapper(); w != "" {
		fields = append(fields, field(domain.FieldShellWrapper, w, sh.Escaper(), domain.ShellCommandPlaceholder))
	}
	if cmd.Stdin != "" {
		fields = append(fields, field(domain.FieldStdin, cmd.Stdin, nil))
	}
	if cmd.OutputWrappers.Stdout != "" {
		fields = append(fields, field(domain.FieldStdoutWrapper, cmd.OutputWrappers.Stdout, nil, domain.OutputPlaceholder))
	}
	if cmd.OutputWrappers.Stderr != "" {
		fields = append(fields, field(domain.FieldStderrWrapper, cmd.OutputWrappers.Stderr, nil, domain.OutputPlaceholder))
	}
	return parsing.New(s.Variables, vc, fields...)
}

// assemble builds the resolved bundle from a completed process.
func assemble(p *parsing.Process) domain.ShellCommandParsingResult {
	res := domain.ShellCommandParsingResult{Succeeded: p.State() == parsing.StateComplete}
	for _, r := range p.Results() {
		res.ErrorMessages = append(res.ErrorMessages, r.ErrorMessages...)
	}

	content := func(name string) (string, bool) {
		r, ok := p.Result(name)
		if !ok || !r.Succeeded {
			return "", false
		}
		return r.Content(), true
	}

	res.UnwrappedCommand, _ = content(domain.FieldCommand)
	res.WrappedCommand = res.UnwrappedCommand
	if wrapper, ok := content(domain.FieldShellWrapper); ok {
		res.WrappedCommand = strings.ReplaceAll(wrapper, "{{"+domain.ShellCommandPlaceholder+"}}", res.UnwrappedCommand)
	}
	res.Alias, _ = content(domain.FieldAlias)
	res.PathAugmentation, _ = content(domain.FieldPathAugmentation)
	if v, ok := content(domain.FieldStdin); ok {
		res.Stdin = &v
	}
	if v, ok := content(domain.FieldStdoutWrapper); ok {
		res.StdoutWrapper = &v
	}
	if v, ok := content(domain.FieldStderrWrapper); ok {
		res.StderrWrapper = &v
	}
	return res
}

// displayContent is the parsed content of a field, or its template when it is not resolved yet.
func displayContent(p *parsing.Process, name string) string {
	if r, ok := p.Result(name); ok && r.Succeeded {
		return r.Content()
	}
	if f, ok := p.Field(name); ok {
		return f.Template
	}
	return ""
}
