package domain

// ParsingResult is the outcome of resolving one template field.
// OriginalContent is always the unmodified template.
type ParsingResult struct {
	Succeeded            bool
	ParsedContent        *string
	ErrorMessages        []string
	CountParsedVariables int
	OriginalContent      string
}

// FirstError returns the message shown prominently to users.
func (r ParsingResult) FirstError() string {
	if len(r.ErrorMessages) == 0 {
		return ""
	}
	return r.ErrorMessages[0]
}

// Content returns the parsed content, or "" when parsing failed.
func (r ParsingResult) Content() string {
	if r.ParsedContent == nil {
		return ""
	}
	return *r.ParsedContent
}

// ShellCommandParsingResult is the resolved bundle handed to execution.
type ShellCommandParsingResult struct {
	UnwrappedCommand string
	WrappedCommand   string
	Alias            string
	PathAugmentation string
	Stdin            *string
	StdoutWrapper    *string
	StderrWrapper    *string
	Succeeded        bool
	ErrorMessages    []string
}

// Names of the fields a shell command is split into for parsing.
const (
	FieldCommand          = "shell_command"
	FieldAlias            = "alias"
	FieldShellWrapper     = "shell_wrapper"
	FieldStdin            = "stdin"
	FieldStdoutWrapper    = "output_wrapper_stdout"
	FieldStderrWrapper    = "output_wrapper_stderr"
	FieldPathAugmentation = "path_augmentation"
)
