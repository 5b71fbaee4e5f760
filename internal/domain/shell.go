package domain

// ShellDescriptor summarises a shell for listings and diagnostics.
type ShellDescriptor struct {
	ID        string
	Name      string
	Binary    string
	Platforms []Platform
	Escaper   string
	Custom    bool
	Available bool
}

// CustomShell mirrors a user-defined shell entry in config.yaml.
type CustomShell struct {
	ID              string     `yaml:"id"`
	Name            string     `yaml:"name"`
	Binary          string     `yaml:"binary"`
	Arguments       string     `yaml:"arguments"`
	Escaper         string     `yaml:"escaper"`
	Platforms       []Platform `yaml:"platforms"`
	PathTranslation string     `yaml:"path_translation,omitempty"`
	ListSeparator   string     `yaml:"list_separator,omitempty"`
	Wrapper         string     `yaml:"wrapper,omitempty"`
}
