// Package parsing resolves {{variable}} references inside command templates.
//
// A reference has the form {{name(:argument)*(|control)?}}. The control suffix is
// either "raw", which inserts the value unescaped, or "escape", the default. There
// is no way to write a literal "{{name}}" when name is a known variable.
package parsing

import (
	"regexp"
	"strings"
)

var referencePattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)((?::[^:|{}]*)*)(?:\|([A-Za-z_-]*))?\}\}`)

// Escape controls.
const (
	ControlRaw    = "raw"
	ControlEscape = "escape"
)

// Reference is one occurrence of a variable inside a template.
// Start and End are byte offsets into the template.
type Reference struct {
	Name    string
	Args    []string
	Control string
	Start   int
	End     int
}

// Raw reports whether the value is inserted without escaping.
func (r Reference) Raw() bool { return r.Control == ControlRaw }

// Text returns the reference as written in template.
func (r Reference) Text(template string) string { return template[r.Start:r.End] }

// Scan returns every reference in template, in order of appearance.
func Scan(template string) []Reference {
	matches := referencePattern.FindAllStringSubmatchIndex(template, -1)
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		ref := Reference{
			Name:  template[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		}
		if m[4] != m[5] {
			ref.Args = strings.Split(template[m[4]+1:m[5]], ":")
		}
		if m[6] >= 0 {
			ref.Control = template[m[6]:m[7]]
		}
		refs = append(refs, ref)
	}
	return refs
}

// References reports whether template refers to any of names.
func References(template string, names ...string) bool {
	for _, ref := range Scan(template) {
		for _, name := range names {
			if strings.EqualFold(ref.Name, name) {
				return true
			}
		}
	}
	return false
}
