package domain

// Document is the file the user is working on when a command is triggered.
// Path is absolute on the host; Selection is optional highlighted text.
type Document struct {
	Path      string
	Selection *string
}

// HasSelection reports whether a selection was supplied.
func (d *Document) HasSelection() bool {
	return d != nil && d.Selection != nil
}
