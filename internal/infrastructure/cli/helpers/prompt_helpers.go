package helpers

import (
	"fmt"
	"io"
	"strings"
)

// YesNoLabel returns "Y/n" or "y/N" depending on which answer is the default.
func YesNoLabel(defaultIsYes bool) string {
	if defaultIsYes {
		return "Y/n"
	}
	return "y/N"
}

// IsAffirmative reports whether a typed answer means yes.
func IsAffirmative(response string) bool {
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// PrintWarnings outputs a list of warning messages to the writer
func PrintWarnings(out io.Writer, warnings []string) {
	for _, warning := range warnings {
		warning = strings.TrimSpace(warning)
		if warning == "" {
			continue
		}
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
}

// SplitErrors flattens an error built with errors.Join into its messages.
func SplitErrors(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, SplitErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
