package escaper

import (
	"strings"
	"testing"

	"github.com/google/shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/shell"
)

func TestPosixRoundTrip(t *testing.T) {
	t.Parallel()

	values := []string{
		"My Note",
		`it's "quoted"`,
		"$HOME and `date`",
		"semi;colon && pipe | redirect > out",
		"tab\tand\nnewline",
		"glob *.md ?",
		`back\slash`,
		"",
	}

	for _, esc := range []Escaper{NewPosix(), NewBash()} {
		for _, value := range values {
			quoted := esc.Escape(value)

			fields, err := shell.Fields(quoted, func(string) string { return "" })
			require.NoError(t, err, "escaper %s, quoted %q", esc.Name(), quoted)
			require.Len(t, fields, 1, "escaper %s split %q into %v", esc.Name(), quoted, fields)
			assert.Equal(t, value, fields[0], "escaper %s", esc.Name())
		}
	}
}

func TestPosixLeavesPlainWordsBare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "notes.md", NewPosix().Escape("notes.md"))
	assert.Equal(t, "/home/user/vault", NewBash().Escape("/home/user/vault"))
}

func TestPosixQuotesSpaces(t *testing.T) {
	t.Parallel()

	quoted := NewBash().Escape("My Note")
	assert.NotEqual(t, "My Note", quoted)

	parts, err := shlex.Split("echo " + quoted)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "My Note"}, parts)
}

func TestPowerShellEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "'plain'"},
		{in: "it's", want: "'it''s'"},
		{in: "$env:PATH; rm", want: "'$env:PATH; rm'"},
		{in: "typo’graphic", want: "'typo’’graphic'"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PowerShell{}.Escape(tt.in))
	}
}

func TestPowerShellRoundTrip(t *testing.T) {
	t.Parallel()

	// PowerShell reads '' inside a verbatim string as one quote.
	unquote := func(s string) string {
		s = strings.TrimPrefix(strings.TrimSuffix(s, "'"), "'")
		return strings.ReplaceAll(s, "''", "'")
	}

	for _, v := range []string{"a b", "it's", "'''", "x;y|z"} {
		assert.Equal(t, v, unquote(PowerShell{}.Escape(v)))
	}
}

func TestPassthrough(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a "b" & c`, Passthrough{}.Escape(`a "b" & c`))
}

func TestByName(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{
		"":           "posix",
		"bash":       "bash",
		"PowerShell": "powershell",
		"none":       "none",
	} {
		esc, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, esc.Name())
	}

	_, err := ByName("fish")
	assert.Error(t, err)
}
