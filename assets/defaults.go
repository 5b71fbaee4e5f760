// Package assets embeds files shipped inside the binary.
package assets

import _ "embed"

// DefaultConfigYAML is written to ~/.shcmd/config.yaml on first run. It also backs
// `config reset` and `config diff`.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte
