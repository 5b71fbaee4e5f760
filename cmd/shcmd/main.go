package main

import (
	"context"
	"os"
	"strings"

	"github.com/doeshing/shcmd/internal/infrastructure/cli"
)

func main() {
	opts := cli.Options{Verbose: isVerbose()}
	os.Exit(cli.Execute(context.Background(), opts, os.Args[1:], os.Stderr))
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("SHCMD_DEBUG"), "1") || strings.EqualFold(os.Getenv("SHCMD_DEBUG"), "true")
}
