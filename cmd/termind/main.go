package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/doeshing/termind/internal/infrastructure/cli"
	"github.com/doeshing/termind/internal/pkg/logger"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose(os.Args[1:])}

	if err := cli.Execute(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// isVerbose is decided before flag parsing because the logger is built first.
func isVerbose(args []string) bool {
	debug := os.Getenv(logger.DebugEnv)
	return debug == "1" || strings.EqualFold(debug, "true") || slices.Contains(args, "--verbose")
}
