package main

import (
	"os"

	"github.com/bobertjmurphy/zeek/cli/cmd"

	// Writer backends register themselves with internal/factory from
	// their package init; importing a backend for its side effect is
	// what makes it available to --backend.
	_ "github.com/bobertjmurphy/zeek/pkg/logging/writers/ascii"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
