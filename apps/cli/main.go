package main

import "github.com/quiverhq/quiver/apps/cli/cmd"

// Set via -ldflags at release time.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
