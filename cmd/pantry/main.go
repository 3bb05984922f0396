// Package main provides the pantry CLI.
package main

import (
	_ "time/tzdata"

	"github.com/mesh-intelligence/pantry/internal/cli"
)

func main() {
	cli.Execute()
}
