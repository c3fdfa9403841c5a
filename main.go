// Package main is the entry point for the farsistream application.
package main

import (
	"github.com/farsistream-cli/farsistream/cmd"
	"github.com/farsistream-cli/farsistream/config"
	"github.com/farsistream-cli/farsistream/internal/cache"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Prune expired resolution artifacts in the background.
	cache.CollectGarbage()

	cmd.Execute()
}
