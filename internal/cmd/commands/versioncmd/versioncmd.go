// Package versioncmd implements the `fatcat version` command.
package versioncmd

import (
	"fmt"

	"github.com/mm--/fatcat/internal/cmd/base"
	"github.com/mm--/fatcat/internal/version"
)

// Command prints the build version.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string { return "Print the fatcat version" }

func (c *Command) Help() string {
	return "Usage: fatcat version"
}

func (c *Command) Run(args []string) int {
	c.UI.Info(fmt.Sprintf("fatcat %s", version.Version))
	return 0
}
