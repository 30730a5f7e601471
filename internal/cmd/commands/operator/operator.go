// Package operator groups operator-only maintenance subcommands, mirroring
// jrepp-hermes's internal/cmd/commands/operator command-group structure.
package operator

import (
	"github.com/mitchellh/cli"

	"github.com/mm--/fatcat/internal/cmd/base"
)

// Command is the `fatcat operator` command group; its subcommands are
// registered directly in internal/cmd/main.go's Commands map under
// "operator editor-bootstrap" rather than nested further, since there is
// currently only the one operator subcommand.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Perform operator-specific tasks"
}

func (c *Command) Help() string {
	return `Usage: fatcat operator <subcommand> [options] [args]

  This command groups subcommands for catalog operators.

Subcommands:
    editor-bootstrap    Create the bootstrap editor`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
