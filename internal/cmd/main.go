package cmd

import (
	"bufio"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/mm--/fatcat/internal/cmd/base"
	"github.com/mm--/fatcat/internal/cmd/commands/editor"
	"github.com/mm--/fatcat/internal/cmd/commands/migrate"
	"github.com/mm--/fatcat/internal/cmd/commands/operator"
	"github.com/mm--/fatcat/internal/cmd/commands/serve"
	"github.com/mm--/fatcat/internal/cmd/commands/versioncmd"
	"github.com/mm--/fatcat/internal/version"
)

// Commands is the CLI's command tree, built by initCommands.
var Commands map[string]cli.CommandFactory

// initCommands populates Commands with every subcommand, each sharing the
// same logger and UI via base.Command.
func initCommands(log hclog.Logger, ui cli.Ui) {
	baseCmd := &base.Command{UI: ui, Log: log}

	Commands = map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: baseCmd}, nil
		},
		"migrate": func() (cli.Command, error) {
			return &migrate.Command{Command: baseCmd}, nil
		},
		"operator": func() (cli.Command, error) {
			return &operator.Command{Command: baseCmd}, nil
		},
		"operator editor-bootstrap": func() (cli.Command, error) {
			return &editor.BootstrapCommand{Command: baseCmd}, nil
		},
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{Command: baseCmd}, nil
		},
	}
}

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := args[0]

	log := hclog.New(&hclog.LoggerOptions{
		Name: cliName,
	})

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{cliName, "version"}
	}

	// If no subcommand is provided, default to 'serve'.
	if len(args) == 1 {
		args = append(args, "serve")
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	initCommands(log, ui)

	c := &cli.CLI{
		Name:     cliName,
		Args:     args[1:],
		Version:  version.Version,
		Commands: Commands,
	}

	exitCode, err := c.Run()
	if err != nil {
		panic(err)
	}

	return exitCode
}
