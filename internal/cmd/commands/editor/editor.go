// Package editor implements the `fatcat operator editor-bootstrap`
// command: an operator task against the editor table, grounded on jrepp-hermes's
// internal/cmd/commands/operator/assign_uuids.go one-shot maintenance
// command shape.
package editor

import (
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/mm--/fatcat/internal/catalog"
	"github.com/mm--/fatcat/internal/cmd/base"
	"github.com/mm--/fatcat/internal/config"
	"github.com/mm--/fatcat/pkg/database"
	"github.com/mm--/fatcat/pkg/fcid"
)

// BootstrapCommand creates the well-known bootstrap editor
// (fcid.BootstrapEditorUUID) used to author the first editgroups before
// any real editor account exists.
type BootstrapCommand struct {
	*base.Command

	flagConfig   string
	flagUsername string
}

func (c *BootstrapCommand) Synopsis() string {
	return "Create the bootstrap editor"
}

func (c *BootstrapCommand) Help() string {
	return `Usage: fatcat operator editor-bootstrap [options]

  Creates the well-known bootstrap editor, identified by
  fcid.BootstrapEditorUUID, that every fresh catalog needs before any
  other editor can be created.` + c.Flags().Help()
}

func (c *BootstrapCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("bootstrap", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "fatcat.hcl", "Path to fatcat config file")
	f.StringVar(&c.flagUsername, "username", "admin", "Username for the bootstrap editor")
	return f
}

func (c *BootstrapCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.NewConfig(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error parsing config file: %v", err))
		return 1
	}

	db, err := database.Connect(cfg.ToDatabase(), c.Log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	bootstrapID := fcid.FromUUID(uuid.MustParse(fcid.BootstrapEditorUUID))

	if _, err := catalog.GetEditor(db, bootstrapID); err == nil {
		c.UI.Info("bootstrap editor already exists")
		return 0
	}

	if _, err := catalog.CreateEditor(db, bootstrapID, c.flagUsername, true, false); err != nil {
		c.UI.Error(fmt.Sprintf("error creating bootstrap editor: %v", err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("bootstrap editor %q created", c.flagUsername))
	return 0
}
