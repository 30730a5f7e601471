// Package migrate implements the `fatcat migrate` command: apply the
// catalog schema migrations against the configured database.
package migrate

import (
	"flag"
	"fmt"

	"github.com/mm--/fatcat/internal/cmd/base"
	"github.com/mm--/fatcat/internal/config"
	migratelib "github.com/mm--/fatcat/internal/migrate"
	"github.com/mm--/fatcat/pkg/database"
)

// Command implements `fatcat migrate`.
type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Apply catalog database migrations"
}

func (c *Command) Help() string {
	return `Usage: fatcat migrate [options]

  Applies all pending schema migrations to the configured database.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("migrate", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "fatcat.hcl", "Path to fatcat config file")
	return f
}

func (c *Command) Run(args []string) int {
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

	dbCfg := cfg.ToDatabase()
	gdb, err := database.Connect(dbCfg, c.Log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting underlying sql.DB: %v", err))
		return 1
	}

	driver := dbCfg.Driver
	if driver == "" {
		driver = "postgres"
	}
	if err := migratelib.RunMigrations(sqlDB, driver); err != nil {
		c.UI.Error(fmt.Sprintf("migration failed: %v", err))
		return 1
	}

	c.UI.Info("migrations applied successfully")
	return 0
}
