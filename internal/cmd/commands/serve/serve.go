// Package serve implements the `fatcat serve` command: load config,
// connect the catalog database, and run the HTTP/JSON API.
package serve

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/mm--/fatcat/internal/api"
	"github.com/mm--/fatcat/internal/catalog"
	"github.com/mm--/fatcat/internal/cmd/base"
	"github.com/mm--/fatcat/internal/config"
	"github.com/mm--/fatcat/internal/server"
	"github.com/mm--/fatcat/pkg/database"
)

// Command implements `fatcat serve`.
type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Run the fatcat HTTP/JSON API server"
}

func (c *Command) Help() string {
	return `Usage: fatcat serve [options]

  Runs the fatcat catalog HTTP/JSON API server.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("serve", flag.ExitOnError))
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

	db, err := database.Connect(cfg.ToDatabase(), c.Log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	srv := &server.Server{Config: cfg, DB: db, Logger: c.Log}
	registry := catalog.NewRegistry(
		catalog.ContainerCrud{}, catalog.CreatorCrud{}, catalog.FileCrud{},
		catalog.FilesetCrud{}, catalog.WebcaptureCrud{}, catalog.ReleaseCrud{}, catalog.WorkCrud{},
	)
	router := api.NewRouter(api.NewEnv(srv), registry)

	c.UI.Info(fmt.Sprintf("listening on %s", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		c.UI.Error(fmt.Sprintf("server error: %v", err))
		return 1
	}
	return 0
}
