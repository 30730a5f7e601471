// Package server wires the catalog database and configuration into the
// shared state handed to every HTTP handler.
package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mm--/fatcat/internal/config"
)

// Server holds the dependencies shared by the fatcat HTTP API handlers.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// DB is the catalog database for the server.
	DB *gorm.DB

	// Logger is the logger for the server.
	Logger hclog.Logger
}
