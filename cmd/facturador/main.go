package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturador/internal/clock"
	"github.com/smallbiznis/facturador/internal/config"
	"github.com/smallbiznis/facturador/internal/observability"
	"github.com/smallbiznis/facturador/internal/server"
	"github.com/smallbiznis/facturador/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// HTTP API, invoice sessions, tax definitions and the document API client
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
