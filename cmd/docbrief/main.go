package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/docbrief/docbrief/internal/clock"
	"github.com/docbrief/docbrief/internal/config"
	"github.com/docbrief/docbrief/internal/migration"
	"github.com/docbrief/docbrief/internal/observability"
	"github.com/docbrief/docbrief/internal/server"
	"github.com/docbrief/docbrief/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
