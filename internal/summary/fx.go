package summary

import (
	"github.com/docbrief/docbrief/internal/summary/repository"
	"github.com/docbrief/docbrief/internal/summary/service"
	"go.uber.org/fx"
)

var Module = fx.Module("summary.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
