package processing

import (
	"github.com/docbrief/docbrief/internal/processing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("processing.service",
	fx.Provide(service.New),
)
