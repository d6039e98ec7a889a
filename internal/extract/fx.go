package extract

import (
	"github.com/docbrief/docbrief/internal/extract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("extract.service",
	fx.Provide(service.New),
)
