package export

import (
	"github.com/docbrief/docbrief/internal/export/service"
	"go.uber.org/fx"
)

var Module = fx.Module("export.service",
	fx.Provide(service.NewRegistry),
)
