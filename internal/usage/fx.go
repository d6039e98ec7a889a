package usage

import (
	"github.com/docbrief/docbrief/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(service.New),
)
