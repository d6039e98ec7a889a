package entitlement

import (
	"github.com/docbrief/docbrief/internal/entitlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.service",
	fx.Provide(service.New),
)
