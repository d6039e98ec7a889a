package summarizer

import (
	"github.com/docbrief/docbrief/internal/summarizer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("summarizer.service",
	fx.Provide(service.New),
)
