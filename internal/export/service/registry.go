package service

import (
	"sort"
	"strings"

	exportdomain "github.com/docbrief/docbrief/internal/export/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log *zap.Logger
}

type registry struct {
	renderers map[string]exportdomain.Renderer
}

func NewRegistry(p Params) exportdomain.Registry {
	log := p.Log.Named("export.service")
	r := &registry{renderers: map[string]exportdomain.Renderer{}}
	for _, renderer := range []exportdomain.Renderer{
		newJSONRenderer(),
		newTXTRenderer(),
		newPDFRenderer(log),
	} {
		r.renderers[renderer.Format()] = renderer
	}
	return r
}

func (r *registry) Lookup(format string) (exportdomain.Renderer, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	renderer, ok := r.renderers[normalized]
	if !ok {
		return nil, &exportdomain.UnsupportedExportError{Format: format}
	}
	return renderer, nil
}

func (r *registry) Formats() []string {
	formats := make([]string, 0, len(r.renderers))
	for format := range r.renderers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}
