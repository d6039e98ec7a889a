package service

import (
	"context"
	"math"
	"strings"

	"github.com/docbrief/docbrief/internal/config"
	extractdomain "github.com/docbrief/docbrief/internal/extract/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Policy *config.ExtractConfigHolder
}

type parserFunc func(ctx context.Context, path string, wordsPerPage int) (*extractdomain.Result, error)

type extractor struct {
	log     *zap.Logger
	policy  *config.ExtractConfigHolder
	parsers map[extractdomain.Format]parserFunc
}

func New(p Params) extractdomain.Extractor {
	e := &extractor{
		log:    p.Log.Named("extract.service"),
		policy: p.Policy,
	}
	e.parsers = map[extractdomain.Format]parserFunc{
		extractdomain.FormatPDF:  parsePDF,
		extractdomain.FormatTXT:  parseTXT,
		extractdomain.FormatDOCX: parseDOCX,
		extractdomain.FormatRTF:  parseRTF,
		extractdomain.FormatODT:  parseODT,
	}
	return e
}

func (e *extractor) Supported() []extractdomain.Format {
	return []extractdomain.Format{
		extractdomain.FormatPDF,
		extractdomain.FormatTXT,
		extractdomain.FormatDOCX,
		extractdomain.FormatRTF,
		extractdomain.FormatODT,
	}
}

func (e *extractor) Extract(ctx context.Context, path string, format extractdomain.Format) (*extractdomain.Result, error) {
	parse, ok := e.parsers[format]
	if !ok {
		return nil, &extractdomain.UnsupportedFormatError{Format: string(format)}
	}

	wordsPerPage := e.policy.Get().WordsPerPage
	result, err := parse(ctx, path, wordsPerPage)
	if err != nil {
		return nil, err
	}

	if result.Degraded {
		e.log.Warn("degraded extraction",
			zap.String("doc_format", string(format)),
			zap.Int("page_count", result.PageCount),
		)
	}
	return result, nil
}

// estimatePages approximates pagination from word count. The divisor is a
// product heuristic, never real layout; results are floored at one page so
// every non-empty document costs at least a page.
func estimatePages(text string, wordsPerPage int) int {
	if wordsPerPage <= 0 {
		wordsPerPage = 500
	}
	words := len(strings.Fields(text))
	pages := int(math.Ceil(float64(words) / float64(wordsPerPage)))
	if pages < 1 {
		pages = 1
	}
	return pages
}
