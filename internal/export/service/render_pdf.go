package service

import (
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"

	exportdomain "github.com/docbrief/docbrief/internal/export/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
)

type pdfRenderer struct {
	log *zap.Logger
}

func newPDFRenderer(log *zap.Logger) exportdomain.Renderer {
	return &pdfRenderer{log: log}
}

func (r *pdfRenderer) Format() string { return "pdf" }

func (r *pdfRenderer) Render(record *summarydomain.SummaryRecord, opts exportdomain.Options) ([]byte, string, error) {
	summary, err := decodeSummary(record)
	if err != nil {
		return nil, "", err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if opts.Watermark {
		m.AddRow(6,
			text.NewCol(12, watermarkNotice, props.Text{
				Size:  8,
				Style: fontstyle.Italic,
				Align: align.Right,
			}),
		)
	}

	m.AddRow(12,
		text.NewCol(12, "Summary of "+record.Filename, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, "Tier: "+record.Tier+"  Pages: "+strconv.Itoa(record.PageCount), props.Text{
			Size:  9,
			Align: align.Left,
		}),
	)

	m.AddRow(8,
		text.NewCol(12, "Executive summary", props.Text{
			Size:  12,
			Style: fontstyle.Bold,
		}),
	)
	m.AddAutoRow(
		text.NewCol(12, summary.ExecutiveSummary, props.Text{Size: 10}),
	)

	addList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		m.AddRow(8,
			text.NewCol(12, title, props.Text{
				Size:  12,
				Style: fontstyle.Bold,
			}),
		)
		for _, item := range items {
			m.AddAutoRow(
				col.New(12).Add(
					text.New("- "+item, props.Text{Size: 10}),
				),
			)
		}
	}
	addList("Key points", summary.KeyPoints)
	addList("Action items", summary.ActionItems)
	addList("Important dates", summary.ImportantDates)
	addList("Names", summary.RelevantNames)
	addList("Places", summary.Places)

	doc, err := m.Generate()
	if err != nil {
		r.log.Error("pdf export generation failed", zap.Error(err))
		return nil, "", err
	}
	return doc.GetBytes(), "application/pdf", nil
}

