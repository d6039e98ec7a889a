package service

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	extractdomain "github.com/docbrief/docbrief/internal/extract/domain"
	"github.com/ledongthuc/pdf"
)

func parsePDF(ctx context.Context, path string, _ int) (result *extractdomain.Result, err error) {
	_ = ctx

	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &extractdomain.ExtractionError{
				Format: extractdomain.FormatPDF,
				Err:    fmt.Errorf("parser panic: %v", r),
			}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &extractdomain.ExtractionError{Format: extractdomain.FormatPDF, Err: err}
	}
	defer f.Close()

	pageCount := reader.NumPage()
	content, err := reader.GetPlainText()
	if err != nil {
		return nil, &extractdomain.ExtractionError{Format: extractdomain.FormatPDF, Err: err}
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return nil, &extractdomain.ExtractionError{Format: extractdomain.FormatPDF, Err: err}
	}

	return &extractdomain.Result{
		Text:      sb.String(),
		PageCount: pageCount,
	}, nil
}

func parseTXT(ctx context.Context, path string, wordsPerPage int) (*extractdomain.Result, error) {
	_ = ctx

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &extractdomain.ExtractionError{Format: extractdomain.FormatTXT, Err: err}
	}

	text := strings.ToValidUTF8(string(raw), "")
	return &extractdomain.Result{
		Text:      text,
		PageCount: estimatePages(text, wordsPerPage),
	}, nil
}

func parseDOCX(ctx context.Context, path string, wordsPerPage int) (*extractdomain.Result, error) {
	_ = ctx

	text, err := textFromZipXML(path, "word/document.xml")
	if err != nil {
		return nil, &extractdomain.ExtractionError{Format: extractdomain.FormatDOCX, Err: err}
	}

	return &extractdomain.Result{
		Text:      text,
		PageCount: estimatePages(text, wordsPerPage),
	}, nil
}

// parseODT walks the XML body of the OpenDocument archive. When the archive
// or its markup cannot be read, the raw bytes are treated as plain text and
// the result is flagged Degraded instead of failing the upload.
func parseODT(ctx context.Context, path string, wordsPerPage int) (*extractdomain.Result, error) {
	_ = ctx

	text, err := textFromZipXML(path, "content.xml")
	if err != nil {
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, &extractdomain.ExtractionError{Format: extractdomain.FormatODT, Err: err}
		}
		fallback := strings.ToValidUTF8(string(raw), "")
		return &extractdomain.Result{
			Text:      fallback,
			PageCount: estimatePages(fallback, wordsPerPage),
			Degraded:  true,
		}, nil
	}

	return &extractdomain.Result{
		Text:      text,
		PageCount: estimatePages(text, wordsPerPage),
	}, nil
}

var (
	rtfBreakRe   = regexp.MustCompile(`\\(?:par|line|sect|page)\b`)
	rtfHexRe     = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	rtfControlRe = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
	rtfEscapeRe  = regexp.MustCompile(`\\([{}\\])`)
)

// parseRTF recovers text by stripping control sequences and group
// delimiters. It is pattern substitution, not an RTF parser.
func parseRTF(ctx context.Context, path string, wordsPerPage int) (*extractdomain.Result, error) {
	_ = ctx

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &extractdomain.ExtractionError{Format: extractdomain.FormatRTF, Err: err}
	}

	text := string(raw)
	text = rtfBreakRe.ReplaceAllString(text, "\n")
	text = rtfHexRe.ReplaceAllString(text, " ")
	text = rtfEscapeRe.ReplaceAllString(text, "$1")
	text = rtfControlRe.ReplaceAllString(text, "")
	text = strings.NewReplacer("{", "", "}", "").Replace(text)
	text = strings.ToValidUTF8(text, "")

	return &extractdomain.Result{
		Text:      text,
		PageCount: estimatePages(text, wordsPerPage),
	}, nil
}

// textFromZipXML opens the archive, locates the named XML entry and
// concatenates its text-bearing nodes. Paragraph ends become newlines.
func textFromZipXML(path, entry string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var file *zip.File
	for _, f := range zr.File {
		if f.Name == entry {
			file = f
			break
		}
	}
	if file == nil {
		return "", fmt.Errorf("missing %s", entry)
	}

	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "h" {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String(), nil
}
