package parse

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts linearized, reading-order text from PDF files and
// emits a strong pageBreak boundary between every pair of pages. PDF
// carries no semantic heading information, so heading detection for PDFs
// is left entirely to the Structure stage's heuristic detectors.
type PDFExtractor struct{}

func (p *PDFExtractor) Parse(ctx context.Context, data []byte) (*Result, error) {
	tmp, err := os.CreateTemp("", "docpipeline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("parse: creating temp file for pdf: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return nil, fmt.Errorf("parse: writing temp pdf: %w", err)
	}

	f, reader, err := pdf.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("parse: opening pdf: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	var b strings.Builder
	var boundaries []Boundary

	for i := 1; i <= totalPages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := extractPageTextOrdered(page)
		if err != nil {
			continue // skip pages that fail to extract; do not fail the whole document
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if b.Len() > 0 {
			boundaries = append(boundaries, Boundary{
				Type:     BoundaryPageBreak,
				Offset:   b.Len(),
				Strength: StrengthStrong,
			})
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	fullText := b.String()
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("parse: no extractable text in pdf")
	}

	return &Result{
		FullText:   fullText,
		Boundaries: boundaries,
		Metadata:   map[string]string{"pageCount": fmt.Sprintf("%d", totalPages)},
	}, nil
}

// extractPageTextOrdered extracts text from a PDF page sorted by visual
// position (top-to-bottom). The default GetPlainText reads text in PDF
// object order, which can differ from visual layout — headings may appear
// after the body text they label.
//
// This groups Content() elements into visual lines by Y proximity
// (preserving content-stream order within a line, which correct character
// sequencing relies on), then sorts lines by Y so the result follows
// top-to-bottom reading order.
func extractPageTextOrdered(page pdf.Page) (string, error) {
	content := page.Content()
	if len(content.Text) == 0 {
		return page.GetPlainText(nil)
	}

	const lineTolerance = 3.0

	type visualLine struct {
		y   float64
		buf strings.Builder
	}

	var lines []*visualLine
	var cur *visualLine

	for _, t := range content.Text {
		if cur == nil || math.Abs(t.Y-cur.y) > lineTolerance {
			lines = append(lines, &visualLine{y: t.Y})
			cur = lines[len(lines)-1]
		}
		cur.buf.WriteString(t.S)
	}

	// Higher Y = higher on the page in PDF coordinates (origin bottom-left).
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})

	var parts []string
	for _, l := range lines {
		text := strings.TrimSpace(l.buf.String())
		if text != "" {
			parts = append(parts, text)
		}
	}

	result := strings.Join(parts, "\n")
	if strings.TrimSpace(result) == "" {
		return page.GetPlainText(nil)
	}
	return result, nil
}
