package parse

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DOCXExtractor handles the OOXML .docx container (also registered for the
// legacy .doc MIME type — the allowed-MIME set does not distinguish a
// separate binary .doc reader; operators sending true binary .doc files
// are expected to have them converted upstream). Heading styles
// ("Heading 1".."Heading 9", "Title") map to strong heading boundaries at
// their mapped level; ordinary paragraphs map to medium paragraph
// boundaries.
type DOCXExtractor struct{}

func (p *DOCXExtractor) Parse(ctx context.Context, data []byte) (*Result, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse: opening docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("parse: word/document.xml not found in docx")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("parse: opening document.xml: %w", err)
	}
	defer rc.Close()

	xmlData, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	var doc docxDocument
	if err := xml.Unmarshal(xmlData, &doc); err != nil {
		return nil, fmt.Errorf("parse: parsing docx xml: %w", err)
	}

	var b strings.Builder
	var boundaries []Boundary
	var headings []ExtractedHeading

	appendBlock := func(text string, isHeading bool, level int) {
		offset := b.Len()
		if b.Len() > 0 {
			b.WriteString("\n\n")
			offset += 2
		}
		b.WriteString(text)

		if isHeading {
			headings = append(headings, ExtractedHeading{Offset: offset, Level: level, Title: text})
			boundaries = append(boundaries, Boundary{Type: BoundaryHeading, Offset: offset, Strength: StrengthStrong})
		} else {
			boundaries = append(boundaries, Boundary{Type: BoundaryParagraph, Offset: offset, Strength: StrengthMedium})
		}
	}

	for _, para := range doc.Body.Paras {
		text := strings.TrimSpace(extractParaText(para))
		if text == "" {
			continue
		}

		style := ""
		if para.PPr != nil && para.PPr.PStyle != nil {
			style = para.PPr.PStyle.Val
		}

		if isHeadingStyle(style) {
			appendBlock(text, true, headingStyleLevel(style))
		} else {
			appendBlock(text, false, 0)
		}
	}

	for _, tbl := range doc.Body.Tables {
		var tableText strings.Builder
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				var cellText strings.Builder
				for _, cp := range cell.Paras {
					if cellText.Len() > 0 {
						cellText.WriteString(" ")
					}
					cellText.WriteString(extractParaText(cp))
				}
				cells = append(cells, cellText.String())
			}
			tableText.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		if tableText.Len() > 0 {
			appendBlock(strings.TrimSpace(tableText.String()), false, 0)
		}
	}

	fullText := b.String()
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("parse: no extractable text in docx")
	}

	return &Result{
		FullText:          fullText,
		Boundaries:        boundaries,
		ExtractedHeadings: headings,
	}, nil
}

func isHeadingStyle(style string) bool {
	lower := strings.ToLower(style)
	return strings.HasPrefix(lower, "heading") || strings.HasPrefix(lower, "title")
}

// headingStyleLevel maps a paragraph style name ("Heading1", "Heading 2",
// "Title") to a hierarchy level. Title is treated as level 1.
func headingStyleLevel(style string) int {
	lower := strings.ToLower(style)
	if strings.Contains(lower, "title") {
		return 1
	}
	for i := 1; i <= 9; i++ {
		if strings.Contains(lower, strconv.Itoa(i)) {
			return i
		}
	}
	return 1
}

func extractParaText(para docxPara) string {
	var b strings.Builder
	for _, run := range para.Runs {
		for _, t := range run.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// DOCX XML structures (simplified — only the fields the extractor needs).
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	XMLName xml.Name    `xml:"body"`
	Paras   []docxPara  `xml:"p"`
	Tables  []docxTable `xml:"tbl"`
}

type docxPara struct {
	XMLName xml.Name    `xml:"p"`
	PPr     *docxParaPr `xml:"pPr"`
	Runs    []docxRun   `xml:"r"`
}

type docxParaPr struct {
	PStyle *docxPStyle `xml:"pStyle"`
}

type docxPStyle struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paras []docxPara `xml:"p"`
}
