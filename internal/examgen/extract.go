package examgen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/phuslu/log"
	"golang.org/x/text/encoding/charmap"
)

// FormatForPath maps a file extension onto a document format. Unsupported
// extensions are the caller's problem; they are rejected at upload time.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, true
	case ".doc", ".docx":
		return FormatDocx, true
	case ".txt":
		return FormatTxt, true
	}
	return "", false
}

// ExtractText pulls the full plain-text content out of a raw document.
// Extraction failures degrade to an empty string: one corrupt upload must
// not abort a whole multi-document generation run.
func ExtractText(doc RawDocument) string {
	var (
		text string
		err  error
	)
	switch doc.Format {
	case FormatPDF:
		text, err = extractPDF(doc.Content)
	case FormatDocx:
		text, err = extractDocx(doc.Content)
	case FormatTxt:
		text = extractPlainText(doc.Content)
	default:
		err = fmt.Errorf("unsupported format %q", doc.Format)
	}
	if err != nil {
		log.Warn().Err(err).Str("path", doc.Path).Str("format", string(doc.Format)).Msg("document extraction failed, continuing with empty text")
		return ""
	}
	return text
}

// ReadDocument loads a file from disk into a RawDocument.
func ReadDocument(path string) (RawDocument, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return RawDocument{}, fmt.Errorf("unsupported document extension: %s", filepath.Ext(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return RawDocument{}, err
	}
	return RawDocument{Path: path, Format: format, Content: content}, nil
}

// extractPDF concatenates the text of every page in page order, separated by
// a blank line. The parser panics on some malformed files; that is folded
// into the error return so callers see a plain extraction failure.
func extractPDF(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// OOXML word/document.xml, trimmed to the nodes that carry text.
type docxBody struct {
	Paragraphs []docxParagraph `xml:"body>p"`
	Tables     []docxTable     `xml:"body>tbl"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []string `xml:"t"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

func (p docxParagraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t)
		}
	}
	return b.String()
}

// extractDocx reads paragraph texts in document order, then every table cell
// row-major, each on its own line.
func extractDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx container has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var body docxBody
	if err := xml.NewDecoder(rc).Decode(&body); err != nil {
		return "", fmt.Errorf("decode docx body: %w", err)
	}

	var lines []string
	for _, p := range body.Paragraphs {
		lines = append(lines, p.text())
	}
	for _, tbl := range body.Tables {
		for _, row := range tbl.Rows {
			for _, cell := range row.Cells {
				var cellText []string
				for _, p := range cell.Paragraphs {
					cellText = append(cellText, p.text())
				}
				lines = append(lines, strings.Join(cellText, "\n"))
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// extractPlainText decodes UTF-8 text, falling back to Latin-1 when the
// bytes are not valid UTF-8. Latin-1 never fails: every byte maps to a rune.
func extractPlainText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(decoded)
}
