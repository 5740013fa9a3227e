package examgen

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"notes.pdf", FormatPDF, true},
		{"Apuntes.PDF", FormatPDF, true},
		{"tema1.docx", FormatDocx, true},
		{"tema1.doc", FormatDocx, true},
		{"resumen.txt", FormatTxt, true},
		{"imagen.png", "", false},
		{"sin-extension", "", false},
	}
	for _, tt := range tests {
		format, ok := FormatForPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, format, tt.path)
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	doc := buildDocx(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Primer párrafo del documento.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Segundo </w:t></w:r><w:r><w:t>párrafo.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Celda A1</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Celda B1</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Celda A2</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`)

	text, err := extractDocx(doc)
	require.NoError(t, err)

	assert.Contains(t, text, "Primer párrafo del documento.")
	assert.Contains(t, text, "Segundo párrafo.")
	// table cells follow the paragraphs, row-major
	assert.Regexp(t, `(?s)Segundo párrafo\..*Celda A1.*Celda B1.*Celda A2`, text)
}

func TestExtractDocxNotAZip(t *testing.T) {
	_, err := extractDocx([]byte("not a zip archive"))
	assert.Error(t, err)
}

func TestExtractTextDegradesToEmpty(t *testing.T) {
	// corrupt content must yield "" rather than an error
	doc := RawDocument{Path: "broken.pdf", Format: FormatPDF, Content: []byte("not a pdf")}
	assert.Equal(t, "", ExtractText(doc))

	doc = RawDocument{Path: "broken.docx", Format: FormatDocx, Content: []byte("not a zip")}
	assert.Equal(t, "", ExtractText(doc))
}

func TestExtractPlainTextEncodingFallback(t *testing.T) {
	utf8Text := "La fotosíntesis convierte luz en energía."
	assert.Equal(t, utf8Text, extractPlainText([]byte(utf8Text)))

	// "energía" in Latin-1: í is a bare 0xED byte, invalid as UTF-8
	latin1 := []byte("energ\xeda qu\xedmica")
	assert.Equal(t, "energía química", extractPlainText(latin1))
}
