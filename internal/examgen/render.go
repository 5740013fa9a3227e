package examgen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageLeft  = 10.0
	pageRight = 200.0
	lineH     = 6.0
)

// RenderExamDocument writes the exam as a paginated PDF. With includeAnswers
// the correct option of each multiple-choice question is bolded and colored
// and open questions get a model-answer line. The document is fully built in
// memory first; the output path either receives a complete file or nothing.
func RenderExamDocument(exam Exam, outputPath string, includeAnswers bool) (string, error) {
	buf, err := renderExam(exam, includeAnswers)
	if err != nil {
		return "", &RenderError{Path: outputPath, Err: err}
	}
	if err := writeFileAtomic(outputPath, buf); err != nil {
		return "", &RenderError{Path: outputPath, Err: err}
	}
	return outputPath, nil
}

// RenderAnswerSheet writes the standalone bubble/line answer sheet for the
// exam.
func RenderAnswerSheet(exam Exam, outputPath string) (string, error) {
	buf, err := renderAnswerSheet(exam)
	if err != nil {
		return "", &RenderError{Path: outputPath, Err: err}
	}
	if err := writeFileAtomic(outputPath, buf); err != nil {
		return "", &RenderError{Path: outputPath, Err: err}
	}
	return outputPath, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func newDoc() (*fpdf.Fpdf, func(string) string) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageLeft, 10, 10)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	// Core fonts are cp1252; the translator keeps accented Spanish intact.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	return doc, tr
}

func divider(doc *fpdf.Fpdf) {
	doc.Ln(2)
	doc.Line(pageLeft, doc.GetY(), pageRight, doc.GetY())
	doc.Ln(4)
}

func renderExam(exam Exam, includeAnswers bool) ([]byte, error) {
	doc, tr := newDoc()

	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(0, 10, tr(exam.Title), "", 1, "C", false, 0, "")
	if exam.Description != "" {
		doc.SetFont("Arial", "", 11)
		doc.CellFormat(0, 7, tr(exam.Description), "", 1, "C", false, 0, "")
	}

	doc.Ln(2)
	doc.SetFont("Arial", "B", 11)
	doc.Write(lineH, tr("Total de puntos: "))
	doc.SetFont("Arial", "", 11)
	doc.Write(lineH, fmt.Sprintf("%g", exam.TotalPoints))
	doc.Ln(lineH)

	divider(doc)

	doc.SetFont("Arial", "B", 13)
	doc.CellFormat(0, 8, tr("Instrucciones:"), "", 1, "L", false, 0, "")
	doc.SetFont("Arial", "", 11)
	doc.MultiCell(0, lineH, tr("Responda cada una de las siguientes preguntas. Lea cuidadosamente antes de responder."), "", "L", false)
	doc.Ln(3)

	for i, q := range exam.Questions {
		doc.SetFont("Arial", "B", 11)
		doc.Write(lineH, tr(fmt.Sprintf("Pregunta %d ", i+1)))
		doc.SetFont("Arial", "I", 11)
		doc.Write(lineH, tr(fmt.Sprintf("(%g puntos) ", q.Points)))
		doc.Write(lineH, tr(fmt.Sprintf("[%s]", q.Difficulty)))
		doc.Ln(lineH + 1)

		doc.SetFont("Arial", "", 11)
		doc.MultiCell(0, lineH, tr(q.Content), "", "L", false)

		switch q.Type {
		case TypeMultipleChoice:
			for j, opt := range q.Options {
				correct := includeAnswers && opt == q.CorrectAnswer
				if correct {
					doc.SetFont("Arial", "B", 11)
					doc.SetTextColor(0, 128, 0)
				}
				doc.MultiCell(0, lineH, tr(fmt.Sprintf("%c) %s", 'A'+j, opt)), "", "L", false)
				if correct {
					doc.SetFont("Arial", "", 11)
					doc.SetTextColor(0, 0, 0)
				}
			}
		case TypeOpen:
			doc.MultiCell(0, lineH, tr("Respuesta:"), "", "L", false)
			for n := 0; n < 4; n++ {
				doc.MultiCell(0, lineH+2, strings.Repeat("_", 50), "", "L", false)
			}
			if includeAnswers && q.CorrectAnswer != "" {
				doc.SetTextColor(0, 128, 0)
				doc.SetFont("Arial", "B", 11)
				doc.Write(lineH, tr("Respuesta modelo: "))
				doc.SetFont("Arial", "", 11)
				doc.Write(lineH, tr(q.CorrectAnswer))
				doc.Ln(lineH)
				doc.SetTextColor(0, 0, 0)
			}
		}
		doc.Ln(4)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const bubblesPerTable = 10

func renderAnswerSheet(exam Exam) ([]byte, error) {
	doc, tr := newDoc()

	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(0, 10, tr("Hoja de Respuestas: "+exam.Title), "", 1, "C", false, 0, "")
	doc.Ln(2)

	doc.SetFont("Arial", "", 11)
	for _, field := range []string{"Nombre", "ID", "Fecha"} {
		doc.CellFormat(0, 8, tr(field+": ______________________________"), "", 1, "L", false, 0, "")
	}

	divider(doc)

	type numbered struct {
		num int // 1-based position in the full question list
		q   Question
	}
	var mc, open []numbered
	for i, q := range exam.Questions {
		if q.Type == TypeMultipleChoice {
			mc = append(mc, numbered{i + 1, q})
		} else {
			open = append(open, numbered{i + 1, q})
		}
	}

	if len(mc) > 0 {
		doc.SetFont("Arial", "B", 13)
		doc.CellFormat(0, 8, tr("Selección Múltiple"), "", 1, "L", false, 0, "")
		doc.Ln(1)

		colW := []float64{30, 15, 15, 15, 15}
		rowH := 8.0
		for start := 0; start < len(mc); start += bubblesPerTable {
			end := start + bubblesPerTable
			if end > len(mc) {
				end = len(mc)
			}

			doc.SetFont("Arial", "B", 10)
			for c, hdr := range []string{"Pregunta", "A", "B", "C", "D"} {
				doc.CellFormat(colW[c], rowH, tr(hdr), "1", 0, "C", false, 0, "")
			}
			doc.Ln(rowH)

			doc.SetFont("Arial", "", 10)
			for _, row := range mc[start:end] {
				doc.CellFormat(colW[0], rowH, fmt.Sprintf("%d", row.num), "1", 0, "C", false, 0, "")
				for c := 0; c < 4; c++ {
					x, y := doc.GetXY()
					doc.CellFormat(colW[c+1], rowH, "", "1", 0, "C", false, 0, "")
					if c < len(row.q.Options) {
						doc.Circle(x+colW[c+1]/2, y+rowH/2, 2.2, "D")
					}
				}
				doc.Ln(rowH)
			}
			doc.Ln(4)
		}
	}

	if len(open) > 0 {
		doc.SetFont("Arial", "B", 13)
		doc.CellFormat(0, 8, tr("Preguntas Abiertas"), "", 1, "L", false, 0, "")
		doc.Ln(1)

		for _, row := range open {
			doc.SetFont("Arial", "", 11)
			doc.CellFormat(0, 7, tr(fmt.Sprintf("Pregunta %d:", row.num)), "", 1, "L", false, 0, "")
			for n := 0; n < 8; n++ {
				doc.MultiCell(0, lineH+2, strings.Repeat("_", 60), "", "L", false)
			}
			doc.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
