package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// Renderer lays out a Document.
type Renderer interface {
	Render(w io.Writer, d Document) error
}

// PDFRenderer renders A4 PDF pages with the core Helvetica font.
type PDFRenderer struct{}

const (
	marginLeft  = 20.0
	marginRight = 190.0
	lineHeight  = 6.0
)

// Render writes d as a PDF to w.
func (PDFRenderer) Render(w io.Writer, d Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Title, true)
	pdf.SetCreator("rentbook", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	y := 15.0
	if len(d.Letterhead) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(marginLeft, y, tr(d.Letterhead[0]))
		pdf.SetFont("Helvetica", "", 9)
		for _, l := range d.Letterhead[1:] {
			y += 4.5
			pdf.Text(marginLeft, y, tr(l))
		}
		y += 10
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(d.Color[0], d.Color[1], d.Color[2])
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(marginRight-marginLeft, 10, tr(d.Title), "", 1, "C", false, 0, "")
	y += 12
	pdf.SetDrawColor(d.Color[0], d.Color[1], d.Color[2])
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, y, marginRight, y)
	pdf.SetTextColor(0, 0, 0)
	y += 10

	for _, s := range d.Sections {
		if s.Heading != "" {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Text(marginLeft, y, tr(s.Heading))
			y += lineHeight + 2
		}
		for _, l := range s.Lines {
			style := ""
			if l.Bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, 11)
			text := l.Value
			if l.Label != "" {
				text = l.Label + " : " + l.Value
			}
			pdf.SetXY(marginLeft, y-4)
			pdf.MultiCell(marginRight-marginLeft, lineHeight, tr(text), "", "L", false)
			y = pdf.GetY() + 4
		}
		y += 4
	}

	if d.Place != "" {
		pdf.SetFont("Helvetica", "", 11)
		y += 6
		pdf.Text(marginLeft, y, tr(d.Place))
	}

	if len(d.Signatures) > 0 {
		y += 20
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetLineWidth(0.3)
		pdf.SetDrawColor(0, 0, 0)
		for i, label := range d.Signatures {
			x := marginLeft
			if i%2 == 1 {
				x = 130
			}
			pdf.Line(x, y, x+60, y)
			pdf.Text(x+10, y+6, tr(label))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering %s: %w", d.Kind, err)
	}
	return nil
}

// SaveFile renders d into dir under its deterministic file name and returns
// the path written.
func SaveFile(dir string, r Renderer, d Document) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, d.FileName())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
