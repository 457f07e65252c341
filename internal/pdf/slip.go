package pdf

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator — интерфейс (удобно подменять в тестах хендлеров)
type Generator interface {
	SerialSlip(w io.Writer, data SlipData) error
}

// SlipGenerator рисует A4-квитанцию с серийным номером заявки.
type SlipGenerator struct {
	FontPath string // путь до TTF, например "assets/fonts/DejaVuSans.ttf"
	fontName string // внутреннее имя шрифта в PDF
}

type SlipData struct {
	StudentID   int64
	FullName    string
	Email       string
	Session     string
	Department  string
	Document    string
	Serial      string
	GeneratedAt time.Time
}

func NewSlipGenerator(fontPath string) *SlipGenerator {
	return &SlipGenerator{FontPath: fontPath, fontName: "DejaVu"}
}

func (g *SlipGenerator) SerialSlip(w io.Writer, data SlipData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Document request "+data.Serial, false)
	pdf.SetAuthor("Auto Docs", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	font := g.setupFont(pdf)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(0, 10, "DOCUMENT REQUEST SLIP", "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 12)
	pdf.CellFormat(0, 7, data.GeneratedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	hr(pdf)
	pdf.Ln(3)

	sectionTitle(pdf, font, "Applicant")
	kvLine(pdf, font, "Student ID", fmt.Sprintf("%d", data.StudentID))
	kvLine(pdf, font, "Name", orDash(data.FullName))
	kvLine(pdf, font, "Email", data.Email)
	kvLine(pdf, font, "Session", orDash(data.Session))
	kvLine(pdf, font, "Department", orDash(data.Department))
	pdf.Ln(2)
	hr(pdf)

	sectionTitle(pdf, font, "Request")
	kvLine(pdf, font, "Document", data.Document)
	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 12, data.Serial, "1", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(font, "", 10)
	pdf.MultiCell(0, 5, "Present this serial number at the registrar office when collecting the document.", "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf output: %w", err)
	}
	return nil
}

// setupFont: TTF если файл есть, иначе встроенный Helvetica (только латиница).
func (g *SlipGenerator) setupFont(pdf *gofpdf.Fpdf) string {
	if g.FontPath == "" {
		return "Helvetica"
	}
	if _, err := os.Stat(g.FontPath); err != nil {
		return "Helvetica"
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	return g.fontName
}

func sectionTitle(pdf *gofpdf.Fpdf, font, s string) {
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
}

func kvLine(pdf *gofpdf.Fpdf, font, key, val string) {
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
