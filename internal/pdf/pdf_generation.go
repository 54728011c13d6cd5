package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"cardhub/internal/models"
)

// Generator renders printable documents.
type Generator interface {
	ContractPDF(w io.Writer, data ContractData) error
}

// DocumentGenerator uses a UTF-8 TTF font when FontPath is set and the core
// Helvetica font otherwise.
type DocumentGenerator struct {
	FontPath string
	fontName string
}

// ContractData is a contract with its client and card loaded.
type ContractData struct {
	Contract models.Contract
	Client   models.Client
	Card     models.Card
	IssuedAt time.Time
	Issuer   string
}

func NewDocumentGenerator(fontPath string) *DocumentGenerator {
	g := &DocumentGenerator{FontPath: fontPath, fontName: "DejaVu"}
	if fontPath == "" {
		g.fontName = "Helvetica"
	}
	return g
}

func (g *DocumentGenerator) ContractPDF(w io.Writer, data ContractData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Card contract %d", data.Contract.ID), true)
	pdf.SetAuthor(data.Issuer, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	tr := g.setupFont(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr("CARD CONTRACT"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("No. CH-%06d  issued  %s", data.Contract.ID, data.IssuedAt.Format("2006-01-02"))
	pdf.CellFormat(0, 7, tr(sub), "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, tr("Holder"))
	g.kvLine(pdf, tr("Name"), tr(data.Client.Name))
	g.kvLine(pdf, tr("National id"), tr(data.Client.NationalID))
	g.kvLine(pdf, tr("Birth date"), data.Client.BirthDate.String())
	if data.Client.Email != nil {
		g.kvLine(pdf, tr("Email"), tr(*data.Client.Email))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Card"))
	g.kvLine(pdf, tr("Product"), tr(data.Card.Name))
	g.kvLine(pdf, tr("Type"), string(data.Card.Type))
	g.kvLine(pdf, tr("Network"), tr(data.Card.Network))
	g.kvLine(pdf, tr("Annual fee"), data.Card.AnnualFee.StringFixed(2))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Validity"))
	g.kvLine(pdf, tr("Status"), status(data.Contract.Active))
	g.kvLine(pdf, tr("Start date"), data.Contract.StartDate.String())
	g.kvLine(pdf, tr("End date"), endDate(data.Contract.EndDate))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Terms"))
	pdf.SetFont(g.fontName, "", 11)
	terms := []string{
		"1. The contract is valid from the start date until the end date shown above.",
		"2. Deactivating the holder or the card product closes the contract on the same day.",
		"3. A closed contract cannot be reopened. A new contract must be issued instead.",
	}
	for _, t := range terms {
		pdf.MultiCell(0, 6, tr(t), "", "L", false)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render contract %d pdf: %w", data.Contract.ID, err)
	}
	return nil
}

// setupFont registers the TTF font if configured and returns the text
// translator matching the selected font.
func (g *DocumentGenerator) setupFont(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath == "" {
		return pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	return func(s string) string { return s }
}

func (g *DocumentGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *DocumentGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func status(active bool) string {
	if active {
		return "active"
	}
	return "closed"
}

func endDate(d models.Date) string {
	if d.IsInfinite() {
		return "open"
	}
	return d.String()
}
