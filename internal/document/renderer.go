package document

import (
	"context"
	"fmt"
	"io"

	"cep360-payroll/internal/shared/dateutil"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:generate mockgen -source=renderer.go -destination=mock/renderer_mock.go -package=mock
type Renderer interface {
	Render(ctx context.Context, slip Payslip, w io.Writer) error
}

// PDFRenderer draws a single A4 page with a fixed layout.
type PDFRenderer struct {
	compress bool
	amounts  *message.Printer
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		compress: true,
		amounts:  message.NewPrinter(language.English),
	}
}

const (
	pageWidth  = 190.0
	labelWidth = 120.0
	valueWidth = pageWidth - labelWidth
)

func (r *PDFRenderer) Render(ctx context.Context, slip Payslip, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", slip.EmployeeName, slip.MonthLabel), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(pageWidth, 10, tr("Payslip - "+slip.MonthLabel), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(pageWidth, 5, "Invoice "+slip.InvoiceID.String(), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// identity
	r.section(pdf, "Employee")
	r.row(pdf, tr, "Name", slip.EmployeeName)
	r.row(pdf, tr, "Email", slip.EmployeeEmail)
	r.row(pdf, tr, "Employee ID", slip.EmployeeID.String())
	pdf.Ln(4)

	r.section(pdf, "Invoice")
	r.row(pdf, tr, "Campaign", slip.CampaignName)
	r.row(pdf, tr, "Month", slip.MonthLabel)
	r.row(pdf, tr, "Period", dateutil.Format(slip.StartDate)+" to "+dateutil.Format(slip.EndDate))
	r.row(pdf, tr, "Monthly rate", r.amount(slip.CompensationRate))
	r.row(pdf, tr, "Generated at", slip.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(4)

	r.section(pdf, "Earnings")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(labelWidth, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, 7, "Amount", "1", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, item := range []struct {
		label string
		value int64
	}{
		{"Gross pay (" + fmt.Sprint(slip.DaysWorked) + " days)", slip.Gross},
		{"Incentive", slip.Incentive},
		{"Arrears", slip.Arrears},
		{"Extra pay", slip.ExtraPay},
	} {
		pdf.CellFormat(labelWidth, 7, tr(item.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, 7, r.amount(item.value), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(labelWidth, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, 8, r.amount(slip.Total), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	r.section(pdf, "Attendance")
	r.row(pdf, tr, "Days worked", fmt.Sprint(slip.DaysWorked))
	r.row(pdf, tr, "Days absent", fmt.Sprint(slip.DaysAbsent))
	r.row(pdf, tr, "Days in period", fmt.Sprint(slip.TotalDaysInWindow))
	r.row(pdf, tr, "Days available to generate", fmt.Sprint(slip.DaysAvailableToGenerate))
	pdf.Ln(16)

	// signatory
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(pageWidth, 6, "Authorised by", "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(pageWidth, 6, tr(slip.Signatory), "T", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout payslip: %w", err)
	}
	return pdf.Output(w)
}

func (r *PDFRenderer) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(pageWidth, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (r *PDFRenderer) row(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(60, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth-60, 6, tr(value), "", 1, "L", false, 0, "")
}

func (r *PDFRenderer) amount(v int64) string {
	return r.amounts.Sprintf("%d", v)
}
