package reports

import (
	"io"

	"github.com/jadygoy/cafe_backend/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const CurrencyLabel = "TMT"

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + CurrencyLabel
}

// WriteCashSlip renders a one-page A5 summary of a single daily report.
func WriteCashSlip(w io.Writer, r *models.DailyReport) error {
	pdf := gofpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Daily report "+r.Date), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Jadygoy Cafe - Daily Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Date: "+r.Date, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Prepared by: "+r.CreatedBy), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	row := func(label string, amount decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(80, 7, tr(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, FormatAmount(amount), "1", 1, "R", false, 0, "")
	}
	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	}

	row("POS profit", r.PosProfit, true)

	section("Fixed payouts")
	row("Employee payout", r.EmployeePayout, false)
	row("Government expense", r.GovernmentExpense, false)

	if len(r.ProductExpenses) > 0 {
		section("Product expenses")
		for _, item := range r.ProductExpenses {
			row(item.Title, item.Amount, false)
		}
	}
	if len(r.OtherExpenses) > 0 {
		section("Other expenses")
		for _, item := range r.OtherExpenses {
			row(item.Title, item.Amount, false)
		}
	}

	section("Reconciliation")
	row("Total expenses", r.TotalExpenses, true)
	row("Cash in register", r.CashInRegister, false)
	row("Remaining balance", r.RemainingBalance, true)
	row("Excess", r.Excess, false)

	return pdf.Output(w)
}
