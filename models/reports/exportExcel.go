package reports

import (
	"fmt"
	"io"

	"github.com/jadygoy/cafe_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const DailyReportsSheet = "Daily Reports"

var dailyReportHeadings = []string{
	"Date",
	"POS Profit",
	"Employee Payout",
	"Government Expense",
	"Product Expenses",
	"Other Expenses",
	"Total Expenses",
	"Cash In Register",
	"Remaining Balance",
	"Excess",
	"Created By",
}

// dailyReportRow is one spreadsheet row; amounts[i] maps to heading i+1.
type dailyReportRow struct {
	date      string
	amounts   []decimal.Decimal
	createdBy string
}

func newDailyReportRow(r *models.DailyReport) dailyReportRow {
	return dailyReportRow{
		date: r.Date,
		amounts: []decimal.Decimal{
			r.PosProfit,
			r.EmployeePayout,
			r.GovernmentExpense,
			r.ProductExpensesTotal(),
			r.OtherExpensesTotal(),
			r.TotalExpenses,
			r.CashInRegister,
			r.RemainingBalance,
			r.Excess,
		},
		createdBy: r.CreatedBy,
	}
}

func (row dailyReportRow) GetCellValues() []interface{} {
	values := make([]interface{}, 0, len(row.amounts)+2)
	values = append(values, row.date)
	for _, a := range row.amounts {
		values = append(values, a.InexactFloat64())
	}
	values = append(values, row.createdBy)
	return values
}

// ExportDailyReports builds a workbook with one row per report, in the
// given order, followed by a "Total" row summing every amount column.
func ExportDailyReports(data []*models.DailyReport) (_ *excelize.File, err error) {
	f := excelize.NewFile()
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", DailyReportsSheet); err != nil {
		return nil, err
	}

	// Add headers
	for i, h := range dailyReportHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(DailyReportsSheet, cell, h); err != nil {
			return nil, err
		}
	}

	// Add data
	totals := make([]decimal.Decimal, len(dailyReportHeadings)-2)
	rowNo := 2
	for _, d := range data {
		row := newDailyReportRow(d)
		for i, a := range row.amounts {
			totals[i] = totals[i].Add(a)
		}
		if err := setRow(f, rowNo, row.GetCellValues()); err != nil {
			return nil, err
		}
		rowNo++
	}

	totalRow := dailyReportRow{date: "Total", amounts: totals}
	if err := setRow(f, rowNo, totalRow.GetCellValues()); err != nil {
		return nil, err
	}

	return f, nil
}

func setRow(f *excelize.File, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(DailyReportsSheet, cell, &values)
}

// WriteDailyReports streams the workbook built by ExportDailyReports.
func WriteDailyReports(w io.Writer, data []*models.DailyReport) error {
	f, err := ExportDailyReports(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
