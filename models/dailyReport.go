package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jadygoy/cafe_backend/utils"
	"github.com/shopspring/decimal"
)

const DefaultCreatedBy = "user"

// AmountScale is the number of decimal places kept for every amount,
// matching the decimal(20,4) columns.
const AmountScale int32 = 4

func roundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

var (
	DefaultEmployeePayout    = decimal.NewFromInt(650)
	DefaultGovernmentExpense = decimal.NewFromInt(200)
)

// DailyReport is the reconciliation record of one calendar day.
// Date is the natural key; the four derived totals are always
// CalculateReportTotals over the inputs.
type DailyReport struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	Date              string          `gorm:"size:10;not null;uniqueIndex" json:"date"`
	PosProfit         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"pos_profit"`
	EmployeePayout    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"employee_payout"`
	GovernmentExpense decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"government_expense"`
	ProductExpenses   []ExpenseItem   `gorm:"serializer:json;type:json" json:"product_expenses"`
	OtherExpenses     []ExpenseItem   `gorm:"serializer:json;type:json" json:"other_expenses"`
	TotalExpenses     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_expenses"`
	CashInRegister    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cash_in_register"`
	RemainingBalance  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"remaining_balance"`
	Excess            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"excess"`
	CreatedBy         string          `gorm:"size:100;not null" json:"created_by"`
	CreatedAt         time.Time       `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// NewDailyReport is the create/replace payload. Nil optional amounts take
// the schema defaults; there is no merge with a stored report.
type NewDailyReport struct {
	Date              string           `json:"date" binding:"reportdate"`
	PosProfit         *decimal.Decimal `json:"pos_profit" binding:"required"`
	EmployeePayout    *decimal.Decimal `json:"employee_payout"`
	GovernmentExpense *decimal.Decimal `json:"government_expense"`
	ProductExpenses   []NewExpenseItem `json:"product_expenses" binding:"dive"`
	OtherExpenses     []NewExpenseItem `json:"other_expenses" binding:"dive"`
	CreatedBy         string           `json:"created_by"`
}

type ReportTotals struct {
	TotalExpenses    decimal.Decimal
	CashInRegister   decimal.Decimal
	RemainingBalance decimal.Decimal
	Excess           decimal.Decimal
}

// CalculateReportTotals reconciles one day. Cash in register is defined as
// the POS profit, so a positive remaining balance makes excess equal to
// total expenses; a zero or negative balance yields no excess.
func CalculateReportTotals(posProfit, employeePayout, governmentExpense decimal.Decimal, productExpenses, otherExpenses []ExpenseItem) ReportTotals {
	totalExpenses := employeePayout.
		Add(governmentExpense).
		Add(sumExpenseItems(productExpenses)).
		Add(sumExpenseItems(otherExpenses))

	cashInRegister := posProfit
	remainingBalance := posProfit.Sub(totalExpenses)

	excess := decimal.Zero
	if remainingBalance.IsPositive() {
		excess = cashInRegister.Sub(remainingBalance)
	}

	return ReportTotals{
		TotalExpenses:    totalExpenses,
		CashInRegister:   cashInRegister,
		RemainingBalance: remainingBalance,
		Excess:           excess,
	}
}

func (r *DailyReport) ProductExpensesTotal() decimal.Decimal {
	return sumExpenseItems(r.ProductExpenses)
}

func (r *DailyReport) OtherExpensesTotal() decimal.Decimal {
	return sumExpenseItems(r.OtherExpenses)
}

func (r *DailyReport) calculateTotals() ReportTotals {
	return CalculateReportTotals(r.PosProfit, r.EmployeePayout, r.GovernmentExpense, r.ProductExpenses, r.OtherExpenses)
}

func (r *DailyReport) applyTotals(t ReportTotals) {
	r.TotalExpenses = t.TotalExpenses
	r.CashInRegister = t.CashInRegister
	r.RemainingBalance = t.RemainingBalance
	r.Excess = t.Excess
}

// hasTotals reports whether the stored derived fields equal t.
func (r *DailyReport) hasTotals(t ReportTotals) bool {
	return r.TotalExpenses.Equal(t.TotalExpenses) &&
		r.CashInRegister.Equal(t.CashInRegister) &&
		r.RemainingBalance.Equal(t.RemainingBalance) &&
		r.Excess.Equal(t.Excess)
}

// toReport builds a complete report for date with a fresh id and both
// timestamps set to now. Amounts are rounded to AmountScale before the
// totals are computed, so what is stored is what was returned.
func (input *NewDailyReport) toReport(date string, now time.Time) *DailyReport {
	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = DefaultCreatedBy
	}

	report := &DailyReport{
		ID:                uuid.NewString(),
		Date:              date,
		PosProfit:         roundAmount(utils.DereferencePtr(input.PosProfit)),
		EmployeePayout:    roundAmount(utils.DereferencePtr(input.EmployeePayout, DefaultEmployeePayout)),
		GovernmentExpense: roundAmount(utils.DereferencePtr(input.GovernmentExpense, DefaultGovernmentExpense)),
		ProductExpenses:   newExpenseItems(input.ProductExpenses),
		OtherExpenses:     newExpenseItems(input.OtherExpenses),
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	report.applyTotals(report.calculateTotals())
	return report
}

func (r *DailyReport) clone() *DailyReport {
	c := *r
	c.ProductExpenses = cloneExpenseItems(r.ProductExpenses)
	c.OtherExpenses = cloneExpenseItems(r.OtherExpenses)
	return &c
}
