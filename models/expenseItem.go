package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseItem is one itemized expense embedded in a DailyReport.
type ExpenseItem struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

type NewExpenseItem struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// newExpenseItems keeps input order and mints ids for items that come without one.
func newExpenseItems(input []NewExpenseItem) []ExpenseItem {
	items := make([]ExpenseItem, 0, len(input))
	for _, in := range input {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		var amount decimal.Decimal
		if in.Amount != nil {
			amount = roundAmount(*in.Amount)
		}
		items = append(items, ExpenseItem{
			ID:     id,
			Title:  in.Title,
			Amount: amount,
		})
	}
	return items
}

func sumExpenseItems(items []ExpenseItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

func cloneExpenseItems(items []ExpenseItem) []ExpenseItem {
	out := make([]ExpenseItem, len(items))
	copy(out, items)
	return out
}
