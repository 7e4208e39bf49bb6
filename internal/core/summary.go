package core

import "github.com/shopspring/decimal"

type (
	// CategoryShare is one category's aggregate on one side of the ledger,
	// with its percentage of that side's total.
	CategoryShare struct {
		Name    string
		Amount  Money
		Percent decimal.Decimal
	}

	// Summary is the accounting result over a set of entries.
	// Balance == IncomeTotal - ExpenseTotal always holds.
	Summary struct {
		IncomeTotal  Money
		ExpenseTotal Money
		Balance      Money
		Income       []CategoryShare
		Expenses     []CategoryShare
	}
)

// Summarize aggregates entries into totals and per-category sums. It is a
// pure function: same input, same output, no mutation. Categories appear in
// first-seen order.
func Summarize(entries []Entry) Summary {
	var s Summary
	incomeIdx := make(map[string]int)
	expenseIdx := make(map[string]int)

	for _, e := range entries {
		switch e.Kind {
		case Income:
			s.IncomeTotal = s.IncomeTotal.Add(e.Amount)
			s.Income = accumulate(s.Income, incomeIdx, e)
		case Expense:
			s.ExpenseTotal = s.ExpenseTotal.Add(e.Amount)
			s.Expenses = accumulate(s.Expenses, expenseIdx, e)
		}
	}
	s.Balance = s.IncomeTotal.Sub(s.ExpenseTotal)

	for i := range s.Income {
		s.Income[i].Percent = percentOf(s.Income[i].Amount, s.IncomeTotal)
	}
	for i := range s.Expenses {
		s.Expenses[i].Percent = percentOf(s.Expenses[i].Amount, s.ExpenseTotal)
	}
	return s
}

func accumulate(shares []CategoryShare, idx map[string]int, e Entry) []CategoryShare {
	if i, ok := idx[e.Category]; ok {
		shares[i].Amount = shares[i].Amount.Add(e.Amount)
		return shares
	}
	idx[e.Category] = len(shares)
	return append(shares, CategoryShare{Name: e.Category, Amount: e.Amount})
}

// percentOf returns part/total*100 as an exact decimal, or zero when the
// total is zero.
func percentOf(part, total Money) decimal.Decimal {
	if total.Cents == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part.Cents).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total.Cents))
}
