package core

import (
	"fmt"
	"strings"
)

// RenderReport renders a summary as the chat report text. Sides with a zero
// total render as empty sections, never as an error.
func RenderReport(label string, s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📆 Período: %s\n", label)
	fmt.Fprintf(&b, "\n💰 Entradas (%s):\n", s.IncomeTotal.BRL())
	writeShares(&b, s.Income)
	fmt.Fprintf(&b, "\n💸 Gastos (%s):\n", s.ExpenseTotal.BRL())
	writeShares(&b, s.Expenses)
	fmt.Fprintf(&b, "\n💼 Saldo final: %s", s.Balance.BRL())
	return b.String()
}

func writeShares(b *strings.Builder, shares []CategoryShare) {
	for _, cs := range shares {
		fmt.Fprintf(b, "- %s: %s (%s%%)\n", cs.Name, cs.Amount.BRL(), cs.Percent.StringFixed(2))
	}
}

// RenderNoData is the distinct reply for a period that never had an entry.
// It short-circuits before any computation happens.
func RenderNoData(label string) string {
	return fmt.Sprintf("📅 Nenhum dado encontrado para %s.", label)
}
