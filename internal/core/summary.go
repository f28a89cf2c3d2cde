package core

import "sort"

// TypeAmount represents an amount aggregated by expense type.
type TypeAmount struct {
	Name   string
	Amount Money
}

// Summary is a compact overview of a set of expenses: overall total plus
// per-type totals, the numbers behind the expense chart.
type Summary struct {
	Count  int
	Total  Money
	ByType []TypeAmount
}

// Summarize aggregates expenses by type. Expenses without a type land
// under "Uncategorized". ByType is ordered by descending amount, name
// breaking ties, so the biggest bucket always comes first.
func Summarize(expenses []Expense) Summary {
	s := Summary{Count: len(expenses)}

	byType := make(map[string]int64)
	for _, e := range expenses {
		name := e.Type
		if name == "" {
			name = "Uncategorized"
		}
		byType[name] += e.Cost.Cents
		s.Total.Cents += e.Cost.Cents
	}

	for name, cents := range byType {
		s.ByType = append(s.ByType, TypeAmount{
			Name:   name,
			Amount: Money{Cents: cents},
		})
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].Amount.Cents != s.ByType[j].Amount.Cents {
			return s.ByType[i].Amount.Cents > s.ByType[j].Amount.Cents
		}
		return s.ByType[i].Name < s.ByType[j].Name
	})
	return s
}
