package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
	"tripspend/internal/workflow"
)

func (a *App) cmdExpenses(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: expenses <list|summary|add|edit|rm>")
	}
	switch args[0] {
	case "list":
		return a.expensesList(ctx, args[1:])
	case "summary":
		return a.expensesSummary(ctx, args[1:])
	case "add":
		return a.expensesAdd(ctx, args[1:])
	case "edit":
		return a.expensesEdit(ctx, args[1:])
	case "rm":
		return a.expensesRm(ctx, args[1:])
	default:
		return fmt.Errorf("unknown expenses subcommand %q", args[0])
	}
}

func (a *App) expensesList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expenses list", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	trip := fs.String("trip", "", "only expenses for this trip name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	expenses, err := a.client.ListExpenses(ctx)
	if err != nil {
		expenses, err = a.cachedExpensesFallback(err, *trip)
		if err != nil {
			return err
		}
	} else {
		if cerr := a.store.CacheExpenses(expenses); cerr != nil {
			a.logger.Warn("expense cache not updated", applog.FieldError, cerr)
		}
		// The backend has no per-trip query; trips join expenses by name
		// and filtering happens on this side.
		if *trip != "" {
			expenses = filterByTrip(expenses, *trip)
		}
	}

	if len(expenses) == 0 {
		fmt.Fprintln(a.stdout, "No expenses")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTRIP\tDATE\tTYPE\tVENDOR\tLOCATION\tCOST")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.TripName, e.Date, e.Type, e.Vendor, e.Location, e.Cost)
	}
	return tw.Flush()
}

// expensesSummary prints per-type cost totals, the textual rendition of
// the expense chart.
func (a *App) expensesSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expenses summary", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	trip := fs.String("trip", "", "only expenses for this trip name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	expenses, err := a.client.ListExpenses(ctx)
	if err != nil {
		expenses, err = a.cachedExpensesFallback(err, *trip)
		if err != nil {
			return err
		}
	} else if *trip != "" {
		expenses = filterByTrip(expenses, *trip)
	}

	s := core.Summarize(expenses)
	if s.Count == 0 {
		fmt.Fprintln(a.stdout, "No expenses")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tTOTAL")
	for _, ta := range s.ByType {
		fmt.Fprintf(tw, "%s\t%s\n", ta.Name, ta.Amount)
	}
	fmt.Fprintf(tw, "all (%d expenses)\t%s\n", s.Count, s.Total)
	return tw.Flush()
}

func (a *App) cachedExpensesFallback(cause error, trip string) ([]core.Expense, error) {
	if errors.Is(cause, core.ErrAuthRequired) {
		return nil, cause
	}
	cached, cerr := a.store.CachedExpenses(trip)
	if cerr != nil || len(cached) == 0 {
		return nil, cause
	}
	fmt.Fprintln(a.stderr, "Backend unreachable, showing cached data")
	return cached, nil
}

// refreshTripCache re-fetches expenses after a submit so the cache for the
// submitted trip reflects the new record. The submit already succeeded, so
// a failed refresh only warns.
func (a *App) refreshTripCache(ctx context.Context, trip string) {
	if trip == "" {
		return
	}
	expenses, err := a.client.ListExpenses(ctx)
	if err != nil {
		a.logger.Warn("trip cache not refreshed",
			applog.FieldTripName, trip, applog.FieldError, err)
		return
	}
	if err := a.store.CacheTripExpenses(trip, filterByTrip(expenses, trip)); err != nil {
		a.logger.Warn("trip cache not refreshed",
			applog.FieldTripName, trip, applog.FieldError, err)
	}
}

func filterByTrip(expenses []core.Expense, trip string) []core.Expense {
	out := expenses[:0:0]
	for _, e := range expenses {
		if e.TripName == trip {
			out = append(out, e)
		}
	}
	return out
}

// expensesAdd drives the draft workflow for manual entry: an empty draft,
// an edit loop, then submit.
func (a *App) expensesAdd(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: expenses add")
	}
	wf := workflow.New(a.client, a.client, a.logger.WithComponent(applog.ComponentWorkflow))
	if err := wf.BeginManual(); err != nil {
		return err
	}
	return a.editAndSubmit(ctx, wf)
}

// expensesEdit loads an existing expense into the workflow so a submit
// updates it in place instead of creating a duplicate.
func (a *App) expensesEdit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: expenses edit <id>")
	}
	id := core.ID(args[0])

	expenses, err := a.client.ListExpenses(ctx)
	if err != nil {
		return err
	}
	var found *core.Expense
	for i := range expenses {
		if expenses[i].ID == id {
			found = &expenses[i]
			break
		}
	}
	if found == nil {
		return &core.NotFoundError{Resource: "expense", ID: id.String()}
	}

	wf := workflow.New(a.client, a.client, a.logger.WithComponent(applog.ComponentWorkflow))
	if err := wf.BeginEdit(*found); err != nil {
		return err
	}
	return a.editAndSubmit(ctx, wf)
}

func (a *App) expensesRm(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: expenses rm <id>")
	}
	if err := a.client.DeleteExpense(ctx, core.ID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted expense %s\n", args[0])
	return nil
}
