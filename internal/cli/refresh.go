package cli

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tripspend/internal/core"
)

// cmdRefresh re-syncs the local cache: trips and expenses are fetched
// concurrently and replace whatever was cached before.
func (a *App) cmdRefresh(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("refresh takes no arguments")
	}

	var (
		trips    []core.Trip
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trips, err = a.client.ListTrips(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = a.client.ListExpenses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := a.store.CacheTrips(trips); err != nil {
		return fmt.Errorf("cache trips: %w", err)
	}
	if err := a.store.CacheExpenses(expenses); err != nil {
		return fmt.Errorf("cache expenses: %w", err)
	}

	fmt.Fprintf(a.stdout, "Synced %d trips and %d expenses\n", len(trips), len(expenses))
	return nil
}
