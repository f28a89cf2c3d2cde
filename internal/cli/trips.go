package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
)

func (a *App) cmdTrips(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: trips <list|add|rm>")
	}
	switch args[0] {
	case "list":
		return a.tripsList(ctx)
	case "add":
		return a.tripsAdd(ctx, args[1:])
	case "rm":
		return a.tripsRm(ctx, args[1:])
	default:
		return fmt.Errorf("unknown trips subcommand %q", args[0])
	}
}

func (a *App) tripsList(ctx context.Context) error {
	trips, err := a.client.ListTrips(ctx)
	if err != nil {
		trips, err = a.cachedTripsFallback(err)
		if err != nil {
			return err
		}
	} else if cerrs := a.store.CacheTrips(trips); cerrs != nil {
		a.logger.Warn("trip cache not updated", applog.FieldError, cerrs)
	}

	if len(trips) == 0 {
		fmt.Fprintln(a.stdout, "No trips")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, t := range trips {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
	}
	return tw.Flush()
}

// cachedTripsFallback serves the last synced trip list when the backend is
// unreachable. Auth failures are not papered over.
func (a *App) cachedTripsFallback(cause error) ([]core.Trip, error) {
	if errors.Is(cause, core.ErrAuthRequired) {
		return nil, cause
	}
	cached, cerr := a.store.CachedTrips()
	if cerr != nil || len(cached) == 0 {
		return nil, cause
	}
	fmt.Fprintln(a.stderr, "Backend unreachable, showing cached data")
	return cached, nil
}

func (a *App) tripsAdd(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: trips add <name> [description]")
	}
	name := args[0]
	description := ""
	if len(args) == 2 {
		description = args[1]
	}
	trip, err := a.client.CreateTrip(ctx, name, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Created trip %s (id %s)\n", trip.Name, trip.ID)
	return nil
}

func (a *App) tripsRm(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: trips rm <id>")
	}
	if err := a.client.DeleteTrip(ctx, core.ID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted trip %s\n", args[0])
	return nil
}
