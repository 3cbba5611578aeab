package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"logistics-service/internal/domain"
)

// Counter counts records matching list filters.
type Counter interface {
	Count(ctx context.Context, filters map[string]string) (int, error)
}

// Summary holds the home page figures.
type Summary struct {
	ActiveVehicles    int
	ActiveAircraft    int
	ActiveDrivers     int
	ActivePilots      int
	TotalDispatches   int
	PendingDispatches int
}

type Dashboard struct {
	Vehicles   Counter
	Aircraft   Counter
	Drivers    Counter
	Pilots     Counter
	Dispatches Counter
}

// Summary runs the six counts concurrently.
func (d *Dashboard) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	active := map[string]string{"active": "true"}

	counts := []struct {
		name    string
		counter Counter
		filters map[string]string
		dst     *int
	}{
		{"active vehicles", d.Vehicles, active, &s.ActiveVehicles},
		{"active aircraft", d.Aircraft, active, &s.ActiveAircraft},
		{"active drivers", d.Drivers, active, &s.ActiveDrivers},
		{"active pilots", d.Pilots, active, &s.ActivePilots},
		{"dispatches", d.Dispatches, nil, &s.TotalDispatches},
		{"pending dispatches", d.Dispatches, map[string]string{"status": string(domain.StatusPending)}, &s.PendingDispatches},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := c.counter.Count(gctx, c.filters)
			if err != nil {
				return fmt.Errorf("dashboard summary: count %s: %w", c.name, err)
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return s, nil
}
