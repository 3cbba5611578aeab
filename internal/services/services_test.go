package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"logistics-service/internal/api/dto"
	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
)

// memVehicles is an in-memory ports.Store for vehicles.
type memVehicles struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Vehicle
}

func newMemVehicles() *memVehicles { return &memVehicles{rows: map[int64]domain.Vehicle{}} }

func (m *memVehicles) List(_ context.Context, q ports.ListQuery) (ports.Page[domain.Vehicle], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := ports.Page[domain.Vehicle]{Page: 1, PageSize: 10}
	for _, v := range m.rows {
		v := v
		page.Items = append(page.Items, &v)
	}
	page.Count = len(page.Items)
	return page, nil
}

func (m *memVehicles) Get(_ context.Context, id int64) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (m *memVehicles) Create(_ context.Context, v *domain.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	v.VehicleID = m.nextID
	m.rows[v.VehicleID] = *v
	return nil
}

func (m *memVehicles) Update(_ context.Context, v *domain.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[v.VehicleID]; !ok {
		return domain.ErrNotFound
	}
	m.rows[v.VehicleID] = *v
	return nil
}

func (m *memVehicles) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memVehicles) Count(_ context.Context, filters map[string]string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.rows {
		if filters["active"] == "true" && !v.Active {
			continue
		}
		n++
	}
	return n, nil
}

type vehicleCodec struct{}

func (vehicleCodec) Decode(rec catalog.Record) (*domain.Vehicle, error) {
	v := &domain.Vehicle{
		PlateNumber: rec["plate_number"].(string),
		VehicleType: rec["vehicle_type"].(string),
		CapacityKg:  rec["capacity_kg"].(int64),
		Active:      rec["active"].(bool),
	}
	if id, ok := rec["id"].(int64); ok {
		v.VehicleID = id
	}
	return v, nil
}

func (vehicleCodec) Encode(v *domain.Vehicle) (catalog.Record, error) {
	return catalog.Record{
		"id":           v.VehicleID,
		"plate_number": v.PlateNumber,
		"vehicle_type": v.VehicleType,
		"capacity_kg":  v.CapacityKg,
		"active":       v.Active,
	}, nil
}

func TestResourceCreateUpdatePatch(t *testing.T) {
	ctx := context.Background()
	res := NewResource[domain.Vehicle](catalog.VehicleEntity, newMemVehicles(), vehicleCodec{})

	created, err := res.Create(ctx, catalog.Record{"plate_number": "AB-1", "vehicle_type": "Truck", "capacity_kg": float64(900)})
	require.NoError(t, err)
	id := created.ID()
	assert.Equal(t, true, created["active"], "default applied")

	patched, err := res.Patch(ctx, id, catalog.Record{"active": false})
	require.NoError(t, err)
	assert.Equal(t, "AB-1", patched["plate_number"])
	assert.Equal(t, false, patched["active"])

	_, err = res.Update(ctx, id, catalog.Record{"plate_number": "AB-1"})
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "vehicle_type")

	_, err = res.Patch(ctx, id, catalog.Record{"wheels": 18})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "unknown field", fe["wheels"])

	_, err = res.Update(ctx, 404, catalog.Record{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, res.Delete(ctx, id))
	_, err = res.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fixedCounter struct {
	n   int
	err error
}

func (c fixedCounter) Count(context.Context, map[string]string) (int, error) { return c.n, c.err }

func TestDashboardSummary(t *testing.T) {
	vehicles := newMemVehicles()
	ctx := context.Background()
	require.NoError(t, vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "A", VehicleType: "Van", Active: true}))
	require.NoError(t, vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "B", VehicleType: "Van", Active: false}))

	d := &Dashboard{
		Vehicles:   vehicles,
		Aircraft:   fixedCounter{n: 2},
		Drivers:    fixedCounter{n: 3},
		Pilots:     fixedCounter{n: 4},
		Dispatches: fixedCounter{n: 5},
	}
	s, err := d.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{ActiveVehicles: 1, ActiveAircraft: 2, ActiveDrivers: 3, ActivePilots: 4, TotalDispatches: 5, PendingDispatches: 5}, s)

	d.Pilots = fixedCounter{err: errors.New("db down")}
	_, err = d.Summary(ctx)
	assert.ErrorContains(t, err, "active pilots")
}

type stubLister struct{ out []*domain.Dispatch }

func (s stubLister) ListNeedingReassignment(context.Context) ([]*domain.Dispatch, error) {
	return s.out, nil
}

func TestReassignmentAuditLogsEachDispatch(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	driver := int64(4)
	audit := &ReassignmentAudit{Dispatches: stubLister{out: []*domain.Dispatch{
		{DispatchID: 1, Status: domain.StatusPending, DispatchDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), DriverID: &driver},
		{DispatchID: 2, Status: domain.StatusInTransit, DispatchDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
	}}}

	flagged, err := audit.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, flagged, 2)

	warnings := logs.FilterMessage("dispatch needs reassignment").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, int64(1), warnings[0].ContextMap()["dispatch_id"])
	assert.Contains(t, warnings[0].ContextMap()["missing"], "vehicle or an aircraft")
	assert.Len(t, logs.FilterMessage("reassignment audit finished").All(), 1)
}

func TestDispatchValidatorCheck(t *testing.T) {
	v := &DispatchValidator{Codec: dto.DispatchCodec}
	base := func() catalog.Record {
		return catalog.Record{"dispatch_date": "2025-03-01", "route": 1, "cargo": 2}
	}

	ground := base()
	ground["vehicle"], ground["driver"] = 3, 4
	a, err := v.Check(ground)
	require.NoError(t, err)
	assert.Equal(t, domain.GroundAssignment{VehicleID: 3, DriverID: 4}, a)

	mixed := base()
	mixed["vehicle"], mixed["pilot"] = 3, 5
	_, err = v.Check(mixed)
	assert.ErrorIs(t, err, &domain.ValidationError{Kind: domain.PilotOnGroundTransport})

	_, err = v.Check(catalog.Record{"route": 1})
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "dispatch_date")
	assert.Contains(t, fe, "cargo")
}
