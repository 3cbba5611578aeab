package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"logistics-service/internal/domain"
	"logistics-service/internal/platform/db"
	"logistics-service/internal/ports"
)

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(ctx, conn))
	// Second run must be a no-op.
	require.NoError(t, InitSchema(ctx, conn))

	return NewStores(conn)
}

func ref(id int64) *int64 { return &id }

type fleet struct {
	route    *domain.Route
	airRoute *domain.Route
	vehicle  *domain.Vehicle
	aircraft *domain.Aircraft
	driver   *domain.Driver
	pilot    *domain.Pilot
	client   *domain.Client
	cargo    *domain.Cargo
}

func newFleet(t *testing.T, s *Stores) fleet {
	t.Helper()
	ctx := context.Background()

	f := fleet{
		route:    &domain.Route{Origin: "Santiago", Destination: "Valparaiso", TransportType: domain.ModeGround},
		airRoute: &domain.Route{Origin: "Santiago", Destination: "Arica", TransportType: domain.ModeAir},
		vehicle:  &domain.Vehicle{PlateNumber: "AB-1234", VehicleType: "Truck", CapacityKg: 12000, Active: true},
		aircraft: &domain.Aircraft{RegistrationNumber: "CC-ABC", AircraftType: "Cessna", CapacityKg: 1400, Active: true},
		driver:   &domain.Driver{FullName: "Ana Rojas", NationalID: "12345678-9", LicenseNumber: "A4", Active: true},
		pilot:    &domain.Pilot{FullName: "Carla Muñoz", NationalID: "15555444-3", Certification: "CPL", Active: true},
		client:   &domain.Client{Name: "Acme", NationalID: "76123456-7"},
	}
	require.NoError(t, s.Routes.Create(ctx, f.route))
	require.NoError(t, s.Routes.Create(ctx, f.airRoute))
	require.NoError(t, s.Vehicles.Create(ctx, f.vehicle))
	require.NoError(t, s.Aircraft.Create(ctx, f.aircraft))
	require.NoError(t, s.Drivers.Create(ctx, f.driver))
	require.NoError(t, s.Pilots.Create(ctx, f.pilot))
	require.NoError(t, s.Clients.Create(ctx, f.client))

	f.cargo = &domain.Cargo{Description: "Produce", WeightKg: 1200, ClientID: ref(f.client.ClientID)}
	require.NoError(t, s.Cargo.Create(ctx, f.cargo))
	return f
}

func groundDispatch(f fleet) *domain.Dispatch {
	return &domain.Dispatch{
		DispatchDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:       domain.StatusPending,
		RouteID:      f.route.RouteID,
		CargoID:      f.cargo.CargoID,
		VehicleID:    ref(f.vehicle.VehicleID),
		DriverID:     ref(f.driver.DriverID),
	}
}

func TestStoreCRUD(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	v := &domain.Vehicle{PlateNumber: "AB-1234", VehicleType: "Truck", CapacityKg: 5000, Active: true}
	require.NoError(t, s.Vehicles.Create(ctx, v))
	require.NotZero(t, v.VehicleID)

	got, err := s.Vehicles.Get(ctx, v.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	v.Active = false
	v.CapacityKg = 6000
	require.NoError(t, s.Vehicles.Update(ctx, v))
	got, err = s.Vehicles.Get(ctx, v.VehicleID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, int64(6000), got.CapacityKg)

	require.NoError(t, s.Vehicles.Delete(ctx, v.VehicleID))
	_, err = s.Vehicles.Get(ctx, v.VehicleID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Vehicles.Delete(ctx, v.VehicleID), domain.ErrNotFound)
	assert.ErrorIs(t, s.Vehicles.Update(ctx, v), domain.ErrNotFound)
}

func TestStoreRejectsDuplicateNaturalKey(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, s.Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "AB-1", VehicleType: "Van", CapacityKg: 1}))
	err := s.Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "AB-1", VehicleType: "Truck", CapacityKg: 2})

	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe["plate_number"], "already exists")
}

func TestStoreListFiltersSearchOrderingAndPages(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	for _, v := range []*domain.Vehicle{
		{PlateNumber: "AA-100", VehicleType: "Truck", CapacityKg: 10000, Active: true},
		{PlateNumber: "BB-200", VehicleType: "Van", CapacityKg: 1500, Active: true},
		{PlateNumber: "CC-300", VehicleType: "Truck", CapacityKg: 18000, Active: false},
	} {
		require.NoError(t, s.Vehicles.Create(ctx, v))
	}

	page, err := s.Vehicles.List(ctx, ports.ListQuery{Filters: map[string]string{"vehicle_type": "truck"}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)

	page, err = s.Vehicles.List(ctx, ports.ListQuery{Filters: map[string]string{"active": "true", "capacity_min": "2000"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "AA-100", page.Items[0].PlateNumber)

	page, err = s.Vehicles.List(ctx, ports.ListQuery{Search: "bb"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "BB-200", page.Items[0].PlateNumber)

	page, err = s.Vehicles.List(ctx, ports.ListQuery{Ordering: "-capacity_kg", PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "BB-200", page.Items[0].PlateNumber)
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrevious())

	_, err = s.Vehicles.List(ctx, ports.ListQuery{Page: 9, PageSize: 2})
	assert.ErrorIs(t, err, ports.ErrInvalidPage)

	page, err = s.Vehicles.List(ctx, ports.ListQuery{Page: 9, PageSize: 2, Clamp: true})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)

	_, err = s.Vehicles.List(ctx, ports.ListQuery{Ordering: "vehicle_type"})
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "ordering")

	_, err = s.Vehicles.List(ctx, ports.ListQuery{Filters: map[string]string{"capacity_min": "lots"}})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "capacity_min")
}

func TestSearchEscapesWildcards(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, s.Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "AB_1", VehicleType: "Van", CapacityKg: 1}))
	require.NoError(t, s.Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "ABX1", VehicleType: "Van", CapacityKg: 1}))

	page, err := s.Vehicles.List(ctx, ports.ListQuery{Search: "b_"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "AB_1", page.Items[0].PlateNumber)
}

func TestDispatchCreateRunsValidatorBeforeWriting(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	f := newFleet(t, s)

	bad := groundDispatch(f)
	bad.PilotID = ref(f.pilot.PilotID)

	err := s.Dispatches.Create(ctx, bad)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, domain.ConflictingPersonnel, ve.Kind)
	assert.Zero(t, bad.DispatchID)

	n, err := s.Dispatches.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected dispatch must not be stored")

	good := groundDispatch(f)
	require.NoError(t, s.Dispatches.Create(ctx, good))

	stored, err := s.Dispatches.Get(ctx, good.DispatchID)
	require.NoError(t, err)
	assert.Equal(t, good, stored)
}

func TestDispatchUpdateRejectsInvalidCarrierAndKeepsStoredRow(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	f := newFleet(t, s)

	d := groundDispatch(f)
	require.NoError(t, s.Dispatches.Create(ctx, d))

	d.AircraftID = ref(f.aircraft.AircraftID)
	err := s.Dispatches.Update(ctx, d)
	assert.ErrorIs(t, err, &domain.ValidationError{Kind: domain.ConflictingTransport})

	stored, err := s.Dispatches.Get(ctx, d.DispatchID)
	require.NoError(t, err)
	assert.Nil(t, stored.AircraftID)
}

func TestDispatchUnknownReferences(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	f := newFleet(t, s)

	d := groundDispatch(f)
	d.VehicleID = ref(999)
	d.RouteID = 998

	err := s.Dispatches.Create(ctx, d)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "unknown vehicle", fe["vehicle"])
	assert.Equal(t, "unknown route", fe["route"])
}

func TestDeletingCarrierFlagsDispatch(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	f := newFleet(t, s)

	d := groundDispatch(f)
	require.NoError(t, s.Dispatches.Create(ctx, d))

	require.NoError(t, s.Vehicles.Delete(ctx, f.vehicle.VehicleID))

	stored, err := s.Dispatches.Get(ctx, d.DispatchID)
	require.NoError(t, err)
	assert.Nil(t, stored.VehicleID)
	assert.True(t, stored.NeedsReassignment)

	flagged, err := s.Dispatches.ListNeedingReassignment(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, d.DispatchID, flagged[0].DispatchID)

	n, err := s.Dispatches.Count(ctx, map[string]string{"needs_reassignment": "true"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Saving the broken shape is refused; assigning a full carrier clears the flag.
	assert.ErrorIs(t, s.Dispatches.Update(ctx, stored), &domain.ValidationError{Kind: domain.MissingTransport})

	stored.Assign(domain.AirAssignment{AircraftID: f.aircraft.AircraftID, PilotID: f.pilot.PilotID})
	require.NoError(t, s.Dispatches.Update(ctx, stored))

	again, err := s.Dispatches.Get(ctx, d.DispatchID)
	require.NoError(t, err)
	assert.False(t, again.NeedsReassignment)

	flagged, err = s.Dispatches.ListNeedingReassignment(ctx)
	require.NoError(t, err)
	assert.Empty(t, flagged)
}

func TestClosedDispatchesAreNotReportedForReassignment(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	f := newFleet(t, s)

	d := groundDispatch(f)
	d.Status = domain.StatusDelivered
	require.NoError(t, s.Dispatches.Create(ctx, d))
	require.NoError(t, s.Drivers.Delete(ctx, f.driver.DriverID))

	flagged, err := s.Dispatches.ListNeedingReassignment(ctx)
	require.NoError(t, err)
	assert.Empty(t, flagged)
}

func TestProtectedAndNullifyingDeletes(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	f := newFleet(t, s)

	d := groundDispatch(f)
	require.NoError(t, s.Dispatches.Create(ctx, d))

	err := s.Routes.Delete(ctx, f.route.RouteID)
	var refErr *domain.ReferencedError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, 1, refErr.Count)

	err = s.Cargo.Delete(ctx, f.cargo.CargoID)
	require.ErrorAs(t, err, &refErr)

	require.NoError(t, s.Clients.Delete(ctx, f.client.ClientID))
	cargo, err := s.Cargo.Get(ctx, f.cargo.CargoID)
	require.NoError(t, err)
	assert.Nil(t, cargo.ClientID)

	require.NoError(t, s.Dispatches.Delete(ctx, d.DispatchID))
	require.NoError(t, s.Routes.Delete(ctx, f.route.RouteID))
}

func TestDispatchFilters(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	f := newFleet(t, s)

	early := groundDispatch(f)
	early.DispatchDate = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	late := groundDispatch(f)
	late.DispatchDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	late.Status = domain.StatusInTransit
	require.NoError(t, s.Dispatches.Create(ctx, early))
	require.NoError(t, s.Dispatches.Create(ctx, late))

	page, err := s.Dispatches.List(ctx, ports.ListQuery{Filters: map[string]string{"date_from": "2025-03-01"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, late.DispatchID, page.Items[0].DispatchID)

	page, err = s.Dispatches.List(ctx, ports.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, late.DispatchID, page.Items[0].DispatchID, "newest first by default")

	page, err = s.Dispatches.List(ctx, ports.ListQuery{Filters: map[string]string{"status": "transit"}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
}

func TestSeedFixture(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	fx, err := ReadFixture("../../../data/seeds/fleet.yaml")
	require.NoError(t, err)

	report, err := Seed(ctx, s, fx)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, len(fx.Dispatches), report.Counts["dispatch"])
	assert.Equal(t, len(fx.Vehicles), report.Counts["vehicle"])

	report, err = Seed(ctx, s, fx)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
}

func TestSeedRejectsInvalidDispatch(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	const doc = `
routes:
  - {key: r, origin: A, destination: B}
cargo:
  - {key: c, weight_kg: 1}
dispatches:
  - {date: "2025-03-01", route: r, cargo: c}
`
	var fx Fixture
	require.NoError(t, yaml.Unmarshal([]byte(doc), &fx))

	_, err := Seed(ctx, s, &fx)
	assert.True(t, errors.Is(err, &domain.ValidationError{Kind: domain.MissingTransport}))
}

func TestUserRepository(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	u := &domain.User{Username: "ops", Email: "ops@example.com", PasswordHash: "x"}
	require.NoError(t, s.Users.Create(ctx, u))
	require.NotZero(t, u.UserID)

	got, err := s.Users.GetByUsername(ctx, "ops")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)
	assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Second)

	_, err = s.Users.GetByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.Users.Create(ctx, &domain.User{Username: "OPS", Email: "other@example.com", PasswordHash: "x"})
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "username")
}
