package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/platform/db"
)

var routeMapping = Mapping[domain.Route]{
	Entity: catalog.RouteEntity,
	Values: func(r *domain.Route) []any {
		return []any{r.Origin, r.Destination, string(r.TransportType), r.DistanceKm}
	},
	Scan: func(row rowScanner) (*domain.Route, error) {
		var r domain.Route
		var mode string
		var distance sql.NullFloat64
		if err := row.Scan(&r.RouteID, &r.Origin, &r.Destination, &mode, &distance); err != nil {
			return nil, err
		}
		r.TransportType = domain.TransportMode(mode)
		r.DistanceKm = nullableFloat(distance)
		return &r, nil
	},
	ID:       func(r *domain.Route) int64 { return r.RouteID },
	SetID:    func(r *domain.Route, id int64) { r.RouteID = id },
	Validate: func(r *domain.Route) error { return r.Validate() },
}

var vehicleMapping = Mapping[domain.Vehicle]{
	Entity: catalog.VehicleEntity,
	Values: func(v *domain.Vehicle) []any {
		return []any{v.PlateNumber, v.VehicleType, v.CapacityKg, v.Active}
	},
	Scan: func(row rowScanner) (*domain.Vehicle, error) {
		var v domain.Vehicle
		if err := row.Scan(&v.VehicleID, &v.PlateNumber, &v.VehicleType, &v.CapacityKg, &v.Active); err != nil {
			return nil, err
		}
		return &v, nil
	},
	ID:       func(v *domain.Vehicle) int64 { return v.VehicleID },
	SetID:    func(v *domain.Vehicle, id int64) { v.VehicleID = id },
	Validate: func(v *domain.Vehicle) error { return v.Validate() },
}

var aircraftMapping = Mapping[domain.Aircraft]{
	Entity: catalog.AircraftEntity,
	Values: func(a *domain.Aircraft) []any {
		return []any{a.RegistrationNumber, a.AircraftType, a.CapacityKg, a.Active}
	},
	Scan: func(row rowScanner) (*domain.Aircraft, error) {
		var a domain.Aircraft
		if err := row.Scan(&a.AircraftID, &a.RegistrationNumber, &a.AircraftType, &a.CapacityKg, &a.Active); err != nil {
			return nil, err
		}
		return &a, nil
	},
	ID:       func(a *domain.Aircraft) int64 { return a.AircraftID },
	SetID:    func(a *domain.Aircraft, id int64) { a.AircraftID = id },
	Validate: func(a *domain.Aircraft) error { return a.Validate() },
}

var driverMapping = Mapping[domain.Driver]{
	Entity: catalog.DriverEntity,
	Values: func(d *domain.Driver) []any {
		return []any{d.FullName, d.NationalID, d.LicenseNumber, d.Active}
	},
	Scan: func(row rowScanner) (*domain.Driver, error) {
		var d domain.Driver
		if err := row.Scan(&d.DriverID, &d.FullName, &d.NationalID, &d.LicenseNumber, &d.Active); err != nil {
			return nil, err
		}
		return &d, nil
	},
	ID:       func(d *domain.Driver) int64 { return d.DriverID },
	SetID:    func(d *domain.Driver, id int64) { d.DriverID = id },
	Validate: func(d *domain.Driver) error { return d.Validate() },
}

var pilotMapping = Mapping[domain.Pilot]{
	Entity: catalog.PilotEntity,
	Values: func(p *domain.Pilot) []any {
		return []any{p.FullName, p.NationalID, p.Certification, p.Active}
	},
	Scan: func(row rowScanner) (*domain.Pilot, error) {
		var p domain.Pilot
		if err := row.Scan(&p.PilotID, &p.FullName, &p.NationalID, &p.Certification, &p.Active); err != nil {
			return nil, err
		}
		return &p, nil
	},
	ID:       func(p *domain.Pilot) int64 { return p.PilotID },
	SetID:    func(p *domain.Pilot, id int64) { p.PilotID = id },
	Validate: func(p *domain.Pilot) error { return p.Validate() },
}

var clientMapping = Mapping[domain.Client]{
	Entity: catalog.ClientEntity,
	Values: func(c *domain.Client) []any {
		return []any{c.Name, c.NationalID, c.Address, c.Phone, c.Email}
	},
	Scan: func(row rowScanner) (*domain.Client, error) {
		var c domain.Client
		if err := row.Scan(&c.ClientID, &c.Name, &c.NationalID, &c.Address, &c.Phone, &c.Email); err != nil {
			return nil, err
		}
		return &c, nil
	},
	ID:       func(c *domain.Client) int64 { return c.ClientID },
	SetID:    func(c *domain.Client, id int64) { c.ClientID = id },
	Validate: func(c *domain.Client) error { return c.Validate() },
}

var cargoMapping = Mapping[domain.Cargo]{
	Entity: catalog.CargoEntity,
	Values: func(c *domain.Cargo) []any {
		return []any{c.Description, c.WeightKg, c.VolumeM3, c.ClientID}
	},
	Scan: func(row rowScanner) (*domain.Cargo, error) {
		var c domain.Cargo
		var volume sql.NullFloat64
		var client sql.NullInt64
		if err := row.Scan(&c.CargoID, &c.Description, &c.WeightKg, &volume, &client); err != nil {
			return nil, err
		}
		c.VolumeM3 = nullableFloat(volume)
		c.ClientID = nullableInt(client)
		return &c, nil
	},
	ID:       func(c *domain.Cargo) int64 { return c.CargoID },
	SetID:    func(c *domain.Cargo, id int64) { c.CargoID = id },
	Validate: func(c *domain.Cargo) error { return c.Validate() },
}

// The dispatch carrier rule is enforced by SQLDispatchRepository, not here.
var dispatchMapping = Mapping[domain.Dispatch]{
	Entity: catalog.DispatchEntity,
	Values: func(d *domain.Dispatch) []any {
		return []any{
			d.DispatchDate.Format(domain.DateLayout),
			string(d.Status),
			d.ShippingCost,
			d.RouteID,
			d.VehicleID,
			d.AircraftID,
			d.DriverID,
			d.PilotID,
			d.CargoID,
			d.NeedsReassignment,
		}
	},
	Scan:     scanDispatch,
	ID:       func(d *domain.Dispatch) int64 { return d.DispatchID },
	SetID:    func(d *domain.Dispatch, id int64) { d.DispatchID = id },
	Validate: func(d *domain.Dispatch) error { return d.Validate() },
}

func scanDispatch(row rowScanner) (*domain.Dispatch, error) {
	var d domain.Dispatch
	var date, status string
	var cost sql.NullFloat64
	var vehicle, aircraft, driver, pilot sql.NullInt64

	err := row.Scan(&d.DispatchID, &date, &status, &cost, &d.RouteID,
		&vehicle, &aircraft, &driver, &pilot, &d.CargoID, &d.NeedsReassignment)
	if err != nil {
		return nil, err
	}

	if d.DispatchDate, err = parseStoredDate(date); err != nil {
		return nil, err
	}
	d.Status = domain.DispatchStatus(status)
	d.ShippingCost = nullableFloat(cost)
	d.VehicleID = nullableInt(vehicle)
	d.AircraftID = nullableInt(aircraft)
	d.DriverID = nullableInt(driver)
	d.PilotID = nullableInt(pilot)
	return &d, nil
}

// parseStoredDate accepts a bare date or a timestamp rendering of one.
func parseStoredDate(s string) (time.Time, error) {
	if len(s) < len(domain.DateLayout) {
		return time.Time{}, fmt.Errorf("parse date %q: too short", s)
	}
	t, err := time.Parse(domain.DateLayout, s[:len(domain.DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Stores groups the entity stores over one connection.
type Stores struct {
	Routes     *SQLStore[domain.Route]
	Vehicles   *SQLStore[domain.Vehicle]
	Aircraft   *SQLStore[domain.Aircraft]
	Drivers    *SQLStore[domain.Driver]
	Pilots     *SQLStore[domain.Pilot]
	Clients    *SQLStore[domain.Client]
	Cargo      *SQLStore[domain.Cargo]
	Dispatches *SQLDispatchRepository
	Users      *SQLUserRepository
}

func NewStores(conn *db.DB) *Stores {
	return &Stores{
		Routes:     NewSQLStore(conn, routeMapping),
		Vehicles:   NewSQLStore(conn, vehicleMapping),
		Aircraft:   NewSQLStore(conn, aircraftMapping),
		Drivers:    NewSQLStore(conn, driverMapping),
		Pilots:     NewSQLStore(conn, pilotMapping),
		Clients:    NewSQLStore(conn, clientMapping),
		Cargo:      NewSQLStore(conn, cargoMapping),
		Dispatches: NewSQLDispatchRepository(conn),
		Users:      NewSQLUserRepository(conn),
	}
}
