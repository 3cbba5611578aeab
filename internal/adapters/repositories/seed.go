package repositories

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"logistics-service/internal/domain"
)

// Fixture is the YAML seed format. Records refer to each other by key.
type Fixture struct {
	Routes []struct {
		Key           string   `yaml:"key"`
		Origin        string   `yaml:"origin"`
		Destination   string   `yaml:"destination"`
		TransportType string   `yaml:"transport_type"`
		DistanceKm    *float64 `yaml:"distance_km"`
	} `yaml:"routes"`
	Vehicles []struct {
		Key         string `yaml:"key"`
		PlateNumber string `yaml:"plate_number"`
		VehicleType string `yaml:"vehicle_type"`
		CapacityKg  int64  `yaml:"capacity_kg"`
		Active      *bool  `yaml:"active"`
	} `yaml:"vehicles"`
	Aircraft []struct {
		Key                string `yaml:"key"`
		RegistrationNumber string `yaml:"registration_number"`
		AircraftType       string `yaml:"aircraft_type"`
		CapacityKg         int64  `yaml:"capacity_kg"`
		Active             *bool  `yaml:"active"`
	} `yaml:"aircraft"`
	Drivers []struct {
		Key           string `yaml:"key"`
		FullName      string `yaml:"full_name"`
		NationalID    string `yaml:"national_id"`
		LicenseNumber string `yaml:"license_number"`
		Active        *bool  `yaml:"active"`
	} `yaml:"drivers"`
	Pilots []struct {
		Key           string `yaml:"key"`
		FullName      string `yaml:"full_name"`
		NationalID    string `yaml:"national_id"`
		Certification string `yaml:"certification"`
		Active        *bool  `yaml:"active"`
	} `yaml:"pilots"`
	Clients []struct {
		Key        string `yaml:"key"`
		Name       string `yaml:"name"`
		NationalID string `yaml:"national_id"`
		Address    string `yaml:"address"`
		Phone      string `yaml:"phone"`
		Email      string `yaml:"email"`
	} `yaml:"clients"`
	Cargo []struct {
		Key         string   `yaml:"key"`
		Description string   `yaml:"description"`
		WeightKg    float64  `yaml:"weight_kg"`
		VolumeM3    *float64 `yaml:"volume_m3"`
		Client      string   `yaml:"client"`
	} `yaml:"cargo"`
	Dispatches []struct {
		Date         string   `yaml:"date"`
		Status       string   `yaml:"status"`
		ShippingCost *float64 `yaml:"shipping_cost"`
		Route        string   `yaml:"route"`
		Cargo        string   `yaml:"cargo"`
		Vehicle      string   `yaml:"vehicle"`
		Aircraft     string   `yaml:"aircraft"`
		Driver       string   `yaml:"driver"`
		Pilot        string   `yaml:"pilot"`
	} `yaml:"dispatches"`
}

// SeedReport counts the records written by a seed run.
type SeedReport struct {
	Skipped bool
	Counts  map[string]int
}

// ReadFixture parses a YAML fixture file.
func ReadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: read %q: %w", path, err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("read fixture: parse yaml: %w", err)
	}
	return &fx, nil
}

// Seed writes a fixture through the stores so every record passes the same
// validation as API writes. A database that already holds routes is left
// untouched.
func Seed(ctx context.Context, s *Stores, fx *Fixture) (SeedReport, error) {
	report := SeedReport{Counts: map[string]int{}}

	existing, err := s.Routes.Count(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("seed: %w", err)
	}
	if existing > 0 {
		report.Skipped = true
		return report, nil
	}

	ids := map[string]map[string]int64{}
	remember := func(kind, key string, id int64) {
		report.Counts[kind]++
		if key == "" {
			return
		}
		if ids[kind] == nil {
			ids[kind] = map[string]int64{}
		}
		ids[kind][key] = id
	}
	lookup := func(kind, key string) (*int64, error) {
		if key == "" {
			return nil, nil
		}
		id, ok := ids[kind][key]
		if !ok {
			return nil, fmt.Errorf("seed: unknown %s key %q", kind, key)
		}
		return &id, nil
	}

	for i, r := range fx.Routes {
		route := &domain.Route{Origin: r.Origin, Destination: r.Destination, TransportType: domain.TransportMode(r.TransportType), DistanceKm: r.DistanceKm}
		if route.TransportType == "" {
			route.TransportType = domain.ModeGround
		}
		if err := s.Routes.Create(ctx, route); err != nil {
			return report, fmt.Errorf("seed: route #%d: %w", i+1, err)
		}
		remember("route", r.Key, route.RouteID)
	}

	for i, v := range fx.Vehicles {
		vehicle := &domain.Vehicle{PlateNumber: v.PlateNumber, VehicleType: v.VehicleType, CapacityKg: v.CapacityKg, Active: activeOrDefault(v.Active)}
		if err := s.Vehicles.Create(ctx, vehicle); err != nil {
			return report, fmt.Errorf("seed: vehicle #%d: %w", i+1, err)
		}
		remember("vehicle", v.Key, vehicle.VehicleID)
	}

	for i, a := range fx.Aircraft {
		aircraft := &domain.Aircraft{RegistrationNumber: a.RegistrationNumber, AircraftType: a.AircraftType, CapacityKg: a.CapacityKg, Active: activeOrDefault(a.Active)}
		if err := s.Aircraft.Create(ctx, aircraft); err != nil {
			return report, fmt.Errorf("seed: aircraft #%d: %w", i+1, err)
		}
		remember("aircraft", a.Key, aircraft.AircraftID)
	}

	for i, d := range fx.Drivers {
		driver := &domain.Driver{FullName: d.FullName, NationalID: d.NationalID, LicenseNumber: d.LicenseNumber, Active: activeOrDefault(d.Active)}
		if err := s.Drivers.Create(ctx, driver); err != nil {
			return report, fmt.Errorf("seed: driver #%d: %w", i+1, err)
		}
		remember("driver", d.Key, driver.DriverID)
	}

	for i, p := range fx.Pilots {
		pilot := &domain.Pilot{FullName: p.FullName, NationalID: p.NationalID, Certification: p.Certification, Active: activeOrDefault(p.Active)}
		if err := s.Pilots.Create(ctx, pilot); err != nil {
			return report, fmt.Errorf("seed: pilot #%d: %w", i+1, err)
		}
		remember("pilot", p.Key, pilot.PilotID)
	}

	for i, c := range fx.Clients {
		client := &domain.Client{Name: c.Name, NationalID: c.NationalID, Address: c.Address, Phone: c.Phone, Email: c.Email}
		if err := s.Clients.Create(ctx, client); err != nil {
			return report, fmt.Errorf("seed: client #%d: %w", i+1, err)
		}
		remember("client", c.Key, client.ClientID)
	}

	for i, c := range fx.Cargo {
		clientID, err := lookup("client", c.Client)
		if err != nil {
			return report, err
		}
		cargo := &domain.Cargo{Description: c.Description, WeightKg: c.WeightKg, VolumeM3: c.VolumeM3, ClientID: clientID}
		if err := s.Cargo.Create(ctx, cargo); err != nil {
			return report, fmt.Errorf("seed: cargo #%d: %w", i+1, err)
		}
		remember("cargo", c.Key, cargo.CargoID)
	}

	for i, d := range fx.Dispatches {
		date, err := time.Parse(domain.DateLayout, d.Date)
		if err != nil {
			return report, fmt.Errorf("seed: dispatch #%d: date: %w", i+1, err)
		}
		dispatch := &domain.Dispatch{DispatchDate: date, Status: domain.DispatchStatus(d.Status), ShippingCost: d.ShippingCost}
		if dispatch.Status == "" {
			dispatch.Status = domain.StatusPending
		}

		refs := []struct {
			kind, key string
			dst       **int64
		}{
			{"vehicle", d.Vehicle, &dispatch.VehicleID},
			{"aircraft", d.Aircraft, &dispatch.AircraftID},
			{"driver", d.Driver, &dispatch.DriverID},
			{"pilot", d.Pilot, &dispatch.PilotID},
		}
		for _, ref := range refs {
			if *ref.dst, err = lookup(ref.kind, ref.key); err != nil {
				return report, err
			}
		}
		if d.Route == "" || d.Cargo == "" {
			return report, fmt.Errorf("seed: dispatch #%d: route and cargo are required", i+1)
		}
		route, err := lookup("route", d.Route)
		if err != nil {
			return report, err
		}
		cargo, err := lookup("cargo", d.Cargo)
		if err != nil {
			return report, err
		}
		dispatch.RouteID, dispatch.CargoID = *route, *cargo

		if err := s.Dispatches.Create(ctx, dispatch); err != nil {
			return report, fmt.Errorf("seed: dispatch #%d: %w", i+1, err)
		}
		report.Counts["dispatch"]++
	}

	return report, nil
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
