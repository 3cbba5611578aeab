package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
)

type Route struct {
	ID            int64    `json:"id"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	TransportType string   `json:"transport_type"`
	DistanceKm    *float64 `json:"distance_km"`
}

type Vehicle struct {
	ID          int64  `json:"id"`
	PlateNumber string `json:"plate_number"`
	VehicleType string `json:"vehicle_type"`
	CapacityKg  int64  `json:"capacity_kg"`
	Active      bool   `json:"active"`
}

type Aircraft struct {
	ID                 int64  `json:"id"`
	RegistrationNumber string `json:"registration_number"`
	AircraftType       string `json:"aircraft_type"`
	CapacityKg         int64  `json:"capacity_kg"`
	Active             bool   `json:"active"`
}

type Driver struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	NationalID    string `json:"national_id"`
	LicenseNumber string `json:"license_number"`
	Active        bool   `json:"active"`
}

type Pilot struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	NationalID    string `json:"national_id"`
	Certification string `json:"certification"`
	Active        bool   `json:"active"`
}

type Client struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

type Cargo struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	WeightKg    float64  `json:"weight_kg"`
	VolumeM3    *float64 `json:"volume_m3"`
	Client      *int64   `json:"client"`
}

// Assignment is the normalized carrier of a dispatch.
type Assignment struct {
	Mode     string `json:"mode"`
	Vehicle  *int64 `json:"vehicle,omitempty"`
	Driver   *int64 `json:"driver,omitempty"`
	Aircraft *int64 `json:"aircraft,omitempty"`
	Pilot    *int64 `json:"pilot,omitempty"`
}

type Dispatch struct {
	ID                int64       `json:"id"`
	DispatchDate      string      `json:"dispatch_date"`
	Status            string      `json:"status"`
	ShippingCost      *float64    `json:"shipping_cost"`
	Route             int64       `json:"route"`
	Cargo             int64       `json:"cargo"`
	Vehicle           *int64      `json:"vehicle"`
	Aircraft          *int64      `json:"aircraft"`
	Driver            *int64      `json:"driver"`
	Pilot             *int64      `json:"pilot"`
	NeedsReassignment bool        `json:"needs_reassignment"`
	Assignment        *Assignment `json:"assignment"`
}

// NewAssignment renders a domain assignment; nil when the carrier is
// incomplete.
func NewAssignment(a domain.Assignment) *Assignment {
	switch v := a.(type) {
	case domain.GroundAssignment:
		return &Assignment{Mode: string(v.Mode()), Vehicle: &v.VehicleID, Driver: &v.DriverID}
	case domain.AirAssignment:
		return &Assignment{Mode: string(v.Mode()), Aircraft: &v.AircraftID, Pilot: &v.PilotID}
	}
	return nil
}

// Codec converts between catalog records and domain values by way of the
// JSON representation D.
type Codec[T, D any] struct {
	ToDomain   func(*D) (*T, error)
	FromDomain func(*T) D
}

func (c Codec[T, D]) Decode(rec catalog.Record) (*T, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	var d D
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return c.ToDomain(&d)
}

func (c Codec[T, D]) Encode(v *T) (catalog.Record, error) {
	raw, err := json.Marshal(c.FromDomain(v))
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec catalog.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return rec, nil
}

var RouteCodec = Codec[domain.Route, Route]{
	ToDomain: func(d *Route) (*domain.Route, error) {
		return &domain.Route{RouteID: d.ID, Origin: d.Origin, Destination: d.Destination,
			TransportType: domain.TransportMode(d.TransportType), DistanceKm: d.DistanceKm}, nil
	},
	FromDomain: func(r *domain.Route) Route {
		return Route{ID: r.RouteID, Origin: r.Origin, Destination: r.Destination,
			TransportType: string(r.TransportType), DistanceKm: r.DistanceKm}
	},
}

var VehicleCodec = Codec[domain.Vehicle, Vehicle]{
	ToDomain: func(d *Vehicle) (*domain.Vehicle, error) {
		return &domain.Vehicle{VehicleID: d.ID, PlateNumber: d.PlateNumber, VehicleType: d.VehicleType,
			CapacityKg: d.CapacityKg, Active: d.Active}, nil
	},
	FromDomain: func(v *domain.Vehicle) Vehicle {
		return Vehicle{ID: v.VehicleID, PlateNumber: v.PlateNumber, VehicleType: v.VehicleType,
			CapacityKg: v.CapacityKg, Active: v.Active}
	},
}

var AircraftCodec = Codec[domain.Aircraft, Aircraft]{
	ToDomain: func(d *Aircraft) (*domain.Aircraft, error) {
		return &domain.Aircraft{AircraftID: d.ID, RegistrationNumber: d.RegistrationNumber,
			AircraftType: d.AircraftType, CapacityKg: d.CapacityKg, Active: d.Active}, nil
	},
	FromDomain: func(a *domain.Aircraft) Aircraft {
		return Aircraft{ID: a.AircraftID, RegistrationNumber: a.RegistrationNumber,
			AircraftType: a.AircraftType, CapacityKg: a.CapacityKg, Active: a.Active}
	},
}

var DriverCodec = Codec[domain.Driver, Driver]{
	ToDomain: func(d *Driver) (*domain.Driver, error) {
		return &domain.Driver{DriverID: d.ID, FullName: d.FullName, NationalID: d.NationalID,
			LicenseNumber: d.LicenseNumber, Active: d.Active}, nil
	},
	FromDomain: func(d *domain.Driver) Driver {
		return Driver{ID: d.DriverID, FullName: d.FullName, NationalID: d.NationalID,
			LicenseNumber: d.LicenseNumber, Active: d.Active}
	},
}

var PilotCodec = Codec[domain.Pilot, Pilot]{
	ToDomain: func(d *Pilot) (*domain.Pilot, error) {
		return &domain.Pilot{PilotID: d.ID, FullName: d.FullName, NationalID: d.NationalID,
			Certification: d.Certification, Active: d.Active}, nil
	},
	FromDomain: func(p *domain.Pilot) Pilot {
		return Pilot{ID: p.PilotID, FullName: p.FullName, NationalID: p.NationalID,
			Certification: p.Certification, Active: p.Active}
	},
}

var ClientCodec = Codec[domain.Client, Client]{
	ToDomain: func(d *Client) (*domain.Client, error) {
		return &domain.Client{ClientID: d.ID, Name: d.Name, NationalID: d.NationalID,
			Address: d.Address, Phone: d.Phone, Email: d.Email}, nil
	},
	FromDomain: func(c *domain.Client) Client {
		return Client{ID: c.ClientID, Name: c.Name, NationalID: c.NationalID,
			Address: c.Address, Phone: c.Phone, Email: c.Email}
	},
}

var CargoCodec = Codec[domain.Cargo, Cargo]{
	ToDomain: func(d *Cargo) (*domain.Cargo, error) {
		return &domain.Cargo{CargoID: d.ID, Description: d.Description, WeightKg: d.WeightKg,
			VolumeM3: d.VolumeM3, ClientID: d.Client}, nil
	},
	FromDomain: func(c *domain.Cargo) Cargo {
		return Cargo{ID: c.CargoID, Description: c.Description, WeightKg: c.WeightKg,
			VolumeM3: c.VolumeM3, Client: c.ClientID}
	},
}

var DispatchCodec = Codec[domain.Dispatch, Dispatch]{
	ToDomain: func(d *Dispatch) (*domain.Dispatch, error) {
		date, err := time.Parse(domain.DateLayout, d.DispatchDate)
		if err != nil {
			return nil, domain.FieldErrors{"dispatch_date": "must be a date in YYYY-MM-DD format"}
		}
		return &domain.Dispatch{
			DispatchID:        d.ID,
			DispatchDate:      date,
			Status:            domain.DispatchStatus(d.Status),
			ShippingCost:      d.ShippingCost,
			RouteID:           d.Route,
			CargoID:           d.Cargo,
			VehicleID:         d.Vehicle,
			AircraftID:        d.Aircraft,
			DriverID:          d.Driver,
			PilotID:           d.Pilot,
			NeedsReassignment: d.NeedsReassignment,
		}, nil
	},
	FromDomain: func(d *domain.Dispatch) Dispatch {
		out := Dispatch{
			ID:                d.DispatchID,
			DispatchDate:      d.DispatchDate.Format(domain.DateLayout),
			Status:            string(d.Status),
			ShippingCost:      d.ShippingCost,
			Route:             d.RouteID,
			Cargo:             d.CargoID,
			Vehicle:           d.VehicleID,
			Aircraft:          d.AircraftID,
			Driver:            d.DriverID,
			Pilot:             d.PilotID,
			NeedsReassignment: d.NeedsReassignment,
		}
		if a, err := d.Assignment(); err == nil {
			out.Assignment = NewAssignment(a)
		}
		return out
	},
}
