package catalog

import "fmt"

var RouteEntity = &Entity{
	Name:        "route",
	Path:        "routes",
	Table:       "routes",
	Label:       "Route",
	LabelPlural: "Routes",
	Fields: []Field{
		{Name: "origin", Label: "Origin", Kind: Text, Required: true, MaxLen: 255, List: true},
		{Name: "destination", Label: "Destination", Kind: Text, Required: true, MaxLen: 255, List: true},
		{Name: "transport_type", Label: "Transport type", Kind: Choice, Choices: []string{"GROUND", "AIR"}, Default: "GROUND", List: true},
		{Name: "distance_km", Label: "Distance (km)", Kind: Decimal, List: true},
	},
	Filters: []Filter{
		{Param: "origin", Field: "origin", Op: Contains, Label: "Origin"},
		{Param: "destination", Field: "destination", Op: Contains, Label: "Destination"},
		{Param: "transport_type", Field: "transport_type", Op: Contains, Label: "Transport type"},
		{Param: "distance_min", Field: "distance_km", Op: Min, Label: "Minimum distance (km)"},
		{Param: "distance_max", Field: "distance_km", Op: Max, Label: "Maximum distance (km)"},
	},
	Search:       []string{"origin", "destination"},
	Ordering:     []string{"id", "origin", "destination", "distance_km"},
	DefaultOrder: []string{"origin", "destination"},
	ReferencedBy: []Referrer{
		{Table: "dispatches", Column: "route_id", Label: "dispatches", Action: Protect},
	},
	PublicList: true,
	Display: func(r Record) string {
		return fmt.Sprintf("Route %s: %s to %s (%s)", Format(r["id"]), Format(r["origin"]), Format(r["destination"]), Format(r["transport_type"]))
	},
}

var VehicleEntity = &Entity{
	Name:        "vehicle",
	Path:        "vehicles",
	Table:       "vehicles",
	Label:       "Vehicle",
	LabelPlural: "Vehicles",
	Fields: []Field{
		{Name: "plate_number", Label: "Plate number", Kind: Text, Required: true, MaxLen: 50, Unique: true, List: true},
		{Name: "vehicle_type", Label: "Vehicle type", Kind: Text, Required: true, MaxLen: 50, List: true},
		{Name: "capacity_kg", Label: "Capacity (kg)", Kind: Integer, Required: true, List: true},
		{Name: "active", Label: "Active", Kind: Boolean, Default: true, List: true},
	},
	Filters: []Filter{
		{Param: "plate_number", Field: "plate_number", Op: Contains, Label: "Plate number"},
		{Param: "vehicle_type", Field: "vehicle_type", Op: Contains, Label: "Vehicle type"},
		{Param: "active", Field: "active", Op: Equal, Label: "Status"},
		{Param: "capacity_min", Field: "capacity_kg", Op: Min, Label: "Minimum capacity (kg)"},
		{Param: "capacity_max", Field: "capacity_kg", Op: Max, Label: "Maximum capacity (kg)"},
	},
	Search:       []string{"plate_number"},
	Ordering:     []string{"id", "plate_number", "capacity_kg"},
	DefaultOrder: []string{"plate_number"},
	ReferencedBy: []Referrer{
		{Table: "dispatches", Column: "vehicle_id", Label: "dispatches", Action: Detach},
	},
	PublicRead: true,
	PublicList: true,
	Display: func(r Record) string {
		return fmt.Sprintf("%s (%s)", Format(r["vehicle_type"]), Format(r["plate_number"]))
	},
}

var AircraftEntity = &Entity{
	Name:        "aircraft",
	Path:        "aircraft",
	Table:       "aircraft",
	Label:       "Aircraft",
	LabelPlural: "Aircraft",
	Fields: []Field{
		{Name: "registration_number", Label: "Registration number", Kind: Text, Required: true, MaxLen: 50, Unique: true, List: true},
		{Name: "aircraft_type", Label: "Aircraft type", Kind: Text, Required: true, MaxLen: 50, List: true},
		{Name: "capacity_kg", Label: "Capacity (kg)", Kind: Integer, Required: true, List: true},
		{Name: "active", Label: "Active", Kind: Boolean, Default: true, List: true},
	},
	Filters: []Filter{
		{Param: "registration_number", Field: "registration_number", Op: Contains, Label: "Registration number"},
		{Param: "aircraft_type", Field: "aircraft_type", Op: Contains, Label: "Aircraft type"},
		{Param: "active", Field: "active", Op: Equal, Label: "Status"},
		{Param: "capacity_min", Field: "capacity_kg", Op: Min, Label: "Minimum capacity (kg)"},
	},
	Search:       []string{"registration_number"},
	Ordering:     []string{"id", "registration_number", "capacity_kg"},
	DefaultOrder: []string{"registration_number"},
	ReferencedBy: []Referrer{
		{Table: "dispatches", Column: "aircraft_id", Label: "dispatches", Action: Detach},
	},
	PublicRead: true,
	PublicList: true,
	Display: func(r Record) string {
		return fmt.Sprintf("%s (%s)", Format(r["aircraft_type"]), Format(r["registration_number"]))
	},
}

var DriverEntity = &Entity{
	Name:        "driver",
	Path:        "drivers",
	Table:       "drivers",
	Label:       "Driver",
	LabelPlural: "Drivers",
	Fields: []Field{
		{Name: "full_name", Label: "Full name", Kind: Text, Required: true, MaxLen: 255, List: true},
		{Name: "national_id", Label: "National ID", Kind: Text, Required: true, MaxLen: 15, Unique: true, List: true},
		{Name: "license_number", Label: "License number", Kind: Text, Required: true, MaxLen: 50, List: true},
		{Name: "active", Label: "Active", Kind: Boolean, Default: true, List: true},
	},
	Filters: []Filter{
		{Param: "full_name", Field: "full_name", Op: Contains, Label: "Name"},
		{Param: "national_id", Field: "national_id", Op: Contains, Label: "National ID"},
		{Param: "license_number", Field: "license_number", Op: Contains, Label: "License"},
		{Param: "active", Field: "active", Op: Equal, Label: "Status"},
	},
	Search:       []string{"full_name", "national_id", "license_number"},
	Ordering:     []string{"id", "full_name"},
	DefaultOrder: []string{"full_name"},
	ReferencedBy: []Referrer{
		{Table: "dispatches", Column: "driver_id", Label: "dispatches", Action: Detach},
	},
	Display: personDisplay,
}

var PilotEntity = &Entity{
	Name:        "pilot",
	Path:        "pilots",
	Table:       "pilots",
	Label:       "Pilot",
	LabelPlural: "Pilots",
	Fields: []Field{
		{Name: "full_name", Label: "Full name", Kind: Text, Required: true, MaxLen: 255, List: true},
		{Name: "national_id", Label: "National ID", Kind: Text, Required: true, MaxLen: 15, Unique: true, List: true},
		{Name: "certification", Label: "Certification", Kind: Text, Required: true, MaxLen: 100, List: true},
		{Name: "active", Label: "Active", Kind: Boolean, Default: true, List: true},
	},
	Filters: []Filter{
		{Param: "full_name", Field: "full_name", Op: Contains, Label: "Name"},
		{Param: "national_id", Field: "national_id", Op: Contains, Label: "National ID"},
		{Param: "certification", Field: "certification", Op: Contains, Label: "Certification"},
		{Param: "active", Field: "active", Op: Equal, Label: "Status"},
	},
	Search:       []string{"full_name", "national_id", "certification"},
	Ordering:     []string{"id", "full_name"},
	DefaultOrder: []string{"full_name"},
	ReferencedBy: []Referrer{
		{Table: "dispatches", Column: "pilot_id", Label: "dispatches", Action: Detach},
	},
	Display: personDisplay,
}

var ClientEntity = &Entity{
	Name:        "client",
	Path:        "clients",
	Table:       "clients",
	Label:       "Client",
	LabelPlural: "Clients",
	Fields: []Field{
		{Name: "name", Label: "Name", Kind: Text, Required: true, MaxLen: 255, List: true},
		{Name: "national_id", Label: "National ID", Kind: Text, Required: true, MaxLen: 15, Unique: true, List: true},
		{Name: "address", Label: "Address", Kind: Text, MaxLen: 255},
		{Name: "phone", Label: "Phone", Kind: Text, MaxLen: 20, List: true},
		{Name: "email", Label: "Email", Kind: Email, MaxLen: 255, List: true},
	},
	Filters: []Filter{
		{Param: "name", Field: "name", Op: Contains, Label: "Name"},
		{Param: "national_id", Field: "national_id", Op: Contains, Label: "National ID"},
		{Param: "email", Field: "email", Op: Contains, Label: "Email"},
		{Param: "phone", Field: "phone", Op: Contains, Label: "Phone"},
	},
	Search:       []string{"name", "national_id", "email"},
	Ordering:     []string{"id", "name"},
	DefaultOrder: []string{"name"},
	ReferencedBy: []Referrer{
		{Table: "cargo", Column: "client_id", Label: "cargo", Action: SetNull},
	},
	PublicRead: true,
	PublicList: true,
	Display: func(r Record) string {
		return Format(r["name"])
	},
}

var CargoEntity = &Entity{
	Name:        "cargo",
	Path:        "cargo",
	Table:       "cargo",
	Label:       "Cargo",
	LabelPlural: "Cargo",
	Fields: []Field{
		{Name: "description", Label: "Description", Kind: Text, MaxLen: 255, List: true},
		{Name: "weight_kg", Label: "Weight (kg)", Kind: Decimal, Required: true, List: true},
		{Name: "volume_m3", Label: "Volume (m³)", Kind: Decimal, List: true},
		{Name: "client", Label: "Client", Kind: Reference, Ref: "client", List: true},
	},
	Filters: []Filter{
		{Param: "description", Field: "description", Op: Contains, Label: "Description"},
		{Param: "client", Field: "client", Op: Equal, Label: "Client"},
		{Param: "weight_min", Field: "weight_kg", Op: Min, Label: "Minimum weight (kg)"},
		{Param: "weight_max", Field: "weight_kg", Op: Max, Label: "Maximum weight (kg)"},
		{Param: "volume_min", Field: "volume_m3", Op: Min, Label: "Minimum volume (m³)"},
	},
	Search:       []string{"description"},
	Ordering:     []string{"id", "weight_kg", "volume_m3"},
	DefaultOrder: []string{"description", "client"},
	ReferencedBy: []Referrer{
		{Table: "dispatches", Column: "cargo_id", Label: "dispatches", Action: Protect},
	},
	Display: func(r Record) string {
		return fmt.Sprintf("Cargo %s: %s (%s kg)", Format(r["id"]), Format(r["description"]), Format(r["weight_kg"]))
	},
}

var DispatchEntity = &Entity{
	Name:        "dispatch",
	Path:        "dispatches",
	Table:       "dispatches",
	Label:       "Dispatch",
	LabelPlural: "Dispatches",
	Fields: []Field{
		{Name: "dispatch_date", Label: "Dispatch date", Kind: Date, Required: true, List: true},
		{Name: "status", Label: "Status", Kind: Choice, Choices: []string{"PENDING", "IN_TRANSIT", "DELIVERED", "CANCELLED"}, Default: "PENDING", List: true},
		{Name: "shipping_cost", Label: "Shipping cost", Kind: Decimal, List: true},
		{Name: "route", Label: "Route", Kind: Reference, Ref: "route", Required: true, List: true},
		{Name: "vehicle", Label: "Vehicle", Kind: Reference, Ref: "vehicle", List: true},
		{Name: "aircraft", Label: "Aircraft", Kind: Reference, Ref: "aircraft", List: true},
		{Name: "driver", Label: "Driver", Kind: Reference, Ref: "driver", List: true},
		{Name: "pilot", Label: "Pilot", Kind: Reference, Ref: "pilot", List: true},
		{Name: "cargo", Label: "Cargo", Kind: Reference, Ref: "cargo", Required: true, List: true},
		{Name: FlagColumn, Label: "Needs reassignment", Kind: Boolean, ReadOnly: true, List: true},
	},
	Computed: []string{"assignment"},
	Filters: []Filter{
		{Param: "status", Field: "status", Op: Contains, Label: "Status"},
		{Param: "date_from", Field: "dispatch_date", Op: Min, Label: "Date from"},
		{Param: "date_to", Field: "dispatch_date", Op: Max, Label: "Date to"},
		{Param: "route", Field: "route", Op: Equal, Label: "Route"},
		{Param: "vehicle", Field: "vehicle", Op: Equal, Label: "Vehicle"},
		{Param: "aircraft", Field: "aircraft", Op: Equal, Label: "Aircraft"},
		{Param: "driver", Field: "driver", Op: Equal, Label: "Driver"},
		{Param: "pilot", Field: "pilot", Op: Equal, Label: "Pilot"},
		{Param: "cargo", Field: "cargo", Op: Equal, Label: "Cargo"},
		{Param: "cost_min", Field: "shipping_cost", Op: Min, Label: "Minimum cost"},
		{Param: "cost_max", Field: "shipping_cost", Op: Max, Label: "Maximum cost"},
		{Param: FlagColumn, Field: FlagColumn, Op: Equal, Label: "Needs reassignment"},
	},
	Search:       []string{"status"},
	Ordering:     []string{"id", "dispatch_date", "shipping_cost"},
	DefaultOrder: []string{"-dispatch_date", "status"},
	Display: func(r Record) string {
		return fmt.Sprintf("Dispatch %s - %s - %s", Format(r["id"]), Format(r["dispatch_date"]), Format(r["status"]))
	},
}

func personDisplay(r Record) string {
	return fmt.Sprintf("%s (%s)", Format(r["full_name"]), Format(r["national_id"]))
}
