package domain

// Ground transport asset. PlateNumber is the natural key.
type Vehicle struct {
	VehicleID   int64
	PlateNumber string
	VehicleType string
	CapacityKg  int64
	Active      bool
}

func (v *Vehicle) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "plate_number", v.PlateNumber, 50)
	requireText(fe, "vehicle_type", v.VehicleType, 50)
	nonNegative(fe, "capacity_kg", float64(v.CapacityKg))
	return fe.Err()
}

// Air transport asset. RegistrationNumber is the natural key.
type Aircraft struct {
	AircraftID         int64
	RegistrationNumber string
	AircraftType       string
	CapacityKg         int64
	Active             bool
}

func (a *Aircraft) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "registration_number", a.RegistrationNumber, 50)
	requireText(fe, "aircraft_type", a.AircraftType, 50)
	nonNegative(fe, "capacity_kg", float64(a.CapacityKg))
	return fe.Err()
}
