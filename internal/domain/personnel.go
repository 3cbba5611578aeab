package domain

// Driver operates ground vehicles.
type Driver struct {
	DriverID      int64
	FullName      string
	NationalID    string
	LicenseNumber string
	Active        bool
}

func (d *Driver) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "full_name", d.FullName, 255)
	requireText(fe, "national_id", d.NationalID, 15)
	requireText(fe, "license_number", d.LicenseNumber, 50)
	return fe.Err()
}

// Pilot operates aircraft.
type Pilot struct {
	PilotID       int64
	FullName      string
	NationalID    string
	Certification string
	Active        bool
}

func (p *Pilot) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "full_name", p.FullName, 255)
	requireText(fe, "national_id", p.NationalID, 15)
	requireText(fe, "certification", p.Certification, 100)
	return fe.Err()
}
