package domain

// ValidationKind identifies which dispatch assignment rule a candidate broke.
type ValidationKind string

const (
	ConflictingTransport   ValidationKind = "ConflictingTransport"
	MissingTransport       ValidationKind = "MissingTransport"
	ConflictingPersonnel   ValidationKind = "ConflictingPersonnel"
	MissingPersonnel       ValidationKind = "MissingPersonnel"
	PilotOnGroundTransport ValidationKind = "PilotOnGroundTransport"
	DriverOnAirTransport   ValidationKind = "DriverOnAirTransport"
)

var validationMessages = map[ValidationKind]string{
	ConflictingTransport:   "a dispatch cannot have both a vehicle and an aircraft assigned",
	MissingTransport:       "a dispatch must have a vehicle or an aircraft assigned",
	ConflictingPersonnel:   "a dispatch cannot have both a driver and a pilot assigned",
	MissingPersonnel:       "a dispatch must have a driver or a pilot assigned",
	PilotOnGroundTransport: "a ground dispatch cannot have a pilot assigned",
	DriverOnAirTransport:   "an air dispatch cannot have a driver assigned",
}

// ValidationError reports a dispatch whose carrier assignment is not one of
// the two accepted shapes (vehicle+driver or aircraft+pilot).
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	if msg, ok := validationMessages[e.Kind]; ok {
		return msg
	}
	return "invalid dispatch assignment"
}

// Is matches another *ValidationError of the same kind. A target with an
// empty Kind matches every dispatch validation error.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// ValidateDispatch checks the carrier assignment of a candidate dispatch.
//
// Rules are evaluated in a fixed order and the first violation is returned.
// The candidate is only read, never modified, so the check is safe to run
// concurrently and any number of times.
func ValidateDispatch(d *Dispatch) error {
	var vehicle, aircraft, driver, pilot bool
	if d != nil {
		vehicle = d.VehicleID != nil
		aircraft = d.AircraftID != nil
		driver = d.DriverID != nil
		pilot = d.PilotID != nil
	}

	switch {
	case vehicle && aircraft:
		return &ValidationError{Kind: ConflictingTransport}
	case !vehicle && !aircraft:
		return &ValidationError{Kind: MissingTransport}
	case driver && pilot:
		return &ValidationError{Kind: ConflictingPersonnel}
	case !driver && !pilot:
		return &ValidationError{Kind: MissingPersonnel}
	case vehicle && pilot:
		return &ValidationError{Kind: PilotOnGroundTransport}
	case aircraft && driver:
		return &ValidationError{Kind: DriverOnAirTransport}
	}

	return nil
}
