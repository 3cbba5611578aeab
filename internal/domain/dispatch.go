package domain

import "time"

// DispatchStatus is the lifecycle state of a dispatch.
type DispatchStatus string

const (
	StatusPending   DispatchStatus = "PENDING"
	StatusInTransit DispatchStatus = "IN_TRANSIT"
	StatusDelivered DispatchStatus = "DELIVERED"
	StatusCancelled DispatchStatus = "CANCELLED"
)

var DispatchStatuses = []DispatchStatus{StatusPending, StatusInTransit, StatusDelivered, StatusCancelled}

func (s DispatchStatus) Valid() bool {
	for _, v := range DispatchStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Open reports whether the dispatch still needs a working carrier.
func (s DispatchStatus) Open() bool {
	return s == StatusPending || s == StatusInTransit
}

// DateLayout is the wire and storage format of dispatch dates.
const DateLayout = "2006-01-02"

// Represents one scheduled shipment of cargo along a route.
//
// The carrier is stored flat as four optional references. Exactly one of
// the shapes {VehicleID, DriverID} or {AircraftID, PilotID} is valid; see
// ValidateDispatch. NeedsReassignment is set by storage when a referenced
// carrier record is deleted and cleared by the next accepted write.
type Dispatch struct {
	DispatchID        int64
	DispatchDate      time.Time
	Status            DispatchStatus
	ShippingCost      *float64
	RouteID           int64
	CargoID           int64
	VehicleID         *int64
	AircraftID        *int64
	DriverID          *int64
	PilotID           *int64
	NeedsReassignment bool
}

// Validate checks field-level constraints. The carrier rule is checked
// separately by ValidateDispatch.
func (d *Dispatch) Validate() error {
	fe := FieldErrors{}
	if d.DispatchDate.IsZero() {
		fe.Add("dispatch_date", "this field is required")
	}
	if !d.Status.Valid() {
		fe.Add("status", "not a valid dispatch status")
	}
	optionalNonNegative(fe, "shipping_cost", d.ShippingCost)
	if d.RouteID <= 0 {
		fe.Add("route", "this field is required")
	}
	if d.CargoID <= 0 {
		fe.Add("cargo", "this field is required")
	}
	return fe.Err()
}

// Assignment is the carrier of a valid dispatch: a GroundAssignment or an
// AirAssignment.
type Assignment interface {
	Mode() TransportMode
	isAssignment()
}

type GroundAssignment struct {
	VehicleID int64
	DriverID  int64
}

func (GroundAssignment) Mode() TransportMode { return ModeGround }
func (GroundAssignment) isAssignment()       {}

type AirAssignment struct {
	AircraftID int64
	PilotID    int64
}

func (AirAssignment) Mode() TransportMode { return ModeAir }
func (AirAssignment) isAssignment()       {}

// Assignment normalizes the flat carrier references into their variant.
// It fails with the same error ValidateDispatch would return.
func (d *Dispatch) Assignment() (Assignment, error) {
	if err := ValidateDispatch(d); err != nil {
		return nil, err
	}

	if d.VehicleID != nil {
		return GroundAssignment{VehicleID: *d.VehicleID, DriverID: *d.DriverID}, nil
	}
	return AirAssignment{AircraftID: *d.AircraftID, PilotID: *d.PilotID}, nil
}

// Assign replaces the carrier references with the given variant.
func (d *Dispatch) Assign(a Assignment) {
	d.VehicleID, d.AircraftID, d.DriverID, d.PilotID = nil, nil, nil, nil

	switch v := a.(type) {
	case GroundAssignment:
		vehicle, driver := v.VehicleID, v.DriverID
		d.VehicleID, d.DriverID = &vehicle, &driver
	case AirAssignment:
		aircraft, pilot := v.AircraftID, v.PilotID
		d.AircraftID, d.PilotID = &aircraft, &pilot
	}
}
