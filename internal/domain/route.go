package domain

// TransportMode distinguishes ground from air transport.
type TransportMode string

const (
	ModeGround TransportMode = "GROUND"
	ModeAir    TransportMode = "AIR"
)

func (m TransportMode) Valid() bool {
	return m == ModeGround || m == ModeAir
}

// Represents a served origin -> destination leg.
type Route struct {
	RouteID       int64
	Origin        string
	Destination   string
	TransportType TransportMode
	DistanceKm    *float64
}

func (r *Route) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "origin", r.Origin, 255)
	requireText(fe, "destination", r.Destination, 255)
	if !r.TransportType.Valid() {
		fe.Add("transport_type", "must be GROUND or AIR")
	}
	optionalNonNegative(fe, "distance_km", r.DistanceKm)
	return fe.Err()
}
