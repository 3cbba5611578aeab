package domain

import (
	"strings"
	"testing"
)

func TestEntityValidation(t *testing.T) {
	negative := -3.0

	tests := []struct {
		name      string
		entity    interface{ Validate() error }
		wantField string
	}{
		{"route ok", &Route{Origin: "Santiago", Destination: "Valparaiso", TransportType: ModeGround}, ""},
		{"route bad mode", &Route{Origin: "A", Destination: "B", TransportType: "SEA"}, "transport_type"},
		{"route negative distance", &Route{Origin: "A", Destination: "B", TransportType: ModeAir, DistanceKm: &negative}, "distance_km"},
		{"vehicle missing plate", &Vehicle{VehicleType: "Truck", CapacityKg: 1000}, "plate_number"},
		{"vehicle negative capacity", &Vehicle{PlateNumber: "AB-1234", VehicleType: "Truck", CapacityKg: -1}, "capacity_kg"},
		{"aircraft ok", &Aircraft{RegistrationNumber: "CC-ABC", AircraftType: "Cargo plane", CapacityKg: 20000}, ""},
		{"driver long national id", &Driver{FullName: "Ana", NationalID: strings.Repeat("9", 16), LicenseNumber: "A2"}, "national_id"},
		{"pilot missing certification", &Pilot{FullName: "Luis", NationalID: "11111111-1"}, "certification"},
		{"client bad email", &Client{Name: "ACME", NationalID: "76000000-0", Email: "not-an-email"}, "email"},
		{"client ok without contact", &Client{Name: "ACME", NationalID: "76000000-0"}, ""},
		{"cargo negative volume", &Cargo{WeightKg: 10, VolumeM3: &negative}, "volume_m3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			fe, ok := err.(FieldErrors)
			if !ok {
				t.Fatalf("error = %v, want FieldErrors", err)
			}
			if _, ok := fe[tt.wantField]; !ok {
				t.Errorf("missing error for %q in %v", tt.wantField, fe)
			}
		})
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	fe := FieldErrors{"b": "second", "a": "first"}
	fe.Add("a", "ignored")

	want := "invalid fields: a: first; b: second"
	if got := fe.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if (FieldErrors{}).Err() != nil {
		t.Fatal("empty FieldErrors should not be an error")
	}
}
