package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchAssignment(t *testing.T) {
	ground := carrier(ref(123), nil, ref(1), nil)
	a, err := ground.Assignment()
	require.NoError(t, err)
	assert.Equal(t, GroundAssignment{VehicleID: 123, DriverID: 1}, a)
	assert.Equal(t, ModeGround, a.Mode())

	air := carrier(nil, ref(9), nil, ref(7))
	a, err = air.Assignment()
	require.NoError(t, err)
	assert.Equal(t, AirAssignment{AircraftID: 9, PilotID: 7}, a)
	assert.Equal(t, ModeAir, a.Mode())

	_, err = carrier(ref(123), nil, nil, ref(7)).Assignment()
	assert.ErrorIs(t, err, &ValidationError{Kind: PilotOnGroundTransport})
}

func TestDispatchAssignReplacesCarrier(t *testing.T) {
	d := carrier(ref(123), nil, ref(1), nil)

	d.Assign(AirAssignment{AircraftID: 9, PilotID: 7})

	assert.Nil(t, d.VehicleID)
	assert.Nil(t, d.DriverID)
	require.NotNil(t, d.AircraftID)
	require.NotNil(t, d.PilotID)
	assert.Equal(t, int64(9), *d.AircraftID)
	assert.Equal(t, int64(7), *d.PilotID)
	assert.NoError(t, ValidateDispatch(d))
}

func TestDispatchValidateFields(t *testing.T) {
	cost := -1.0
	d := &Dispatch{Status: "LOST", ShippingCost: &cost}

	err := d.Validate()

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "dispatch_date")
	assert.Contains(t, fe, "status")
	assert.Contains(t, fe, "shipping_cost")
	assert.Contains(t, fe, "route")
	assert.Contains(t, fe, "cargo")

	ok := &Dispatch{
		DispatchDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:       StatusInTransit,
		RouteID:      1,
		CargoID:      1,
	}
	assert.NoError(t, ok.Validate())
}

func TestDispatchStatusOpen(t *testing.T) {
	assert.True(t, StatusPending.Open())
	assert.True(t, StatusInTransit.Open())
	assert.False(t, StatusDelivered.Open())
	assert.False(t, StatusCancelled.Open())
}
