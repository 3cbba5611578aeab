package domain

// Client owns cargo. Optional contact fields are empty when unknown.
type Client struct {
	ClientID   int64
	Name       string
	NationalID string
	Address    string
	Phone      string
	Email      string
}

func (c *Client) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "name", c.Name, 255)
	requireText(fe, "national_id", c.NationalID, 15)
	checkLength(fe, "address", c.Address, 255)
	checkLength(fe, "phone", c.Phone, 20)
	checkLength(fe, "email", c.Email, 255)
	validEmail(fe, "email", c.Email)
	return fe.Err()
}

// Cargo is a shipment unit, optionally owned by a client.
type Cargo struct {
	CargoID     int64
	Description string
	WeightKg    float64
	VolumeM3    *float64
	ClientID    *int64
}

func (c *Cargo) Validate() error {
	fe := FieldErrors{}
	checkLength(fe, "description", c.Description, 255)
	nonNegative(fe, "weight_kg", c.WeightKg)
	optionalNonNegative(fe, "volume_m3", c.VolumeM3)
	return fe.Err()
}
