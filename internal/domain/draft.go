package domain

// AddressDraft is the in-progress address collected across turns of an
// update-address conversation. Empty string means "not provided yet".
// Line2 is optional; the other five fields are required before the
// draft can be confirmed.
type AddressDraft struct {
	Line1                string `json:"line1"`
	Line2                string `json:"line2"`
	City                 string `json:"city"`
	State                string `json:"state"`
	PostalCode           string `json:"postal_code"`
	Country              string `json:"country"`
	AwaitingConfirmation bool   `json:"awaiting_confirmation"`
}

// Complete reports whether every required field has a value.
func (d *AddressDraft) Complete() bool {
	return d.Line1 != "" && d.City != "" && d.State != "" &&
		d.PostalCode != "" && d.Country != ""
}

// Address converts the draft into the address record submitted to the
// profile store. Line2 may be empty.
func (d *AddressDraft) Address() Address {
	return Address{
		Line1:      d.Line1,
		Line2:      d.Line2,
		City:       d.City,
		State:      d.State,
		PostalCode: d.PostalCode,
		Country:    d.Country,
	}
}
