package models

import "time"

// Profile holds the personal data shown on a card holder's ID.
// Address is the single formatted string composed from the individual
// components at registration time. Profiles change only through the
// change-request approval workflow.
type Profile struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	DisplayName   string    `json:"display_name"`
	Email         string    `json:"email"`
	CardID        string    `json:"card_id"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Country       string    `json:"country,omitempty"`
	Province      string    `json:"province,omitempty"`
	City          string    `json:"city,omitempty"`
	District      string    `json:"district,omitempty"`
	Subdistrict   string    `json:"subdistrict,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	StreetAddress string    `json:"street_address,omitempty"`
	Note          string    `json:"note,omitempty"`
	PhotoRef      string    `json:"photo_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProfileChanges is the partial edit a change request proposes. Nil
// fields are "not part of this request"; only set fields are merged
// onto the profile on approval.
type ProfileChanges struct {
	DisplayName   *string `json:"display_name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	Country       *string `json:"country,omitempty"`
	Province      *string `json:"province,omitempty"`
	City          *string `json:"city,omitempty"`
	District      *string `json:"district,omitempty"`
	Subdistrict   *string `json:"subdistrict,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	StreetAddress *string `json:"street_address,omitempty"`
	Note          *string `json:"note,omitempty"`
	PhotoRef      *string `json:"photo_ref,omitempty"`
}

// Apply merges the set fields onto p, leaving everything else untouched.
func (c ProfileChanges) Apply(p *Profile) {
	if c.DisplayName != nil {
		p.DisplayName = *c.DisplayName
	}
	if c.Phone != nil {
		p.Phone = *c.Phone
	}
	if c.Address != nil {
		p.Address = *c.Address
	}
	if c.Country != nil {
		p.Country = *c.Country
	}
	if c.Province != nil {
		p.Province = *c.Province
	}
	if c.City != nil {
		p.City = *c.City
	}
	if c.District != nil {
		p.District = *c.District
	}
	if c.Subdistrict != nil {
		p.Subdistrict = *c.Subdistrict
	}
	if c.PostalCode != nil {
		p.PostalCode = *c.PostalCode
	}
	if c.StreetAddress != nil {
		p.StreetAddress = *c.StreetAddress
	}
	if c.Note != nil {
		p.Note = *c.Note
	}
	if c.PhotoRef != nil {
		p.PhotoRef = *c.PhotoRef
	}
}
