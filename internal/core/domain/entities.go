package domain

import (
	"time"
)

// NGO is an organisation that collects donations.
type NGO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    GeoPoint  `json:"location"`
	IsAvailable bool      `json:"is_available"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (n NGO) EntityID() int64    { return n.ID }
func (n NGO) Position() GeoPoint { return n.Location }
func (n NGO) Available() bool    { return n.IsAvailable }

// NGOUpdate carries a partial NGO update. Nil fields are left untouched.
type NGOUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Location    *GeoPoint `json:"location,omitempty"`
	IsAvailable *bool     `json:"is_available,omitempty"`
	Verified    *bool     `json:"verified,omitempty"`
}

// Apply copies the set fields of u onto n.
func (u NGOUpdate) Apply(n *NGO) {
	if u.Name != nil {
		n.Name = *u.Name
	}
	if u.Description != nil {
		n.Description = *u.Description
	}
	if u.Address != nil {
		n.Address = *u.Address
	}
	if u.Email != nil {
		n.Email = *u.Email
	}
	if u.Phone != nil {
		n.Phone = *u.Phone
	}
	if u.Website != nil {
		n.Website = *u.Website
	}
	if u.Location != nil {
		n.Location = *u.Location
	}
	if u.IsAvailable != nil {
		n.IsAvailable = *u.IsAvailable
	}
	if u.Verified != nil {
		n.Verified = *u.Verified
	}
}

// DonationType is the category of goods being donated.
type DonationType string

const (
	DonationClothing    DonationType = "clothing"
	DonationFood        DonationType = "food"
	DonationBooks       DonationType = "books"
	DonationToys        DonationType = "toys"
	DonationElectronics DonationType = "electronics"
	DonationFurniture   DonationType = "furniture"
	DonationOther       DonationType = "other"
)

// DonationStatus tracks a donation through its lifecycle.
type DonationStatus string

const (
	StatusPending   DonationStatus = "pending"
	StatusAssigned  DonationStatus = "assigned"
	StatusCompleted DonationStatus = "completed"
	StatusCancelled DonationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s DonationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Donation is a batch of physical goods offered by a donor.
type Donation struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Type        DonationType   `json:"donation_type"`
	DonorName   string         `json:"donor_name"`
	DonorEmail  string         `json:"donor_email"`
	DonorPhone  string         `json:"donor_phone,omitempty"`
	Address     string         `json:"address"`
	Location    GeoPoint       `json:"location"`
	Status      DonationStatus `json:"status"`
	NGOID       *int64         `json:"ngo_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (d Donation) EntityID() int64    { return d.ID }
func (d Donation) Position() GeoPoint { return d.Location }

// Available reports whether the donation can still be assigned to an NGO.
func (d Donation) Available() bool { return d.Status == StatusPending }

// DonationUpdate carries a partial donation update.
type DonationUpdate struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Type        *DonationType   `json:"donation_type,omitempty"`
	Status      *DonationStatus `json:"status,omitempty"`
	NGOID       *int64          `json:"ngo_id,omitempty"`
}

// Apply copies the set fields of u onto d.
func (u DonationUpdate) Apply(d *Donation) {
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.Type != nil {
		d.Type = *u.Type
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
	if u.NGOID != nil {
		id := *u.NGOID
		d.NGOID = &id
	}
}

// Event types published on the message bus.
const (
	EventDonationCreated  = "donation.created"
	EventDonationAssigned = "donation.assigned"
	EventNGOUpdated       = "ngo.updated"
)

// DonationEvent is a domain event about a donation.
type DonationEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	DonationID int64     `json:"donation_id"`
	NGOID      *int64    `json:"ngo_id,omitempty"`
	Title      string    `json:"title"`
	DonorName  string    `json:"donor_name"`
	Location   GeoPoint  `json:"location"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notice is a rendered notification ready for delivery.
type Notice struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
